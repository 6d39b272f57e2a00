// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/curator/internal/auth"
	"github.com/tomtom215/curator/internal/authz"
	"github.com/tomtom215/curator/internal/eventprocessor"
	"github.com/tomtom215/curator/internal/recommend"
)

// fakeRecommender records its calls and answers with canned values.
type fakeRecommender struct {
	mu sync.Mutex

	result     *recommend.Result
	err        error
	users      []recommend.SimilarityScore
	assignment recommend.Assignment
	training   bool
	trainErr   error
	eval       *recommend.Evaluation
	report     recommend.PerformanceReport

	lastUser    string
	lastOpts    recommend.Options
	lastMethod  recommend.Method
	lastContent string
	lastLimit   int
	invalidated []string
	flushed     int
	trainCalls  int
	evalSize    int
}

func newFakeRecommender() *fakeRecommender {
	return &fakeRecommender{
		result: &recommend.Result{
			Candidates: []recommend.Candidate{
				{ContentID: "c1", Score: 0.9, Reason: "Similar users liked this"},
				{ContentID: "c2", Score: 0.5, Reason: "Based on your interests"},
			},
			Source: recommend.SourceComputed,
		},
		assignment: recommend.Assignment{ExperimentID: "hybrid-rec-v1", Bucket: recommend.BucketHybrid},
		eval:       &recommend.Evaluation{K: 10},
		report:     recommend.PerformanceReport{Status: recommend.StatusHealthy},
	}
}

func (f *fakeRecommender) record(userID string, opts recommend.Options) (*recommend.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUser = userID
	f.lastOpts = opts
	return f.result, f.err
}

func (f *fakeRecommender) GetRecommendations(_ context.Context, userID string, opts recommend.Options) (*recommend.Result, error) {
	return f.record(userID, opts)
}

func (f *fakeRecommender) EngineRecommendations(_ context.Context, userID string, m recommend.Method, opts recommend.Options) (*recommend.Result, error) {
	f.mu.Lock()
	f.lastMethod = m
	f.mu.Unlock()
	return f.record(userID, opts)
}

func (f *fakeRecommender) ABRecommendations(_ context.Context, userID string, opts recommend.Options) (*recommend.Result, recommend.Assignment, error) {
	res, err := f.record(userID, opts)
	a := f.assignment
	a.UserID = userID
	return res, a, err
}

func (f *fakeRecommender) Fallback(_ context.Context, userID string, opts recommend.Options) (*recommend.Result, error) {
	return f.record(userID, opts)
}

func (f *fakeRecommender) lookup(contentID string, limit int) (*recommend.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastContent = contentID
	f.lastLimit = limit
	return f.result, f.err
}

func (f *fakeRecommender) SimilarContent(_ context.Context, contentID string, limit int) (*recommend.Result, error) {
	return f.lookup(contentID, limit)
}

func (f *fakeRecommender) SimilarByFeatures(_ context.Context, contentID string, limit int) (*recommend.Result, error) {
	return f.lookup(contentID, limit)
}

func (f *fakeRecommender) SimilarUsers(_ context.Context, userID string, limit int) ([]recommend.SimilarityScore, recommend.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUser = userID
	f.lastLimit = limit
	return f.users, recommend.SourceComputed, f.err
}

func (f *fakeRecommender) Assign(userID string) recommend.Assignment {
	a := f.assignment
	a.UserID = userID
	return a
}

func (f *fakeRecommender) InvalidateUser(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, userID)
	return 3, nil
}

func (f *fakeRecommender) FlushCache(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushed++
	return nil
}

func (f *fakeRecommender) Performance() recommend.PerformanceReport { return f.report }

func (f *fakeRecommender) TrainingStatus() recommend.TrainingStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return recommend.TrainingStatus{Training: f.training, Version: 4}
}

func (f *fakeRecommender) Train(context.Context) (*recommend.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trainCalls++
	if f.trainErr != nil {
		return nil, f.trainErr
	}
	return &recommend.Snapshot{Version: 5, Duration: time.Millisecond}, nil
}

func (f *fakeRecommender) Evaluate(_ context.Context, testSetSize int) (*recommend.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evalSize = testSetSize
	return f.eval, f.err
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []recommend.Event
	err    error
}

func (f *fakeRecorder) RecordInteraction(_ context.Context, e recommend.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []*eventprocessor.InteractionTracked
	err       error
}

func (f *fakePublisher) PublishInteraction(_ context.Context, ev *eventprocessor.InteractionTracked) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, ev)
	return nil
}

func (f *fakePublisher) Healthy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err == nil
}

type testServer struct {
	handler   *Handler
	http      http.Handler
	rec       *fakeRecommender
	recorder  *fakeRecorder
	publisher *fakePublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	enforcer, err := authz.NewEnforcer(authz.EnforcerConfig{AdminRole: authz.BuiltinAdminRole})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	authzMW := authz.NewMiddleware(enforcer)

	ts := &testServer{
		rec:       newFakeRecommender(),
		recorder:  &fakeRecorder{},
		publisher: &fakePublisher{},
	}
	ts.handler = NewHandler(ts.rec, ts.recorder, ts.publisher, authzMW, HandlerConfig{
		Version:              "test",
		TrainTimeout:         time.Minute,
		ManualTrainPerMinute: 1,
	})
	chiMW := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		RateLimitDisabled:  true,
	})
	router := NewRouter(ts.handler, chiMW, auth.NewMiddleware(auth.HeaderAuthenticator{}), authzMW)
	ts.http = router.SetupChi()
	return ts
}

// do sends a request as userID with role; an empty userID is anonymous.
func (ts *testServer) do(t *testing.T, method, target, body, userID, role string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(auth.HeaderUserID, userID)
	}
	if role != "" {
		req.Header.Set(auth.HeaderUserRole, role)
	}
	w := httptest.NewRecorder()
	ts.http.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, w.Body.String())
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

var errBoom = errors.New("boom")

func serve(ts *testServer, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.http.ServeHTTP(w, req)
	return w
}
