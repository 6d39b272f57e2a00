// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend"
)

func TestRecommendations(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, BasePath+"?limit=5&diversityFactor=0.5&category=music", "", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	var data struct {
		Recommendations []recommend.Candidate `json:"recommendations"`
		Count           int                   `json:"count"`
		Source          recommend.Source      `json:"source"`
		Options         recommend.Options     `json:"options"`
	}
	env := decodeEnvelope(t, w, &data)
	if !env.Success {
		t.Fatalf("success = false, error %q", env.Error)
	}
	if data.Count != 2 || len(data.Recommendations) != 2 {
		t.Errorf("count = %d, recommendations = %d, want 2", data.Count, len(data.Recommendations))
	}
	if data.Options.Limit != 5 || data.Options.DiversityFactor != 0.5 {
		t.Errorf("echoed options = %+v", data.Options)
	}
	if ts.rec.lastUser != "u1" {
		t.Errorf("user = %q, want u1", ts.rec.lastUser)
	}
	if ts.rec.lastOpts.Category != "music" || !ts.rec.lastOpts.ExcludeViewed {
		t.Errorf("options passed = %+v", ts.rec.lastOpts)
	}
}

func TestRecommendationsInvalidParameters(t *testing.T) {
	t.Parallel()

	tests := []string{
		"limit=0",
		"limit=101",
		"limit=ten",
		"minScore=2",
		"diversityFactor=-0.1",
		"contentBasedWeight=abc",
		"excludeViewed=maybe",
	}
	for _, query := range tests {
		t.Run(query, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t)

			w := ts.do(t, http.MethodGet, BasePath+"?"+query, "", "u1", "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			env := decodeEnvelope(t, w, nil)
			if env.Success || env.Code != models.CodeInvalidParameter {
				t.Errorf("envelope = %+v, want INVALID_PARAMETER failure", env)
			}
			if ts.rec.lastUser != "" {
				t.Error("orchestrator called despite invalid parameters")
			}
		})
	}
}

func TestRecommendationsRequiresAuthentication(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, BasePath, "", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if env := decodeEnvelope(t, w, nil); env.Code != models.CodeUnauthorized {
		t.Errorf("code = %q, want %q", env.Code, models.CodeUnauthorized)
	}
}

func TestRecommendationsErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"upstream", &recommend.Error{Kind: recommend.ErrUpstreamUnavailable, Op: "fallback", Err: errBoom}, http.StatusServiceUnavailable},
		{"not found", &recommend.Error{Kind: recommend.ErrContentNotFound, Op: "x"}, http.StatusNotFound},
		{"invalid", recommend.InvalidParameter("limit", "bad"), http.StatusBadRequest},
		{"unknown", errBoom, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t)
			ts.rec.err = tt.err

			w := ts.do(t, http.MethodGet, BasePath, "", "u1", "")
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			env := decodeEnvelope(t, w, nil)
			if env.Success || env.Error == "" {
				t.Errorf("envelope = %+v, want failure with message", env)
			}
			if env.Error == errBoom.Error() {
				t.Error("internal error text leaked to the client")
			}
		})
	}
}

func TestEngineRecommendations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want recommend.Method
	}{
		{"/user-based", recommend.MethodUserBased},
		{"/item-based", recommend.MethodItemBased},
		{"/content-based", recommend.MethodContentBased},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t)

			w := ts.do(t, http.MethodGet, BasePath+tt.path+"?limit=3", "", "u2", "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if ts.rec.lastMethod != tt.want {
				t.Errorf("method = %q, want %q", ts.rec.lastMethod, tt.want)
			}
			if ts.rec.lastOpts.Limit != 3 {
				t.Errorf("limit = %d, want 3", ts.rec.lastOpts.Limit)
			}
		})
	}
}

func TestFallbackRecommendations(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	ts.rec.result.Source = recommend.SourceFallback

	w := ts.do(t, http.MethodGet, BasePath+"/fallback", "", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var data models.RecommendationsData
	decodeEnvelope(t, w, &data)
	if data.Source != recommend.SourceFallback {
		t.Errorf("source = %q, want fallback", data.Source)
	}
}

func TestABTest(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	ts.rec.result.Bucket = recommend.BucketHybrid

	w := ts.do(t, http.MethodGet, BasePath+"/ab-test", "", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var data struct {
		TestGroup    recommend.Bucket `json:"testGroup"`
		ExperimentID string           `json:"experimentId"`
		Count        int              `json:"count"`
	}
	decodeEnvelope(t, w, &data)
	if data.TestGroup != recommend.BucketHybrid || data.ExperimentID != "hybrid-rec-v1" {
		t.Errorf("assignment = %+v", data)
	}
	if data.Count != 2 {
		t.Errorf("count = %d, want 2", data.Count)
	}
}

func TestSimilarContentIsPublic(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/similar-content/", "/similar-content-features/"} {
		t.Run(path, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t)

			w := ts.do(t, http.MethodGet, BasePath+path+"item-42?limit=7", "", "", "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
			}
			var data models.SimilarContentData
			decodeEnvelope(t, w, &data)
			if data.ContentID != "item-42" || data.Options.Limit != 7 || data.Count != 2 {
				t.Errorf("data = %+v", data)
			}
			if ts.rec.lastContent != "item-42" || ts.rec.lastLimit != 7 {
				t.Errorf("lookup = %q/%d", ts.rec.lastContent, ts.rec.lastLimit)
			}
		})
	}
}

func TestSimilarContentMalformedID(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, BasePath+"/similar-content/"+"bad%20id", "", "", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if ts.rec.lastContent != "" {
		t.Error("orchestrator called with malformed id")
	}
}

func TestSimilarUsers(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	ts.rec.users = []recommend.SimilarityScore{{SubjectID: "u1", CandidateID: "u9", Score: 0.8, Method: recommend.MethodUserBased}}

	w := ts.do(t, http.MethodGet, BasePath+"/similar-users?limit=4", "", "u1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var data models.SimilarUsersData
	decodeEnvelope(t, w, &data)
	if data.UserID != "u1" || data.Count != 1 || data.Options.Limit != 4 {
		t.Errorf("data = %+v", data)
	}
}

func TestETagNotModified(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	first := ts.do(t, http.MethodGet, BasePath+"/similar-content/item-1", "", "", "")
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("ETag header missing")
	}

	req, _ := http.NewRequest(http.MethodGet, BasePath+"/similar-content/item-1", nil)
	req.Header.Set("If-None-Match", etag)
	w := serve(ts, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", w.Code)
	}

	ts.rec.result.Candidates = ts.rec.result.Candidates[:1]
	w = serve(ts, req)
	if w.Code != http.StatusOK {
		t.Errorf("status after change = %d, want 200", w.Code)
	}
}

func TestOperatorRoutesRequireAdmin(t *testing.T) {
	t.Parallel()

	// Operator endpoints reject plain users and admit admins.
	tests := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/performance", ""},
		{http.MethodGet, "/status", ""},
		{http.MethodPost, "/evaluate", `{"testSetSize":5}`},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t)

			if w := ts.do(t, tt.method, BasePath+tt.path, tt.body, "u1", "user"); w.Code != http.StatusForbidden {
				t.Errorf("user status = %d, want 403", w.Code)
			}
			if w := ts.do(t, tt.method, BasePath+tt.path, tt.body, "ops", "admin"); w.Code != http.StatusOK {
				t.Errorf("admin status = %d, want 200 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}
