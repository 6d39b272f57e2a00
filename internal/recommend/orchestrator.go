// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/cel-go/cel"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/curator/internal/cache"
	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/metrics"
)

// Operation names used for metrics and logs.
const (
	OpRecommendations   = "recommendations"
	OpABTest            = "ab_test"
	OpFallback          = "fallback"
	OpSimilarContent    = "similar_content"
	OpSimilarByFeatures = "similar_content_features"
	OpSimilarUsers      = "similar_users"
)

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Interactions InteractionGateway
	Content      ContentGateway
	Trainer      *Trainer
	Ranker       Ranker
	Diversifier  Diversifier

	// Cache is optional; nil disables caching.
	Cache          cache.Store
	CacheOpTimeout time.Duration
}

// Orchestrator is the facade over the whole recommendation core. It checks
// the cache, runs the engines, reranks, filters and caches, and is the one
// place where failures turn into fallback responses.
type Orchestrator struct {
	cfg          *Config
	interactions InteractionGateway
	content      ContentGateway
	trainer      *Trainer
	ranker       Ranker
	diversifier  Diversifier
	fallback     *Fallback
	cache        *ResultCache
	monitor      *Monitor
	assigner     *Assigner
	now          func() time.Time
}

// NewOrchestrator validates cfg and wires the orchestrator.
func NewOrchestrator(cfg *Config, deps Deps) (*Orchestrator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	switch {
	case deps.Interactions == nil:
		return nil, errors.New("interaction gateway is required")
	case deps.Content == nil:
		return nil, errors.New("content gateway is required")
	case deps.Trainer == nil:
		return nil, errors.New("trainer is required")
	case deps.Ranker == nil:
		return nil, errors.New("ranker is required")
	case deps.Diversifier == nil:
		return nil, errors.New("diversifier is required")
	}

	return &Orchestrator{
		cfg:          cfg,
		interactions: deps.Interactions,
		content:      deps.Content,
		trainer:      deps.Trainer,
		ranker:       deps.Ranker,
		diversifier:  deps.Diversifier,
		fallback:     NewFallback(deps.Content, cfg.Weights.Fallback, cfg.FallbackFreshnessWindow),
		cache:        NewResultCache(deps.Cache, deps.CacheOpTimeout),
		monitor:      NewMonitor(cfg.MonitorSamples, cfg.SlowThreshold),
		assigner:     NewAssigner(cfg.ExperimentID),
		now:          time.Now,
	}, nil
}

// Config returns the orchestrator configuration.
func (o *Orchestrator) Config() *Config { return o.cfg }

// Monitor returns the performance monitor.
func (o *Orchestrator) Monitor() *Monitor { return o.monitor }

// Trainer returns the snapshot trainer.
func (o *Orchestrator) Trainer() *Trainer { return o.trainer }

// Assigner returns the A/B assigner.
func (o *Orchestrator) Assigner() *Assigner { return o.assigner }

// Assign returns the A/B assignment of userID.
func (o *Orchestrator) Assign(userID string) Assignment { return o.assigner.Assign(userID) }

// TrainingStatus reports the published snapshot and any running training.
func (o *Orchestrator) TrainingStatus() TrainingStatus { return o.trainer.Status() }

// GetRecommendations runs the full pipeline for userID.
func (o *Orchestrator) GetRecommendations(ctx context.Context, userID string, opts Options) (*Result, error) {
	return o.serve(ctx, OpRecommendations, userID, opts, FullPipeline())
}

// EngineRecommendations runs a single engine with no reranking.
func (o *Orchestrator) EngineRecommendations(ctx context.Context, userID string, m Method, opts Options) (*Result, error) {
	if !isEngine(m) {
		return nil, InvalidParameter("method", "unknown method %q", m)
	}
	return o.serve(ctx, "engine_"+string(m), userID, opts, SingleEngine(m))
}

// ABRecommendations serves the pipeline of the user's A/B bucket.
func (o *Orchestrator) ABRecommendations(ctx context.Context, userID string, opts Options) (*Result, Assignment, error) {
	a := o.assigner.Assign(userID)
	res, err := o.serve(ctx, OpABTest, userID, opts, a.Bucket.Pipeline())
	if res != nil {
		res.Bucket = a.Bucket
	}
	return res, a, err
}

// serve is the single fallback boundary for user pipelines.
//
//nolint:gocritic // options are copied per request on purpose
func (o *Orchestrator) serve(ctx context.Context, op, userID string, opts Options, p Pipeline) (*Result, error) {
	start := o.now()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	prg, err := compileOptional(opts.Filter)
	if err != nil {
		return nil, err
	}

	key := cache.Key(cache.NamespaceRecommendations, userID, pipelineOptions(&opts, p))
	if entry, ok := o.cache.get(ctx, key); ok {
		o.observe(op, SourceCache, start, true)
		return entry.result(SourceCache), nil
	}

	rctx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
	defer cancel()

	state := &requestState{userID: userID, opts: &opts, program: prg}
	entry, err := o.compute(rctx, state, p)
	if err == nil {
		o.cache.put(ctx, key, entry, o.cfg.CacheTTL)
		o.observe(op, SourceComputed, start, true)
		return entry.result(SourceComputed), nil
	}

	if ctx.Err() != nil {
		o.observe(op, SourceComputed, start, false)
		return nil, ctx.Err()
	}
	if !triggersFallback(err) {
		o.observe(op, SourceComputed, start, false)
		return nil, err
	}

	logging.Ctx(ctx).Warn().
		Err(err).
		Str("operation", op).
		Str("error_kind", KindName(err)).
		Msg("pipeline failed, serving fallback")
	metrics.RecommendFallbacks.WithLabelValues(KindName(err)).Inc()

	fb, ferr := o.fallbackList(ctx, state)
	if ferr != nil {
		o.observe(op, SourceFallback, start, false)
		return nil, ferr
	}
	o.observe(op, SourceFallback, start, true)
	return fb.result(SourceFallback), nil
}

// requestState carries what one request has learned so far. The fallback
// reuses it so that exclusions still apply when the pipeline failed late.
type requestState struct {
	userID  string
	opts    *Options
	program cel.Program

	events  []Event
	loaded  bool
	exclude mapset.Set[string]
}

// loadHistory reads the user's events once per request.
func (o *Orchestrator) loadHistory(ctx context.Context, st *requestState) error {
	if st.loaded {
		return nil
	}
	start := time.Now()
	events, err := o.interactions.GetInteractions(ctx, st.userID, o.cfg.HistoryWindow)
	metrics.RecordStage("history", time.Since(start), errKind(err))
	if err != nil {
		return err
	}
	st.events = events
	st.loaded = true
	st.exclude = exclusions(events, st.opts)
	return nil
}

// compute runs the pipeline stages selected by p.
func (o *Orchestrator) compute(ctx context.Context, st *requestState, p Pipeline) (*cachedResult, error) {
	if err := o.loadHistory(ctx, st); err != nil {
		return nil, err
	}
	history := BuildVector(st.events)
	if len(history) == 0 {
		return nil, newError(ErrInsufficientHistory, "history", nil)
	}

	snap, err := o.trainer.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	q := &Query{
		UserID:   st.userID,
		History:  history,
		Exclude:  st.exclude,
		Category: st.opts.Category,
		Limit:    o.cfg.MaxCandidates,
	}
	results, err := o.runEngines(ctx, snap, q, p.Methods)
	if err != nil {
		return nil, err
	}

	weights := o.cfg.Weights.Combiner.Effective(st.opts.EffectiveContentWeight())
	if len(p.Methods) == 1 {
		weights = soloWeights(p.Methods[0])
	}
	candidates := Combine(results, p.Methods, weights, snap.Catalog)
	if len(candidates) == 0 {
		return nil, newError(ErrInsufficientHistory, "combine", errors.New("no candidates"))
	}

	if p.Rank {
		candidates, err = o.stage(ctx, "rank", func() ([]Candidate, error) {
			return o.ranker.Rank(candidates), nil
		})
		if err != nil {
			return nil, err
		}
	}
	if p.Diversify {
		factor := st.opts.DiversityFactor
		candidates, err = o.stage(ctx, "diversify", func() ([]Candidate, error) {
			return o.diversifier.Diversify(candidates, factor, 0), nil
		})
		if err != nil {
			return nil, err
		}
	}

	f := &candidateFilter{
		minScore: st.opts.MinScore,
		exclude:  st.exclude,
		category: st.opts.Category,
		program:  st.program,
	}
	return &cachedResult{
		Candidates:  f.apply(candidates, st.opts.Limit),
		UserProfile: Summarize(st.events, snap.Catalog),
	}, nil
}

// runEngines fans the query out to the selected models and joins their
// results. Methods without a trained model contribute nothing.
func (o *Orchestrator) runEngines(ctx context.Context, snap *Snapshot, q *Query, methods []Method) (map[Method][]SimilarityScore, error) {
	lists := make([][]SimilarityScore, len(methods))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range methods {
		model := snap.Model(m)
		if model == nil {
			continue
		}
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(gctx, o.cfg.StageTimeout)
			defer cancel()

			start := time.Now()
			scores, err := safeCall("engine."+string(m), func() ([]SimilarityScore, error) {
				return model.Recommend(sctx, q)
			})
			if err == nil && sctx.Err() != nil {
				err = sctx.Err()
			}
			if err != nil {
				err = stageError("engine."+string(m), err)
			}
			metrics.RecordStage(string(m), time.Since(start), errKind(err))
			if err != nil {
				return err
			}
			metrics.RecommendCandidates.WithLabelValues(string(m)).Observe(float64(len(scores)))
			lists[i] = scores
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[Method][]SimilarityScore, len(methods))
	for i, m := range methods {
		out[m] = lists[i]
	}
	return out, nil
}

// stage runs a synchronous reranking step with panic recovery and timing.
func (o *Orchestrator) stage(ctx context.Context, name string, fn func() ([]Candidate, error)) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, stageError(name, err)
	}
	start := time.Now()
	out, err := safeCall(name, fn)
	metrics.RecordStage(name, time.Since(start), errKind(err))
	return out, err
}

// stageError classifies a stage failure. Timeouts count as upstream
// unavailability; anything without a kind is a computation failure.
func stageError(op string, err error) error {
	if KindOf(err) != nil || errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(ErrUpstreamUnavailable, op, err)
	}
	return newError(ErrComputationFailure, op, err)
}

// Fallback serves the popularity list directly.
//
//nolint:gocritic // options are copied per request on purpose
func (o *Orchestrator) Fallback(ctx context.Context, userID string, opts Options) (*Result, error) {
	start := o.now()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	prg, err := compileOptional(opts.Filter)
	if err != nil {
		return nil, err
	}
	metrics.RecommendFallbacks.WithLabelValues("requested").Inc()

	state := &requestState{userID: userID, opts: &opts, program: prg}
	entry, err := o.fallbackList(ctx, state)
	if err != nil {
		o.observe(OpFallback, SourceFallback, start, false)
		return nil, err
	}
	o.observe(OpFallback, SourceFallback, start, true)
	return entry.result(SourceFallback), nil
}

// fallbackList returns the cached or freshly computed fallback list for
// the request. History is read when the pipeline has not already done so;
// if that read fails the list is served without exclusions.
func (o *Orchestrator) fallbackList(ctx context.Context, st *requestState) (*cachedResult, error) {
	fctx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
	defer cancel()

	if !st.loaded {
		if err := o.loadHistory(fctx, st); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.Ctx(ctx).Warn().Err(err).Msg("history unavailable for fallback exclusions")
		}
	}

	key := cache.Key(cache.NamespaceFallbackRecommendations, st.userID, fallbackOptions(st.opts))
	if entry, ok := o.cache.get(fctx, key); ok {
		return entry, nil
	}

	candidates, err := o.fallback.Recommend(fctx, st.exclude, st.opts.Category, 0)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, stageError("fallback", err)
	}

	f := &candidateFilter{exclude: st.exclude, category: st.opts.Category, program: st.program}
	entry := &cachedResult{Candidates: f.apply(candidates, st.opts.Limit)}
	if st.loaded {
		o.cache.put(ctx, key, entry, o.cfg.FallbackCacheTTL)
	}
	return entry, nil
}

// SimilarContent lists content co-interacted with contentID. Failures of
// the item model fall back to popular content of the same category.
func (o *Orchestrator) SimilarContent(ctx context.Context, contentID string, limit int) (*Result, error) {
	return o.serveItem(ctx, OpSimilarContent, cache.NamespaceSimilarContent, contentID, limit,
		func(ctx context.Context, snap *Snapshot, target *ContentFeatureProfile) ([]Candidate, error) {
			model, ok := snap.Model(MethodItemBased).(ItemModel)
			if !ok {
				return nil, newError(ErrComputationFailure, OpSimilarContent, errors.New("item model not trained"))
			}
			scores, err := model.SimilarItems(ctx, target.ContentID, limit)
			if err != nil {
				return nil, err
			}
			out := make([]Candidate, 0, len(scores))
			for _, s := range scores {
				out = append(out, newCandidate(s.CandidateID, s.Score, MethodItemBased,
					map[Method]float64{MethodItemBased: s.Score}, snap.Catalog[s.CandidateID]))
			}
			return out, nil
		})
}

// SimilarByFeatures lists content whose features resemble contentID's,
// reporting which features matched.
func (o *Orchestrator) SimilarByFeatures(ctx context.Context, contentID string, limit int) (*Result, error) {
	return o.serveItem(ctx, OpSimilarByFeatures, cache.NamespaceSimilarContentFeatures, contentID, limit,
		func(ctx context.Context, snap *Snapshot, target *ContentFeatureProfile) ([]Candidate, error) {
			model, ok := snap.Model(MethodContentBased).(FeatureModel)
			if !ok {
				return nil, newError(ErrComputationFailure, OpSimilarByFeatures, errors.New("content model not trained"))
			}
			matches, err := model.SimilarByFeatures(ctx, target, limit)
			if err != nil {
				return nil, err
			}
			out := make([]Candidate, 0, len(matches))
			for _, m := range matches {
				c := newCandidate(m.CandidateID, m.Score, MethodContentBased,
					map[Method]float64{MethodContentBased: m.Score}, snap.Catalog[m.CandidateID])
				c.Metadata.MatchedFeatures = m.MatchedFeatures
				out = append(out, c)
			}
			return out, nil
		})
}

type itemLookup func(ctx context.Context, snap *Snapshot, target *ContentFeatureProfile) ([]Candidate, error)

// serveItem is the content-keyed counterpart of serve.
func (o *Orchestrator) serveItem(ctx context.Context, op string, ns cache.Namespace, contentID string, limit int, lookup itemLookup) (*Result, error) {
	start := o.now()
	if limit < 1 || limit > MaxLimit {
		return nil, InvalidParameter("limit", "must be between 1 and %d, got %d", MaxLimit, limit)
	}

	key := cache.Key(ns, contentID, "limit="+strconv.Itoa(limit))
	var target *ContentFeatureProfile
	entry, hit, err := o.cache.fetch(ctx, key, o.cfg.CacheTTL, o.cfg.RequestTimeout, func(ctx context.Context) (*cachedResult, error) {
		p, err := o.content.GetContentFeatures(ctx, contentID)
		if err != nil {
			return nil, err
		}
		target = p
		snap, err := o.trainer.Ensure(ctx)
		if err != nil {
			return nil, err
		}

		sctx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeout)
		defer cancel()
		cs, err := safeCall(op, func() ([]Candidate, error) { return lookup(sctx, snap, p) })
		if err != nil {
			return nil, stageError(op, err)
		}
		return &cachedResult{Candidates: cs}, nil
	})
	switch {
	case err == nil && hit:
		o.observe(op, SourceCache, start, true)
		return entry.result(SourceCache), nil
	case err == nil:
		o.observe(op, SourceComputed, start, true)
		return entry.result(SourceComputed), nil
	case ctx.Err() != nil:
		o.observe(op, SourceComputed, start, false)
		return nil, ctx.Err()
	case !triggersFallback(err):
		o.observe(op, SourceComputed, start, false)
		return nil, err
	}

	logging.Ctx(ctx).Warn().Err(err).Str("operation", op).Str("content_id", contentID).Msg("similarity lookup failed, serving fallback")
	metrics.RecommendFallbacks.WithLabelValues(KindName(err)).Inc()

	category := ""
	if target != nil {
		category = target.Category
	}
	cs, ferr := o.fallback.Recommend(ctx, mapset.NewThreadUnsafeSet(contentID), category, limit)
	if ferr != nil {
		o.observe(op, SourceFallback, start, false)
		return nil, stageError("fallback", ferr)
	}
	o.observe(op, SourceFallback, start, true)
	return &Result{Candidates: cs, Source: SourceFallback}, nil
}

// SimilarUsers lists the user's nearest neighbors. There is no fallback:
// a user without history has no neighbors.
func (o *Orchestrator) SimilarUsers(ctx context.Context, userID string, limit int) ([]SimilarityScore, Source, error) {
	start := o.now()
	if limit < 1 || limit > MaxLimit {
		return nil, "", InvalidParameter("limit", "must be between 1 and %d, got %d", MaxLimit, limit)
	}

	key := cache.Key(cache.NamespaceSimilarUsers, userID, "limit="+strconv.Itoa(limit))
	if entry, ok := o.cache.get(ctx, key); ok {
		o.observe(OpSimilarUsers, SourceCache, start, true)
		return entry.Users, SourceCache, nil
	}

	rctx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
	defer cancel()

	users, err := o.similarUsers(rctx, userID, limit)
	if err != nil {
		o.observe(OpSimilarUsers, SourceComputed, start, false)
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		if errors.Is(err, ErrInsufficientHistory) {
			return []SimilarityScore{}, SourceComputed, nil
		}
		return nil, "", err
	}
	o.cache.put(ctx, key, &cachedResult{Users: users}, o.cfg.CacheTTL)
	o.observe(OpSimilarUsers, SourceComputed, start, true)
	return users, SourceComputed, nil
}

func (o *Orchestrator) similarUsers(ctx context.Context, userID string, limit int) ([]SimilarityScore, error) {
	events, err := o.interactions.GetInteractions(ctx, userID, o.cfg.HistoryWindow)
	if err != nil {
		return nil, err
	}
	history := BuildVector(events)
	if len(history) == 0 {
		return nil, newError(ErrInsufficientHistory, OpSimilarUsers, nil)
	}
	snap, err := o.trainer.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	model, ok := snap.Model(MethodUserBased).(NeighborModel)
	if !ok {
		return nil, newError(ErrComputationFailure, OpSimilarUsers, errors.New("user model not trained"))
	}
	return safeCall(OpSimilarUsers, func() ([]SimilarityScore, error) {
		return model.SimilarUsers(ctx, &Query{UserID: userID, History: history, Limit: limit})
	})
}

// Train builds and publishes a new snapshot.
func (o *Orchestrator) Train(ctx context.Context) (*Snapshot, error) {
	return o.trainer.Train(ctx)
}

// InvalidateUser drops every cached entry of userID.
func (o *Orchestrator) InvalidateUser(ctx context.Context, userID string) (int, error) {
	n, err := o.cache.invalidateUser(ctx, userID)
	if err != nil {
		return n, newError(ErrUpstreamUnavailable, "cache.invalidate", err)
	}
	return n, nil
}

// FlushCache drops every cached entry.
func (o *Orchestrator) FlushCache(ctx context.Context) error {
	if err := o.cache.clear(ctx); err != nil {
		return newError(ErrUpstreamUnavailable, "cache.clear", err)
	}
	return nil
}

// Performance reports aggregate latency and source metrics.
func (o *Orchestrator) Performance() PerformanceReport {
	return o.monitor.Report()
}

func (o *Orchestrator) observe(op string, src Source, start time.Time, ok bool) {
	d := o.now().Sub(start)
	o.monitor.Record(Sample{Timestamp: start, Duration: d, Source: src, OK: ok})
	label := string(src)
	if !ok {
		label = "error"
	}
	metrics.RecordRecommendation(op, label, d)
}

// result copies a cached entry into a Result.
func (e *cachedResult) result(src Source) *Result {
	cs := make([]Candidate, len(e.Candidates))
	copy(cs, e.Candidates)
	return &Result{Candidates: cs, Source: src, UserProfile: e.UserProfile}
}

func compileOptional(expr string) (cel.Program, error) {
	if expr == "" {
		return nil, nil
	}
	return CompileFilter(expr)
}

func isEngine(m Method) bool {
	for _, e := range Methods {
		if e == m {
			return true
		}
	}
	return false
}

func pipelineOptions(opts *Options, p Pipeline) string {
	return opts.Canonical() + "&pipeline=" + url.QueryEscape(p.name())
}

func fallbackOptions(opts *Options) string {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(opts.Limit))
	v.Set("excludeViewed", strconv.FormatBool(opts.ExcludeViewed))
	v.Set("excludePurchased", strconv.FormatBool(opts.ExcludePurchased))
	if opts.Category != "" {
		v.Set("category", opts.Category)
	}
	if opts.Filter != "" {
		v.Set("filter", opts.Filter)
	}
	return v.Encode()
}
