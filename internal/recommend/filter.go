// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/cel-go/cel"

	"github.com/tomtom215/curator/internal/logging"
)

var (
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// filterEnv declares the candidate fields visible to filter expressions.
func filterEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("contentId", cel.StringType),
			cel.Variable("score", cel.DoubleType),
			cel.Variable("category", cel.StringType),
			cel.Variable("creatorId", cel.StringType),
			cel.Variable("fileType", cel.StringType),
			cel.Variable("tags", cel.ListType(cel.StringType)),
			cel.Variable("method", cel.StringType),
			cel.Variable("views", cel.IntType),
			cel.Variable("likes", cel.IntType),
			cel.Variable("purchases", cel.IntType),
			cel.Variable("rating", cel.DoubleType),
		)
	})
	return celEnv, celEnvErr
}

// CompileFilter compiles a boolean CEL expression over candidate fields,
// for example `category == "music" && views > 100`.
func CompileFilter(expr string) (cel.Program, error) {
	env, err := filterEnv()
	if err != nil {
		return nil, fmt.Errorf("filter environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, InvalidParameter("filter", "%v", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, InvalidParameter("filter", "expression must be boolean, got %s", ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, InvalidParameter("filter", "%v", err)
	}
	return prg, nil
}

// candidateFilter is the final filter stage of a request.
type candidateFilter struct {
	minScore float64
	exclude  mapset.Set[string]
	category string
	program  cel.Program
}

// keep reports whether c survives the filter.
func (f *candidateFilter) keep(c *Candidate) bool {
	if c.Score < f.minScore {
		return false
	}
	if f.exclude != nil && f.exclude.Contains(c.ContentID) {
		return false
	}
	if f.category != "" && c.Metadata.Category != f.category {
		return false
	}
	if f.program == nil {
		return true
	}

	out, _, err := f.program.Eval(filterInput(c))
	if err != nil {
		logging.Debug().Err(err).Str("content_id", c.ContentID).Msg("filter evaluation failed")
		return false
	}
	ok, _ := out.Value().(bool)
	return ok
}

// apply filters cs in place, dropping duplicates, and truncates to limit.
func (f *candidateFilter) apply(cs []Candidate, limit int) []Candidate {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := cs[:0]
	for i := range cs {
		if !seen.Add(cs[i].ContentID) || !f.keep(&cs[i]) {
			continue
		}
		out = append(out, cs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func filterInput(c *Candidate) map[string]any {
	in := map[string]any{
		"contentId": c.ContentID,
		"score":     c.Score,
		"category":  c.Metadata.Category,
		"creatorId": c.Metadata.CreatorID,
		"fileType":  c.Metadata.FileType,
		"tags":      nonNil(c.Metadata.Tags),
		"method":    string(c.Metadata.Method),
		"views":     int64(0),
		"likes":     int64(0),
		"purchases": int64(0),
		"rating":    0.0,
	}
	if p := c.Profile; p != nil {
		in["views"] = p.Stats.Views
		in["likes"] = p.Stats.Likes
		in["purchases"] = p.Stats.Purchases
		in["rating"] = p.Stats.Rating
	}
	return in
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
