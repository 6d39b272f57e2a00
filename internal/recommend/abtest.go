// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"github.com/cespare/xxhash/v2"

	"github.com/tomtom215/curator/internal/metrics"
)

// Bucket is an A/B test group.
type Bucket string

// A/B buckets.
const (
	// BucketControl serves user-based recommendations only.
	BucketControl Bucket = "control"
	// BucketHybrid serves the combined engines without re-ranking.
	BucketHybrid Bucket = "hybrid"
	// BucketAdvanced serves the full pipeline.
	BucketAdvanced Bucket = "advanced_ranking"
)

// Buckets lists every bucket.
var Buckets = []Bucket{BucketControl, BucketHybrid, BucketAdvanced}

// Slot returns the user's stable position in [0, 100). xxhash is seedless,
// so the slot survives restarts and is the same on every replica.
func Slot(userID string) int {
	return int(xxhash.Sum64String(userID) % 100)
}

// AssignBucket maps a user to a bucket: slots below 33 are control, below
// 66 hybrid, the rest advanced_ranking.
func AssignBucket(userID string) Bucket {
	switch s := Slot(userID); {
	case s < 33:
		return BucketControl
	case s < 66:
		return BucketHybrid
	default:
		return BucketAdvanced
	}
}

// Pipeline selects which stages a request runs.
type Pipeline struct {
	Methods   []Method
	Rank      bool
	Diversify bool
}

// FullPipeline runs every engine and every reranking stage.
func FullPipeline() Pipeline {
	return Pipeline{Methods: Methods, Rank: true, Diversify: true}
}

// SingleEngine runs one engine with no reranking.
func SingleEngine(m Method) Pipeline {
	return Pipeline{Methods: []Method{m}}
}

// Pipeline returns the stages served to the bucket.
func (b Bucket) Pipeline() Pipeline {
	switch b {
	case BucketControl:
		return SingleEngine(MethodUserBased)
	case BucketHybrid:
		return Pipeline{Methods: Methods}
	default:
		return FullPipeline()
	}
}

// name is the cache key fragment of the pipeline.
func (p Pipeline) name() string {
	s := ""
	for i, m := range p.Methods {
		if i > 0 {
			s += "+"
		}
		s += string(m)
	}
	if p.Rank {
		s += "|rank"
	}
	if p.Diversify {
		s += "|diversify"
	}
	return s
}

// Assignment is one user's A/B placement.
type Assignment struct {
	UserID       string `json:"userId"`
	ExperimentID string `json:"experimentId"`
	Bucket       Bucket `json:"testGroup"`
	Slot         int    `json:"slot"`
}

// Assigner assigns users to buckets of one experiment.
type Assigner struct {
	experimentID string
}

// NewAssigner creates an assigner for experimentID.
func NewAssigner(experimentID string) *Assigner {
	return &Assigner{experimentID: experimentID}
}

// ExperimentID returns the experiment the assigner serves.
func (a *Assigner) ExperimentID() string { return a.experimentID }

// Assign places userID. It holds no state and records a metric only.
func (a *Assigner) Assign(userID string) Assignment {
	slot := Slot(userID)
	bucket := AssignBucket(userID)
	metrics.ABAssignments.WithLabelValues(a.experimentID, string(bucket)).Inc()
	return Assignment{UserID: userID, ExperimentID: a.experimentID, Bucket: bucket, Slot: slot}
}
