// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// EventType classifies a user action on a content item.
type EventType string

const (
	// EventView is a content view.
	EventView EventType = "view"
	// EventLike is an explicit like.
	EventLike EventType = "like"
	// EventShare is a share to another user or channel.
	EventShare EventType = "share"
	// EventAddToCart is an add-to-cart action.
	EventAddToCart EventType = "add_to_cart"
	// EventPurchase is a completed purchase.
	EventPurchase EventType = "purchase"
)

// Weight returns the interaction weight contributed by this event type.
// Unknown types contribute nothing.
func (t EventType) Weight() float64 {
	switch t {
	case EventView:
		return 1
	case EventLike:
		return 3
	case EventShare:
		return 5
	case EventAddToCart:
		return 7
	case EventPurchase:
		return 10
	default:
		return 0
	}
}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	return t.Weight() > 0
}

// ParseEventType converts the wire form of an event type, accepting the
// hyphenated "add-to-cart" spelling as well.
func ParseEventType(s string) (EventType, error) {
	if s == "add-to-cart" {
		return EventAddToCart, nil
	}
	t := EventType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown interaction type %q", s)
	}
	return t, nil
}

// Event is a single user action read from the interaction gateway.
type Event struct {
	UserID    string    `json:"userId"`
	ContentID string    `json:"contentId"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Method identifies which similarity engine produced a score.
type Method string

const (
	// MethodUserBased is user-based collaborative filtering.
	MethodUserBased Method = "user-based"
	// MethodItemBased is item-based collaborative filtering.
	MethodItemBased Method = "item-based"
	// MethodContentBased is content-feature similarity.
	MethodContentBased Method = "content-based"
	// MethodPopularity marks candidates produced by the fallback provider.
	MethodPopularity Method = "popularity"
)

// Methods lists the similarity engines in combination order.
var Methods = []Method{MethodUserBased, MethodItemBased, MethodContentBased}

// InteractionVector maps content IDs to the accumulated interaction weight
// of one user.
type InteractionVector map[string]float64

// BuildVector folds events into an interaction vector. Events of unknown
// type are skipped.
func BuildVector(events []Event) InteractionVector {
	v := make(InteractionVector, len(events))
	for _, e := range events {
		if w := e.Type.Weight(); w > 0 {
			v[e.ContentID] += w
		}
	}
	return v
}

// Norm returns the Euclidean norm of the vector.
func (v InteractionVector) Norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// ContentStats holds engagement counters for a content item.
type ContentStats struct {
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	Purchases   int64     `json:"purchases"`
	Rating      float64   `json:"rating"`
	PublishedAt time.Time `json:"publishedAt"`
}

// PurchaseRate is purchases per view, zero when the item has no views.
func (s ContentStats) PurchaseRate() float64 {
	if s.Views <= 0 {
		return 0
	}
	return float64(s.Purchases) / float64(s.Views)
}

// CreatorStats holds the reputation inputs for a content creator.
type CreatorStats struct {
	Revenue   float64 `json:"revenue"`
	Sales     int64   `json:"sales"`
	Followers int64   `json:"followers"`
	Rating    float64 `json:"rating"`
}

// ContentFeatureProfile is the catalog snapshot of one content item.
type ContentFeatureProfile struct {
	ContentID string   `json:"contentId"`
	Title     string   `json:"title,omitempty"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	FileType  string   `json:"fileType"`
	CreatorID string   `json:"creatorId"`

	// Fingerprint is a fixed-length perceptual hash compared by Hamming distance.
	Fingerprint []byte `json:"fingerprint,omitempty"`

	Stats   ContentStats `json:"stats"`
	Creator CreatorStats `json:"creator"`
}

// CatalogFilter narrows a catalog listing.
type CatalogFilter struct {
	// Category restricts the listing to one category when non-empty.
	Category string
	// Limit caps the number of profiles returned; zero means no cap.
	Limit int
}

// SimilarityScore is one engine's opinion about a candidate.
type SimilarityScore struct {
	SubjectID   string  `json:"subjectId"`
	CandidateID string  `json:"candidateId"`
	Score       float64 `json:"score"`
	Method      Method  `json:"method"`
}

// RankingSignals are the normalized inputs of the advanced ranker.
type RankingSignals struct {
	Base              float64 `json:"base"`
	Popularity        float64 `json:"popularity"`
	Freshness         float64 `json:"freshness"`
	Engagement        float64 `json:"engagement"`
	CreatorReputation float64 `json:"creatorReputation"`
}

// Candidate is the unit flowing through combine, rank and diversify.
type Candidate struct {
	ContentID string          `json:"contentId"`
	Score     float64         `json:"score"`
	Reason    string          `json:"reason"`
	Metadata  Metadata        `json:"metadata"`
	Signals   *RankingSignals `json:"signals,omitempty"`

	// Profile is attached while the candidate moves through the pipeline and
	// never serialized.
	Profile *ContentFeatureProfile `json:"-"`
}

// Metadata describes where a candidate came from.
type Metadata struct {
	Category  string             `json:"category,omitempty"`
	CreatorID string             `json:"creatorId,omitempty"`
	FileType  string             `json:"fileType,omitempty"`
	Tags      []string           `json:"tags,omitempty"`
	Method    Method             `json:"method"`
	Scores    map[Method]float64 `json:"scores,omitempty"`

	// MatchedFeatures is set by the similar-by-features lookup.
	MatchedFeatures []string `json:"matchedFeatures,omitempty"`
}

// Source records how a response was produced.
type Source string

const (
	// SourceCache means the response was served from the cache.
	SourceCache Source = "cache"
	// SourceComputed means the hybrid pipeline produced the response.
	SourceComputed Source = "computed"
	// SourceFallback means the fallback provider produced the response.
	SourceFallback Source = "fallback"
)

// Result is the outcome of one orchestrator call.
type Result struct {
	Candidates  []Candidate  `json:"recommendations"`
	Source      Source       `json:"source"`
	Bucket      Bucket       `json:"testGroup,omitempty"`
	UserProfile *UserSummary `json:"userProfile,omitempty"`
}

// UserSummary describes the preferences visible in a user's history.
type UserSummary struct {
	FavoriteCategories []string `json:"favoriteCategories"`
	FavoriteCreators   []string `json:"favoriteCreators"`
	InteractionCount   int      `json:"interactionCount"`
	AverageRating      float64  `json:"averageRating"`
}

// SortCandidates orders candidates by descending score, breaking ties by
// content ID so that equal inputs always produce the same order.
func SortCandidates(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Score != cs[j].Score {
			return cs[i].Score > cs[j].Score
		}
		return cs[i].ContentID < cs[j].ContentID
	})
}

// SortScores orders similarity scores the same way as SortCandidates.
func SortScores(ss []SimilarityScore) {
	sort.SliceStable(ss, func(i, j int) bool {
		if ss[i].Score != ss[j].Score {
			return ss[i].Score > ss[j].Score
		}
		return ss[i].CandidateID < ss[j].CandidateID
	})
}
