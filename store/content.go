package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Content is a single ingested item. Rows are produced by the ingestion
// pipeline; this service only reads them, except for age-based pruning.
type Content struct {
	ID          int32
	ContentType string
	Title       string
	URL         string
	Description string
	SourceID    int32
	Date        time.Time
	Embedding   []float32
	Media       []byte // opaque JSON from the ingestion pipeline, may be nil
}

// RatedContent is a content row hydrated with the requesting subject's rating
// (zero when unrated).
type RatedContent struct {
	*Content
	SourceURL string
	Rating    float64
}

// ContentCandidate is one row of a candidate retrieval query: the content id,
// its publication date and the raw L2 distance to the reference embedding.
type ContentCandidate struct {
	ID       int32
	Date     time.Time
	Distance float64
}

// FindContentCandidates describes a nearest-neighbor candidate query.
type FindContentCandidates struct {
	UserID      string    // ratings of this user gate eligibility
	Embedding   []float32 // reference embedding
	ExcludedIDs []int32   // already-shown content
	MaxDistance float64   // L2 distance ceiling
	Since       time.Time // content older than this is skipped
	Limit       int
}

// Validate validates the candidate query.
func (f *FindContentCandidates) Validate() error {
	if f.UserID == "" {
		return errors.New("user id required")
	}
	if len(f.Embedding) == 0 {
		return errors.New("embedding cannot be empty")
	}
	if f.MaxDistance <= 0 {
		return errors.Errorf("max distance must be positive: %f", f.MaxDistance)
	}
	if f.Limit < 0 {
		return errors.Errorf("limit cannot be negative: %d", f.Limit)
	}
	if f.Limit == 0 {
		f.Limit = 100
	}
	return nil
}

// SampleDistantContent describes a diversity-constrained random sample:
// uniformly random content whose embedding is at least MinDistance away from
// every embedding of the KnownIDs set.
type SampleDistantContent struct {
	KnownIDs    []int32
	MinDistance float64
	Limit       int
}

// FindRatedContent hydrates content rows together with the given user's
// ratings. Either IDs or NearestTo must be set; NearestTo orders by distance
// ascending and requires a limit.
type FindRatedContent struct {
	UserID    string
	IDs       []int32
	NearestTo []float32
	Limit     int
}

// SearchContentCandidates runs the candidate retrieval query for the
// recommendation engine. Content the user down-rated is excluded; unrated and
// up-rated content is eligible.
func (s *Store) SearchContentCandidates(ctx context.Context, find *FindContentCandidates) ([]*ContentCandidate, error) {
	if err := find.Validate(); err != nil {
		return nil, err
	}
	return s.driver.SearchContentCandidates(ctx, find)
}

// SampleContent draws a random diversity-constrained sample for onboarding.
func (s *Store) SampleContent(ctx context.Context, sample *SampleDistantContent) ([]*Content, error) {
	return s.driver.SampleContent(ctx, sample)
}

// GetContent returns the content with the given id, or nil when absent.
func (s *Store) GetContent(ctx context.Context, id int32) (*Content, error) {
	return s.driver.GetContent(ctx, id)
}

// ListContentByIDs returns the content rows for the given ids, in no
// particular order.
func (s *Store) ListContentByIDs(ctx context.Context, ids []int32) ([]*Content, error) {
	if len(ids) == 0 {
		return []*Content{}, nil
	}
	return s.driver.ListContentByIDs(ctx, ids)
}

// ListRatedContent hydrates content rows with the user's ratings.
func (s *Store) ListRatedContent(ctx context.Context, find *FindRatedContent) ([]*RatedContent, error) {
	if len(find.IDs) == 0 && len(find.NearestTo) == 0 {
		return []*RatedContent{}, nil
	}
	return s.driver.ListRatedContent(ctx, find)
}

// DeleteContentBefore removes content published before the cutoff and returns
// the number of rows removed.
func (s *Store) DeleteContentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.driver.DeleteContentBefore(ctx, cutoff)
}
