package recommender

import "github.com/pkg/errors"

var (
	// ErrNoContentFound indicates retrieval or sampling yielded zero eligible
	// rows where at least one was required.
	ErrNoContentFound = errors.New("no content found")

	// ErrInvalidRating indicates a feedback value outside [-1, 1]. No mutation
	// is performed.
	ErrInvalidRating = errors.New("rating must be between -1 and 1")

	// ErrDimensionMismatch indicates a stored embedding does not match the
	// deployment-wide dimension. Fatal for the request.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNotOnboarded indicates the user has no reference embedding yet.
	ErrNotOnboarded = errors.New("user has not completed onboarding")

	// ErrNotFound indicates a referenced user, flavour or content row is
	// absent.
	ErrNotFound = errors.New("not found")
)
