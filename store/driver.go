package store

import (
	"context"
	"database/sql"
	"time"
)

// Driver is an interface for store driver.
// It contains all the methods that the store needs to implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error
	Migrate(ctx context.Context) error

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	UpdateUserEmbedding(ctx context.Context, id string, embedding []float32) error

	// Content model related methods.
	GetContent(ctx context.Context, id int32) (*Content, error)
	ListContentByIDs(ctx context.Context, ids []int32) ([]*Content, error)
	ListRatedContent(ctx context.Context, find *FindRatedContent) ([]*RatedContent, error)
	SearchContentCandidates(ctx context.Context, find *FindContentCandidates) ([]*ContentCandidate, error)
	SampleContent(ctx context.Context, sample *SampleDistantContent) ([]*Content, error)
	DeleteContentBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Flavour model related methods.
	CreateFlavour(ctx context.Context, create *Flavour) (*Flavour, error)
	ListFlavours(ctx context.Context, find *FindFlavour) ([]*Flavour, error)
	UpdateFlavourEmbedding(ctx context.Context, id int32, embedding []float32) error
	DeleteFlavour(ctx context.Context, id int32) error

	// Rating model related methods.
	UpsertRating(ctx context.Context, upsert *UpsertRating) (*Rating, error)
	GetRating(ctx context.Context, userID string, contentID int32) (*Rating, error)
}
