package recommender

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/internal/profile"
	"github.com/hrygo/gourmet/internal/vector"
	"github.com/hrygo/gourmet/store"
)

// fakeDriver is an in-memory store.Driver so engine tests run without a
// database.
type fakeDriver struct {
	mu       sync.Mutex
	users    map[string]*store.User
	contents map[int32]*store.Content
	flavours map[int32]*store.Flavour
	ratings  map[string]*store.Rating // key: userID/contentID
	nextID   int32

	candidates    []*store.ContentCandidate // canned candidate result
	sampled       []*store.Content          // canned sample result
	lastSample    *store.SampleDistantContent
	lastFind      *store.FindContentCandidates
	searchErr     error
	updateUserErr error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		users:    make(map[string]*store.User),
		contents: make(map[int32]*store.Content),
		flavours: make(map[int32]*store.Flavour),
		ratings:  make(map[string]*store.Rating),
		nextID:   1,
	}
}

func ratingKey(userID string, contentID int32) string {
	return fmt.Sprintf("%s/%d", userID, contentID)
}

func (f *fakeDriver) GetDB() *sql.DB                { return nil }
func (f *fakeDriver) Close() error                  { return nil }
func (f *fakeDriver) Migrate(context.Context) error { return nil }

func (f *fakeDriver) CreateUser(_ context.Context, create *store.User) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	create.CreatedTs = time.Now().Unix()
	f.users[create.ID] = create
	return create, nil
}

func (f *fakeDriver) GetUser(_ context.Context, id string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

func (f *fakeDriver) UpdateUserEmbedding(_ context.Context, id string, embedding []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateUserErr != nil {
		return f.updateUserErr
	}
	user, ok := f.users[id]
	if !ok {
		return errors.Errorf("user %s not found", id)
	}
	user.Embedding = embedding
	return nil
}

func (f *fakeDriver) GetContent(_ context.Context, id int32) (*store.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contents[id], nil
}

func (f *fakeDriver) ListContentByIDs(_ context.Context, ids []int32) ([]*store.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := []*store.Content{}
	for _, id := range ids {
		if content, ok := f.contents[id]; ok {
			list = append(list, content)
		}
	}
	return list, nil
}

func (f *fakeDriver) ListRatedContent(_ context.Context, find *store.FindRatedContent) ([]*store.RatedContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := find.IDs
	if len(ids) == 0 && find.NearestTo != nil {
		for id := range f.contents {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			di, _ := vector.L2Distance(f.contents[ids[i]].Embedding, find.NearestTo)
			dj, _ := vector.L2Distance(f.contents[ids[j]].Embedding, find.NearestTo)
			return di < dj
		})
		if find.Limit > 0 && len(ids) > find.Limit {
			ids = ids[:find.Limit]
		}
	}
	list := []*store.RatedContent{}
	for _, id := range ids {
		content, ok := f.contents[id]
		if !ok {
			continue
		}
		rated := &store.RatedContent{Content: content}
		if rating, ok := f.ratings[ratingKey(find.UserID, id)]; ok {
			rated.Rating = rating.Rating
		}
		list = append(list, rated)
	}
	return list, nil
}

func (f *fakeDriver) SearchContentCandidates(_ context.Context, find *store.FindContentCandidates) ([]*store.ContentCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.lastFind = find
	excluded := map[int32]struct{}{}
	for _, id := range find.ExcludedIDs {
		excluded[id] = struct{}{}
	}
	list := []*store.ContentCandidate{}
	for _, c := range f.candidates {
		if _, ok := excluded[c.ID]; ok {
			continue
		}
		if c.Date.Before(find.Since) {
			continue
		}
		copied := *c
		list = append(list, &copied)
	}
	return list, nil
}

func (f *fakeDriver) SampleContent(_ context.Context, sample *store.SampleDistantContent) ([]*store.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSample = sample
	if len(f.sampled) > sample.Limit {
		return f.sampled[:sample.Limit], nil
	}
	return f.sampled, nil
}

func (f *fakeDriver) DeleteContentBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeDriver) CreateFlavour(_ context.Context, create *store.Flavour) (*store.Flavour, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	create.ID = f.nextID
	f.nextID++
	create.CreatedAt = time.Now()
	f.flavours[create.ID] = create
	return create, nil
}

func (f *fakeDriver) ListFlavours(_ context.Context, find *store.FindFlavour) ([]*store.Flavour, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := []*store.Flavour{}
	for _, flavour := range f.flavours {
		if find.ID != nil && flavour.ID != *find.ID {
			continue
		}
		if find.UserID != nil && flavour.UserID != *find.UserID {
			continue
		}
		list = append(list, flavour)
	}
	return list, nil
}

func (f *fakeDriver) UpdateFlavourEmbedding(_ context.Context, id int32, embedding []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	flavour, ok := f.flavours[id]
	if !ok {
		return errors.Errorf("flavour %d not found", id)
	}
	flavour.Embedding = embedding
	return nil
}

func (f *fakeDriver) DeleteFlavour(_ context.Context, id int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.flavours[id]; !ok {
		return errors.Errorf("flavour %d not found", id)
	}
	delete(f.flavours, id)
	return nil
}

func (f *fakeDriver) UpsertRating(_ context.Context, upsert *store.UpsertRating) (*store.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ratingKey(upsert.UserID, upsert.ContentID)
	rating, ok := f.ratings[key]
	if !ok {
		rating = &store.Rating{ID: f.nextID, UserID: upsert.UserID, ContentID: upsert.ContentID}
		f.nextID++
		f.ratings[key] = rating
	}
	rating.Rating = upsert.Rating
	rating.Timestamp = time.Now()
	return rating, nil
}

func (f *fakeDriver) GetRating(_ context.Context, userID string, contentID int32) (*store.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ratings[ratingKey(userID, contentID)], nil
}

func testProfile() *profile.Profile {
	return &profile.Profile{
		Mode:                          "dev",
		Driver:                        "sqlite",
		DSN:                           "file::memory:",
		EmbeddingDim:                  4,
		MaxContentAgeDays:             7,
		AgePenaltyFactor:              6e-3,
		AdjustFactor:                  0.1,
		NumRecommendations:            12,
		SampleCount:                   12,
		MinSearchCosineSimilarity:     0.3,
		MaxOnboardingCosineSimilarity: 0.15,
	}
}

func newTestEngine(driver *fakeDriver, opts ...Option) *Engine {
	return New(store.New(driver, testProfile()), testProfile(), opts...)
}
