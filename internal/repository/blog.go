package repository

import (
	"context"
	"time"

	"blogapi/internal/model"
)

// BlogRepository defines data access for blog posts.
// No business logic here, strictly persistence operations against a single collection keyed by id.
type BlogRepository interface {
	// Insert assigns a fresh unique id, stores the post and returns the stored record.
	Insert(ctx context.Context, post *model.BlogPost) (*model.BlogPost, error)

	// FindByID returns ErrNotFound when no post has the id.
	FindByID(ctx context.Context, id string) (*model.BlogPost, error)

	// List returns at most limit posts in insertion order.
	List(ctx context.Context, limit int) ([]model.BlogPost, error)

	// Update overwrites the fields present in in and sets updated_at in one
	// atomic write. A missing post is reported through a zero MatchedCount,
	// not an error.
	Update(ctx context.Context, id string, in model.UpdateBlogInput, updatedAt time.Time) (UpdateResult, error)

	// Delete removes a post and returns how many records were deleted.
	Delete(ctx context.Context, id string) (int64, error)

	// Ping checks connectivity to the underlying store.
	Ping(ctx context.Context) error
}

// UpdateResult reports the outcome of an Update.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	// Post is the record as stored after the write; nil when nothing matched.
	Post *model.BlogPost
}
