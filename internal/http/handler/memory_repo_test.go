package handler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// memoryRepo is an in-process BlogRepository keyed by uuid strings.
type memoryRepo struct {
	mu    sync.Mutex
	order []string
	posts map[string]model.BlogPost
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{posts: make(map[string]model.BlogPost)}
}

func (r *memoryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.posts)
}

func (r *memoryRepo) Insert(_ context.Context, post *model.BlogPost) (*model.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *post
	stored.ID = uuid.NewString()
	r.posts[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	return &stored, nil
}

func (r *memoryRepo) FindByID(_ context.Context, id string) (*model.BlogPost, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepo) List(_ context.Context, limit int) ([]model.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.BlogPost{}
	for _, id := range r.order {
		if len(out) == limit {
			break
		}
		if p, ok := r.posts[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryRepo) Update(_ context.Context, id string, in model.UpdateBlogInput, updatedAt time.Time) (repository.UpdateResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return repository.UpdateResult{}, repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return repository.UpdateResult{}, nil
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Author != nil {
		p.Author = *in.Author
	}
	if in.Tags != nil {
		p.Tags = *in.Tags
	}
	p.UpdatedAt = &updatedAt
	r.posts[id] = p
	return repository.UpdateResult{MatchedCount: 1, ModifiedCount: 1, Post: &p}, nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, err := uuid.Parse(id); err != nil {
		return 0, repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return 0, nil
	}
	delete(r.posts, id)
	return 1, nil
}

func (r *memoryRepo) Ping(context.Context) error { return nil }
