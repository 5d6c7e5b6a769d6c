package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"blogapi/internal/model"
	"blogapi/internal/repository"
	"blogapi/internal/validation"
)

var (
	ErrIDRequired  = errors.New("id is required")
	ErrInvalidID   = errors.New("invalid blog id")
	ErrNotFound    = errors.New("blog post not found")
	ErrNotModified = errors.New("blog post not modified")
)

// DefaultListLimit caps List when no limit is configured.
const DefaultListLimit = 100

var tracer = otel.Tracer("blogapi/internal/service")

// BlogService defines the use cases for handling blog posts.
type BlogService interface {
	// Create validates the input, stamps created_at and stores a new post.
	Create(ctx context.Context, in model.CreateBlogInput) (*model.BlogPost, error)

	// List returns stored posts in insertion order, capped at the configured limit.
	List(ctx context.Context) ([]model.BlogPost, error)

	// Get returns a single post by its ID.
	Get(ctx context.Context, id string) (*model.BlogPost, error)

	// Update applies a partial update, refreshes updated_at and returns the stored post.
	Update(ctx context.Context, id string, in model.UpdateBlogInput) (*model.BlogPost, error)

	// Delete removes a post by ID.
	Delete(ctx context.Context, id string) error
}

type blogService struct {
	repo      repository.BlogRepository
	validator *validation.Validator
	listLimit int
	now       func() time.Time
}

// NewBlogService constructs a new BlogService. A non-positive listLimit falls back to DefaultListLimit.
func NewBlogService(repo repository.BlogRepository, v *validation.Validator, listLimit int) BlogService {
	if listLimit <= 0 {
		listLimit = DefaultListLimit
	}
	return &blogService{
		repo:      repo,
		validator: v,
		listLimit: listLimit,
		now:       now,
	}
}

// now is truncated to milliseconds, the resolution MongoDB stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// mapRepoErr translates repository sentinels into service errors.
func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInvalidID):
		return ErrInvalidID
	default:
		return err
	}
}

func (s *blogService) Create(ctx context.Context, in model.CreateBlogInput) (*model.BlogPost, error) {
	ctx, span := tracer.Start(ctx, "BlogService.Create")
	defer span.End()

	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	post := &model.BlogPost{
		Title:     in.Title,
		Content:   in.Content,
		Author:    in.Author,
		Tags:      tags,
		CreatedAt: s.now(),
	}

	stored, err := s.repo.Insert(ctx, post)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("insert blog post: %w", err)
	}
	span.SetAttributes(attribute.String("blog.id", stored.ID))
	return stored, nil
}

func (s *blogService) List(ctx context.Context) ([]model.BlogPost, error) {
	ctx, span := tracer.Start(ctx, "BlogService.List")
	defer span.End()

	items, err := s.repo.List(ctx, s.listLimit)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list blog posts: %w", err)
	}
	span.SetAttributes(attribute.Int("blog.count", len(items)))
	return items, nil
}

func (s *blogService) Get(ctx context.Context, id string) (*model.BlogPost, error) {
	ctx, span := tracer.Start(ctx, "BlogService.Get")
	defer span.End()

	if id == "" {
		return nil, ErrIDRequired
	}
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return post, nil
}

// Update returns the post as written by the same store call. It reports
// ErrNotFound when no post matched and ErrNotModified when a post matched
// but the store changed nothing.
func (s *blogService) Update(ctx context.Context, id string, in model.UpdateBlogInput) (*model.BlogPost, error) {
	ctx, span := tracer.Start(ctx, "BlogService.Update")
	defer span.End()

	if id == "" {
		return nil, ErrIDRequired
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	res, err := s.repo.Update(ctx, id, in, s.now())
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if res.MatchedCount == 0 || res.Post == nil {
		return nil, ErrNotFound
	}
	if res.ModifiedCount == 0 {
		return nil, ErrNotModified
	}
	span.SetAttributes(attribute.String("blog.id", res.Post.ID))
	return res.Post, nil
}

func (s *blogService) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "BlogService.Delete")
	defer span.End()

	if id == "" {
		return ErrIDRequired
	}
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
