package mocks

import (
	"context"
	"time"

	"blogapi/internal/model"
	"blogapi/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockBlogRepository struct {
	mock.Mock
}

func (m *MockBlogRepository) Insert(ctx context.Context, post *model.BlogPost) (*model.BlogPost, error) {
	args := m.Called(ctx, post)
	if f, ok := args.Get(0).(func(context.Context, *model.BlogPost) *model.BlogPost); ok {
		return f(ctx, post), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BlogPost), args.Error(1)
}

func (m *MockBlogRepository) FindByID(ctx context.Context, id string) (*model.BlogPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BlogPost), args.Error(1)
}

func (m *MockBlogRepository) List(ctx context.Context, limit int) ([]model.BlogPost, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BlogPost), args.Error(1)
}

func (m *MockBlogRepository) Update(ctx context.Context, id string, in model.UpdateBlogInput, updatedAt time.Time) (repository.UpdateResult, error) {
	args := m.Called(ctx, id, in, updatedAt)
	return args.Get(0).(repository.UpdateResult), args.Error(1)
}

func (m *MockBlogRepository) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlogRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
