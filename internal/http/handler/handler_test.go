package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blogapi/internal/http/middleware"
	"blogapi/internal/model"
	repoMocks "blogapi/internal/repository/mocks"
	"blogapi/internal/service"
	serviceMocks "blogapi/internal/service/mocks"
	"blogapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testID = "665f1c2e9b1e8a3d4c2b1a00"

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, body io.Reader) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(body).Decode(&res))
	return res
}

func TestHealthCheck(t *testing.T) {
	store := new(repoMocks.MockBlogRepository)
	app := fiber.New()
	app.Get("/health", HealthCheck(store))

	t.Run("healthy", func(t *testing.T) {
		store.On("Ping", mock.Anything).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		store.On("Ping", mock.Anything).Return(errors.New("db error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp.Body).Error.Code)
	})

	store.AssertExpectations(t)
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "blogapi_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	app := fiber.New()
	app.Get("/metrics", Metrics(reg))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "blogapi_test_total 1")
}

func TestCreateBlog(t *testing.T) {
	mockSvc := new(serviceMocks.MockBlogService)
	app := fiber.New()
	app.Post("/blogs", CreateBlog(mockSvc))

	t.Run("success", func(t *testing.T) {
		in := model.CreateBlogInput{
			Title:   "My First Blog",
			Content: "...",
			Author:  "John Doe",
			Tags:    []string{"education", "school"},
		}
		created := &model.BlogPost{
			ID: testID, Title: in.Title, Content: in.Content, Author: in.Author,
			Tags: in.Tags, CreatedAt: time.Now().UTC(),
		}
		mockSvc.On("Create", mock.Anything, in).Return(created, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/blogs",
			`{"title":"My First Blog","content":"...","author":"John Doe","tags":["education","school"]}`))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var raw map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
		assert.Equal(t, testID, raw["id"])
		assert.NotEmpty(t, raw["created_at"])
		assert.Contains(t, raw, "updated_at")
		assert.Nil(t, raw["updated_at"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed json", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/blogs", `{"title":`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("wrong type", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/blogs", `{"title":5,"content":"c","author":"a"}`))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		res := decodeError(t, resp.Body)
		assert.Equal(t, "VALIDATION_ERROR", res.Error.Code)
		require.Len(t, res.Error.Details, 1)
		assert.Equal(t, "title", res.Error.Details[0].Field)
	})

	t.Run("validation error", func(t *testing.T) {
		verr := &validation.Error{Fields: []validation.FieldError{{Field: "title", Rule: "max", Message: "must be at most 100 characters"}}}
		mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, verr).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/blogs", `{"title":"x","content":"c","author":"a"}`))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		res := decodeError(t, resp.Body)
		assert.Equal(t, "VALIDATION_ERROR", res.Error.Code)
		assert.Equal(t, "max", res.Error.Details[0].Rule)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("insert failed")).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/blogs", `{"title":"t","content":"c","author":"a"}`))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestListBlogs(t *testing.T) {
	mockSvc := new(serviceMocks.MockBlogService)
	app := fiber.New()
	app.Get("/blogs", ListBlogs(mockSvc))

	t.Run("success", func(t *testing.T) {
		items := []model.BlogPost{{ID: testID, Title: "t", Tags: []string{}}}
		mockSvc.On("List", mock.Anything).Return(items, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blogs", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []model.BlogPost
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return([]model.BlogPost{}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blogs", nil))

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "[]", string(body))
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return(nil, errors.New("service error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blogs", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetBlog(t *testing.T) {
	mockSvc := new(serviceMocks.MockBlogService)
	app := fiber.New()
	app.Get("/blogs/:id", GetBlog(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, testID).Return(&model.BlogPost{ID: testID, Title: "t"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blogs/"+testID, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.BlogPost
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, testID, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, testID).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blogs/"+testID, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "invalid-id").Return(nil, service.ErrInvalidID).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blogs/invalid-id", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, testID).Return(nil, errors.New("db error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blogs/"+testID, nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUpdateBlog(t *testing.T) {
	mockSvc := new(serviceMocks.MockBlogService)
	app := fiber.New()
	app.Put("/blogs/:id", UpdateBlog(mockSvc))

	title := "Updated Title"

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, testID, mock.MatchedBy(func(in model.UpdateBlogInput) bool {
			return in.Title != nil && *in.Title == title && in.Content == nil && in.Author == nil && in.Tags == nil
		})).Return(&model.BlogPost{ID: testID, Title: title}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPut, "/blogs/"+testID, `{"title":"Updated Title"}`))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result model.BlogPost
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, title, result.Title)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, testID, mock.Anything).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPut, "/blogs/"+testID, `{"title":"x"}`))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("not modified", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, testID, mock.Anything).Return(nil, service.ErrNotModified).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPut, "/blogs/"+testID, `{"title":"x"}`))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_MODIFIED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPut, "/blogs/"+testID, `not json`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("wrong type for tags", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPut, "/blogs/"+testID, `{"tags":"go"}`))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		res := decodeError(t, resp.Body)
		require.Len(t, res.Error.Details, 1)
		assert.Equal(t, "tags", res.Error.Details[0].Field)
	})
}

func TestDeleteBlog(t *testing.T) {
	mockSvc := new(serviceMocks.MockBlogService)
	app := fiber.New()
	app.Delete("/blogs/:id", DeleteBlog(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, testID).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/blogs/"+testID, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, testID, body["id"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, testID).Return(service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/blogs/"+testID, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, testID).Return(errors.New("delete error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/blogs/"+testID, nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockBlogService)
	RegisterRoutes(app, new(repoMocks.MockBlogRepository), mockSvc, nil)

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/health", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("metrics disabled without gatherer", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("blog routes wired", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return([]model.BlogPost{}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/blogs", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestErrorBodyCarriesRequestID(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	mockSvc := new(serviceMocks.MockBlogService)
	RegisterRoutes(app, new(repoMocks.MockBlogRepository), mockSvc, nil)

	t.Run("caller supplied id", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, testID).Return(nil, service.ErrNotFound).Once()
		req := httptest.NewRequest(http.MethodGet, "/blogs/"+testID, nil)
		req.Header.Set(middleware.RequestIDHeader, "trace-me")

		resp, _ := app.Test(req)

		assert.Equal(t, "trace-me", resp.Header.Get(middleware.RequestIDHeader))
		assert.Equal(t, "trace-me", decodeError(t, resp.Body).RequestID)
	})

	t.Run("oversized id replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
		req.Header.Set(middleware.RequestIDHeader, strings.Repeat("z", 200))

		resp, _ := app.Test(req)

		rid := resp.Header.Get(middleware.RequestIDHeader)
		assert.Len(t, rid, 36)
		assert.Equal(t, rid, decodeError(t, resp.Body).RequestID)
	})
}

// TestBlogLifecycle drives the real service over an in-memory repository.
func TestBlogLifecycle(t *testing.T) {
	repo := newMemoryRepo()
	svc := service.NewBlogService(repo, validation.New(), 100)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, repo, svc, nil)

	resp, _ := app.Test(jsonRequest(http.MethodPost, "/blogs",
		`{"title":"My First Blog","content":"...","author":"John Doe","tags":["education","school"]}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created model.BlogPost
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Nil(t, created.UpdatedAt)

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/blogs/"+created.ID, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched model.BlogPost
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
	assert.Equal(t, created.Title, fetched.Title)
	assert.Equal(t, created.Tags, fetched.Tags)
	assert.True(t, created.CreatedAt.Equal(fetched.CreatedAt))

	resp, _ = app.Test(jsonRequest(http.MethodPut, "/blogs/"+created.ID, `{"title":"Updated Title"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated model.BlogPost
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, "Updated Title", updated.Title)
	assert.Equal(t, "...", updated.Content)
	assert.Equal(t, "John Doe", updated.Author)
	assert.Equal(t, []string{"education", "school"}, updated.Tags)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.NotNil(t, updated.UpdatedAt)

	resp, _ = app.Test(jsonRequest(http.MethodPost, "/blogs",
		`{"title":"`+strings.Repeat("x", 101)+`","content":"c","author":"a"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, 1, repo.count())

	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/blogs/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/blogs/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/blogs/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = app.Test(jsonRequest(http.MethodPut, "/blogs/"+created.ID, `{"title":"again"}`))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/blogs/not-a-valid-id", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

}
