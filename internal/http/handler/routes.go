package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"blogapi/internal/model"
	"blogapi/internal/service"
	"blogapi/internal/validation"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// gatherer may be nil, in which case /metrics is not served.
func RegisterRoutes(app *fiber.App, store Pinger, blogSvc service.BlogService, gatherer prometheus.Gatherer) {
	app.Get("/health", HealthCheck(store))
	app.Get("/healthz", LivenessProbe())
	if gatherer != nil {
		app.Get("/metrics", Metrics(gatherer))
	}

	blogs := app.Group("/blogs")
	blogs.Post("/", CreateBlog(blogSvc))
	blogs.Get("/", ListBlogs(blogSvc))
	blogs.Get("/:id", GetBlog(blogSvc))
	blogs.Put("/:id", UpdateBlog(blogSvc))
	blogs.Delete("/:id", DeleteBlog(blogSvc))
}

// HealthCheck pings the store and reports 503 when it is unreachable.
//
// @Summary  Readiness check
// @Tags     health
// @Produce  json
// @Success  200 {object} map[string]string
// @Failure  503 {object} errorPayload
// @Router   /health [get]
func HealthCheck(store Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			zerolog.Ctx(c.UserContext()).Warn().Err(err).Msg("store ping failed")
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a dependency-free liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Metrics exposes the Prometheus registry in text exposition format.
func Metrics(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

// decodeBody unmarshals the JSON request body into out.
// Type mismatches become *validation.Error; other decode failures are returned as is.
func decodeBody(c *fiber.Ctx, out any) error {
	if err := c.App().Config().JSONDecoder(c.Body(), out); err != nil {
		return validation.FromDecodeError(err)
	}
	return nil
}

// writeBodyError answers a failed decodeBody.
func writeBodyError(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return writeValidationError(c, verr)
	}
	return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
}

// writeServiceError maps service errors onto HTTP responses.
func writeServiceError(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return writeValidationError(c, verr)
	case errors.Is(err, service.ErrInvalidID), errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "blog post not found")
	case errors.Is(err, service.ErrNotModified):
		return writeError(c, fiber.StatusNotFound, "NOT_MODIFIED", "no changes were applied")
	default:
		zerolog.Ctx(c.UserContext()).Error().Err(err).Str("route", c.Route().Path).Msg("request failed")
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// CreateBlog creates a blog post.
//
// @Summary  Create a blog post
// @Tags     blogs
// @Accept   json
// @Produce  json
// @Param    body body model.CreateBlogInput true "Blog post"
// @Success  201 {object} model.BlogPost
// @Failure  400 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Router   /blogs [post]
func CreateBlog(blogSvc service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.CreateBlogInput
		if err := decodeBody(c, &in); err != nil {
			return writeBodyError(c, err)
		}
		post, err := blogSvc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	}
}

// ListBlogs lists blog posts in insertion order up to the configured cap.
//
// @Summary  List blog posts
// @Tags     blogs
// @Produce  json
// @Success  200 {array} model.BlogPost
// @Router   /blogs [get]
func ListBlogs(blogSvc service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := blogSvc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// GetBlog returns a blog post by id.
//
// @Summary  Get a blog post
// @Tags     blogs
// @Produce  json
// @Param    id path string true "Blog post id"
// @Success  200 {object} model.BlogPost
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /blogs/{id} [get]
func GetBlog(blogSvc service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		post, err := blogSvc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(post)
	}
}

// UpdateBlog applies a partial update.
//
// @Summary  Update a blog post
// @Tags     blogs
// @Accept   json
// @Produce  json
// @Param    id   path string                true "Blog post id"
// @Param    body body model.UpdateBlogInput true "Fields to change"
// @Success  200 {object} model.BlogPost
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Router   /blogs/{id} [put]
func UpdateBlog(blogSvc service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.UpdateBlogInput
		if err := decodeBody(c, &in); err != nil {
			return writeBodyError(c, err)
		}
		post, err := blogSvc.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(post)
	}
}

// DeleteBlog removes a blog post.
//
// @Summary  Delete a blog post
// @Tags     blogs
// @Produce  json
// @Param    id path string true "Blog post id"
// @Success  200 {object} map[string]string
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Router   /blogs/{id} [delete]
func DeleteBlog(blogSvc service.BlogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := blogSvc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"id":      id,
			"message": "blog post deleted",
		})
	}
}
