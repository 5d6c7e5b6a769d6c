package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the Fiber locals key holding the request id.
	RequestIDLocalKey = "request_id"

	maxRequestIDLen = 128
)

// RequestID tags every request with an id that error bodies report as
// request_id and the request logger attaches to each line. A caller-supplied
// X-Request-ID is echoed back unless it is longer than maxRequestIDLen bytes,
// in which case a fresh UUID replaces it so oversized headers never reach logs.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(RequestIDHeader)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		c.Locals(RequestIDLocalKey, rid)
		c.Set(RequestIDHeader, rid)
		return c.Next()
	}
}
