package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atelier-arq/atelier-backend/internal/auth"
	"github.com/atelier-arq/atelier-backend/internal/logging"
)

const (
	HeaderRequestID = "X-Request-Id"
	ctxRequestID    = "request_id"
	maxRequestIDLen = 128
)

// RequestID tags every request with an id, taken from the caller when it
// looks sane, and emits one [req] access line after the handler chain.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if !acceptableID(rid) {
			rid = uuid.NewString()
		}
		c.Set(ctxRequestID, rid)
		c.Header(HeaderRequestID, rid)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), rid))

		began := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		actor := auth.UID(c)
		if actor == "" {
			actor = "-"
		}
		line := "[req] id=%s %s %s -> %d in %s uid=%s"
		if len(c.Errors) > 0 {
			log.Printf(line+" errors=%q", rid, c.Request.Method, route, c.Writer.Status(), time.Since(began).Round(time.Microsecond), actor, c.Errors.String())
			return
		}
		log.Printf(line, rid, c.Request.Method, route, c.Writer.Status(), time.Since(began).Round(time.Microsecond), actor)
	}
}

// acceptableID rejects empty, oversized or non-printable ids so a client
// cannot inject arbitrary text into log lines.
func acceptableID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		if r <= ' ' || r > '~' {
			return false
		}
	}
	return true
}
