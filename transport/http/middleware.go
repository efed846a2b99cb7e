package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/layer-3/walletauth/internal/metrics"
	"github.com/layer-3/walletauth/service"
	"github.com/rs/zerolog"
)

const (
	// ContextAddressKey holds the authenticated address in the gin context
	ContextAddressKey = "address"
	// ContextRequestIDKey holds the request ID in the gin context
	ContextRequestIDKey = "request_id"

	headerRequestID = "X-Request-ID"

	maxRequestIDLength = 64
)

// AuthMiddleware admits only requests carrying an authenticated session
func AuthMiddleware(authService *service.AuthService, h *AuthHandlers) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, authenticated, err := authService.Session(c.Request.Context(), h.jar(c))
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to read session")
		}
		if !authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Message: "Not authenticated"})
			return
		}

		// Set the address in the context
		c.Set(ContextAddressKey, session.Address)

		c.Next()
	}
}

// RequestID tags each request with an ID, reusing the caller's when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if !validRequestID(id) {
			id = uuid.New().String()
		}
		c.Set(ContextRequestIDKey, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// validRequestID accepts short tokens of letters, digits, '.', '_' and '-'
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// RequestLogger logs every request and records its latency
func RequestLogger(logger zerolog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		if m != nil {
			m.HandlerSeconds.WithLabelValues(route, strconv.Itoa(status)).Observe(latency.Seconds())
		}

		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("request_id", c.GetString(ContextRequestIDKey)).
			Msg("request")
	}
}

// Recovery turns panics into a 500 envelope
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, Response{Message: "Internal server error"})
	})
}
