package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/internal/metrics"
	"github.com/layer-3/walletauth/ports"
	"github.com/layer-3/walletauth/service"
	"github.com/rs/zerolog"
)

// Response is the envelope of every API response
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// NonceData is returned by the nonce endpoint
type NonceData struct {
	Nonce string `json:"nonce"`
}

// MeData is returned by the protected profile endpoint
type MeData struct {
	Address string `json:"address"`
}

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	codec       ports.SessionCodec
	cookie      CookieOptions
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, codec ports.SessionCodec, cookie CookieOptions, m *metrics.Metrics, logger zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		codec:       codec,
		cookie:      cookie,
		metrics:     m,
		logger:      logger,
	}
}

func (h *AuthHandlers) jar(c *gin.Context) ports.SessionJar {
	return newCookieJar(c, h.codec, h.cookie, h.logger)
}

// Nonce issues a challenge nonce for the address query parameter
func (h *AuthHandlers) Nonce(c *gin.Context) {
	nonce, err := h.authService.IssueNonce(c.Request.Context(), h.jar(c), c.Query("address"))
	if err != nil {
		if errors.Is(err, core.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, Response{Message: "Missing address"})
			return
		}
		h.logger.Error().Err(err).Msg("failed to issue nonce")
		c.JSON(http.StatusInternalServerError, Response{Message: "Failed to issue nonce"})
		return
	}

	if h.metrics != nil {
		h.metrics.NoncesIssued.Inc()
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: NonceData{Nonce: nonce}})
}

// Verify checks a signed challenge and authenticates the session
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req service.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.observeVerify(metrics.OutcomeInvalidRequest)
		c.JSON(http.StatusBadRequest, Response{Message: "Missing parameters"})
		return
	}

	session, err := h.authService.Verify(c.Request.Context(), h.jar(c), req)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMsg := "Internal server error"
		outcome := metrics.OutcomeError

		// Map specific errors to appropriate status codes
		switch {
		case errors.Is(err, core.ErrInvalidRequest):
			statusCode = http.StatusBadRequest
			errorMsg = "Missing parameters"
			outcome = metrics.OutcomeInvalidRequest
		case errors.Is(err, core.ErrInvalidChallenge):
			statusCode = http.StatusBadRequest
			errorMsg = "Invalid nonce"
			outcome = metrics.OutcomeInvalidChallenge
		case errors.Is(err, core.ErrInvalidSignature):
			statusCode = http.StatusBadRequest
			errorMsg = "Invalid signature"
			outcome = metrics.OutcomeInvalidSignature
		default:
			h.logger.Error().Err(err).Msg("verification failed unexpectedly")
		}

		if statusCode != http.StatusInternalServerError {
			h.logger.Debug().Err(err).Str("address", req.Address).Msg("verification rejected")
		}

		h.observeVerify(outcome)
		c.JSON(statusCode, Response{Message: errorMsg})
		return
	}

	h.observeVerify(metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, Response{Success: true, Data: session.Public()})
}

// Session returns the current session, or destroys it with ?action=logout
func (h *AuthHandlers) Session(c *gin.Context) {
	ctx := c.Request.Context()
	jar := h.jar(c)

	if c.Query("action") == "logout" {
		session, err := h.authService.Logout(ctx, jar)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to destroy session")
			session = core.DefaultSession()
		}
		if h.metrics != nil {
			h.metrics.Logouts.Inc()
		}
		c.JSON(http.StatusOK, Response{Success: true, Data: session.Public()})
		return
	}

	session, authenticated, err := h.authService.Session(ctx, jar)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read session")
	}

	c.JSON(http.StatusOK, Response{Success: authenticated, Data: session.Public()})
}

// Me returns information about the authenticated account
func (h *AuthHandlers) Me(c *gin.Context) {
	// Address is set by the auth middleware
	address, exists := c.Get(ContextAddressKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, Response{Message: "Address not found in context"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: MeData{Address: address.(string)}})
}

// Health reports liveness
func (h *AuthHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *AuthHandlers) observeVerify(outcome string) {
	if h.metrics != nil {
		h.metrics.VerifyOutcome.WithLabelValues(outcome).Inc()
	}
}
