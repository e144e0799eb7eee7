package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	apperrors "tracker/internal/errors"
	"tracker/internal/logger"
	"tracker/internal/middleware"
)

// AuthHandler exchanges the owner's passcode for an access token. With no
// passcode hash configured the API is open and login is disabled.
type AuthHandler struct {
	passcodeHash string
	jwtSecret    string
	tokenTTL     time.Duration
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(passcodeHash, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		passcodeHash: passcodeHash,
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
	}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Passcode string `json:"passcode" binding:"required,max=72"`
}

// TokenResponse represents the authentication response with token
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// Login handles passcode login
// @Summary     Login
// @Description Exchange the passcode for a bearer token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "Passcode"
// @Success     200 {object} TokenResponse "Token issued"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid passcode"
// @Failure     404 {object} ErrorResponse "Login not enabled"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	if h.passcodeHash == "" {
		respondWithError(c, apperrors.ErrAuthNotConfigured)
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.passcodeHash), []byte(req.Passcode)); err != nil {
		logger.Get().Warnw("failed login attempt", "client_ip", c.ClientIP())
		respondWithError(c, apperrors.ErrInvalidPasscode)
		return
	}

	token, expires, err := middleware.GenerateToken(h.jwtSecret, h.tokenTTL)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
	})
}

// Status reports whether the API requires a token
// @Summary     Auth status
// @Tags        auth
// @Produce     json
// @Success     200 {object} map[string]bool "Whether login is required"
// @Router      /auth/status [get]
func (h *AuthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authEnabled": h.passcodeHash != ""})
}
