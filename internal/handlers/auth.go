package handlers

import (
	"errors"
	"net/http"

	"github.com/cinelog/backend/internal/auth"
	apierrors "github.com/cinelog/backend/internal/errors"
	"github.com/cinelog/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// AuthHandlers contains authentication HTTP handlers
type AuthHandlers struct {
	authService *auth.Service
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService *auth.Service) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Register creates a new account
// POST /api/v1/auth/register
func (h *AuthHandlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.Register(req)
	if errors.Is(err, auth.ErrUserExists) {
		util.RespondWithAPIError(c, apierrors.AlreadyExists("account"))
		return
	}
	if errors.Is(err, auth.ErrUsernameExists) {
		util.RespondWithAPIError(c, apierrors.AlreadyExists("username"))
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to create account")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login authenticates with email and password
// POST /api/v1/auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	resp, err := h.authService.Login(req)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		util.RespondUnauthorized(c, "invalid email or password")
		return
	}
	if err != nil {
		util.RespondInternalError(c, "failed to log in")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandlers) Me(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
