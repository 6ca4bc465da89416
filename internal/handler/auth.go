package handler

import (
	"net/http"

	"github.com/aman-churiwal/storefront-gateway/internal/identity"
	"github.com/aman-churiwal/storefront-gateway/internal/middleware"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	identity   *identity.Service
	cookieName string
	cookieTTL  int // seconds
	secure     bool
}

func NewAuthHandler(identityService *identity.Service, cookieName string, ttlHours int, secure bool) *AuthHandler {
	return &AuthHandler{
		identity:   identityService,
		cookieName: cookieName,
		cookieTTL:  ttlHours * 3600,
		secure:     secure,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Name     string `json:"name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.identity.Register(ctx, req.Email, req.Password, req.Name); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Account created"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	token, err := h.identity.Login(ctx, req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, h.cookieTTL, "/", "", h.secure, true)

	c.JSON(http.StatusOK, gin.H{"message": "Logged in"})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secure, true)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Returns the caller's own profile, resolved by the gate pipeline
func (h *AuthHandler) Me(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No active session"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.identity.GetUserByID(ctx, sess.UserID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}
