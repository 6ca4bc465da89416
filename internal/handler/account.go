package handler

import (
	"net/http"

	"github.com/aman-churiwal/storefront-gateway/internal/repository"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Staff administration endpoints, reachable only through the privileged
// route class.
type AccountHandler struct {
	users *repository.UserRepository
}

func NewAccountHandler(users *repository.UserRepository) *AccountHandler {
	return &AccountHandler{users: users}
}

func (h *AccountHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	users, err := h.users.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *AccountHandler) Get(c *gin.Context) {
	id := c.Param("id")

	ctx := c.Request.Context()
	user, err := h.users.FindById(ctx, id)
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

// Promotes or demotes a user's staff flag
func (h *AccountHandler) SetStaff(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		IsStaff *bool `json:"is_staff" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.users.SetStaff(ctx, id, *req.IsStaff); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Staff flag updated"})
}
