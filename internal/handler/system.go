package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aman-churiwal/storefront-gateway/internal/service"
	"github.com/aman-churiwal/storefront-gateway/internal/upstream"
	"github.com/gin-gonic/gin"
)

// Handles operational endpoints for staff dashboards
type SystemHandler struct {
	pool    *upstream.Pool
	traffic *service.TrafficService
}

func NewSystemHandler(pool *upstream.Pool, traffic *service.TrafficService) *SystemHandler {
	return &SystemHandler{
		pool:    pool,
		traffic: traffic,
	}
}

// Returns health and breaker state for every upstream target
func (h *SystemHandler) UpstreamStatus(c *gin.Context) {
	statuses := make(map[string]interface{})

	for target, healthy := range h.pool.Targets() {
		snapshot := h.pool.Breaker(target).Snapshot()

		statuses[target] = gin.H{
			"healthy":      healthy,
			"breaker":      snapshot.State,
			"failures":     snapshot.Failures,
			"last_failure": snapshot.LastFailure,
			"last_change":  snapshot.LastChange,
		}
	}

	c.JSON(http.StatusOK, statuses)
}

// Manually closes the breaker for a target
func (h *SystemHandler) ResetBreaker(c *gin.Context) {
	target := c.Query("target")

	breaker := h.pool.Breaker(target)
	if breaker == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown upstream target"})
		return
	}

	breaker.Reset()

	c.JSON(http.StatusOK, gin.H{
		"message": "Breaker reset successfully",
		"target":  target,
	})
}

// Returns the gate traffic summary for the requested window (default 24h)
func (h *SystemHandler) TrafficSummary(c *gin.Context) {
	hours := 24
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hours parameter"})
			return
		}
		hours = parsed
	}

	to := time.Now()
	from := to.Add(-time.Duration(hours) * time.Hour)

	ctx := c.Request.Context()
	summary, err := h.traffic.GetSummary(ctx, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Deletes gate decisions older than the retention period (default 30 days)
func (h *SystemHandler) CleanupDecisions(c *gin.Context) {
	retentionDays := 30
	if raw := c.Query("retention_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid retention_days parameter"})
			return
		}
		retentionDays = parsed
	}

	ctx := c.Request.Context()
	deleted, err := h.traffic.CleanupOldDecisions(ctx, retentionDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Old decisions deleted",
		"deleted": deleted,
	})
}

// Returns recent gate decisions with pagination
func (h *SystemHandler) RecentDecisions(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	to := time.Now()
	from := to.Add(-24 * time.Hour)

	ctx := c.Request.Context()
	decisions, err := h.traffic.GetDecisions(ctx, from, to, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, decisions)
}
