package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"astrowatch/internal/service"
)

type AlertHandler struct {
	service service.AlertService
}

func NewAlertHandler(service service.AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

func (h *AlertHandler) ListAlerts(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := uuid.Parse(c.Query("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userID"})
		return
	}

	unreadOnly := c.Query("unread") == "true"

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	alerts, err := h.service.ListUserAlerts(ctx, userID, unreadOnly, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to get alerts",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(alerts),
		"items": alerts,
	})
}

func (h *AlertHandler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	if err := h.service.MarkRead(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to mark alert read",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AlertHandler) MarkAllRead(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := uuid.Parse(c.Query("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userID"})
		return
	}

	updated, err := h.service.MarkAllRead(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to mark alerts read",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}

func (h *AlertHandler) UnreadCount(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := uuid.Parse(c.Query("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userID"})
		return
	}

	count, err := h.service.CountUnread(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to count unread alerts",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}
