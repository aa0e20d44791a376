package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"astrowatch/internal/repository"
)

// UserHandler - пользовательские мутации настроек алертов.
// Пайплайн читает эти профили только на чтение.
type UserHandler struct {
	users repository.UserRepository
}

func NewUserHandler(users repository.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) GetAlertPrefs(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.users.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alertsEnabled":  user.AlertsEnabled,
		"minDiameter":    user.MinDiameterM,
		"maxDistance":    user.MaxDistanceLunar,
		"riskThreshold":  user.RiskThreshold,
		"watchedObjects": user.WatchedObjects,
	})
}

type alertPrefsRequest struct {
	AlertsEnabled *bool    `json:"alertsEnabled"`
	MinDiameter   *float64 `json:"minDiameter"`
	MaxDistance   *float64 `json:"maxDistance"`
	RiskThreshold *int     `json:"riskThreshold" binding:"omitempty,min=1,max=100"`
}

func (h *UserHandler) UpdateAlertPrefs(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req alertPrefsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"message": err.Error(),
		})
		return
	}

	user, err := h.users.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if req.AlertsEnabled != nil {
		user.AlertsEnabled = *req.AlertsEnabled
	}
	if req.MinDiameter != nil {
		user.MinDiameterM = *req.MinDiameter
	}
	if req.MaxDistance != nil {
		user.MaxDistanceLunar = *req.MaxDistance
	}
	if req.RiskThreshold != nil {
		user.RiskThreshold = *req.RiskThreshold
	}

	if err := h.users.Update(ctx, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to update preferences",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *UserHandler) WatchObject(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	refID := c.Param("refID")
	if refID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing object reference id"})
		return
	}

	user, err := h.users.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if !user.IsWatching(refID) {
		user.WatchedObjects = append(user.WatchedObjects, refID)
		if err := h.users.Update(ctx, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to update watch list",
				"message": err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "watching": len(user.WatchedObjects)})
}

func (h *UserHandler) UnwatchObject(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	refID := c.Param("refID")

	user, err := h.users.GetByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	filtered := user.WatchedObjects[:0]
	for _, watched := range user.WatchedObjects {
		if watched != refID {
			filtered = append(filtered, watched)
		}
	}
	user.WatchedObjects = filtered

	if err := h.users.Update(ctx, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to update watch list",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "watching": len(user.WatchedObjects)})
}
