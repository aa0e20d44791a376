package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"astrowatch/internal/service"
	"astrowatch/internal/utils"
	"astrowatch/internal/worker"
)

type NEOHandler struct {
	service  service.NEOService
	pipeline *worker.Pipeline
}

func NewNEOHandler(service service.NEOService, pipeline *worker.Pipeline) *NEOHandler {
	return &NEOHandler{service: service, pipeline: pipeline}
}

func (h *NEOHandler) GetUpcoming(c *gin.Context) {
	ctx := c.Request.Context()

	days := 7 // значение по умолчанию
	if daysStr := c.Query("days"); daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 {
			days = d
		}
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	objects, err := h.service.GetUpcoming(ctx, days, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to get upcoming objects",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"days":  days,
		"count": len(objects),
		"items": objects,
	})
}

func (h *NEOHandler) GetByRefID(c *gin.Context) {
	ctx := c.Request.Context()

	obj, err := h.service.GetByRefID(ctx, c.Param("refID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "object not found",
		})
		return
	}

	c.JSON(http.StatusOK, obj)
}

type refreshRequest struct {
	Mode string `json:"mode" binding:"required,oneof=today week"`
}

// TriggerRefresh запускает пайплайн и отвечает сразу, не дожидаясь
// завершения прогона: вызывающий узнает только что прогон стартовал.
func (h *NEOHandler) TriggerRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"message": "mode must be 'today' or 'week'",
		})
		return
	}

	run, err := h.pipeline.Trigger(worker.Mode(req.Mode))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "failed to trigger pipeline",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"runId":     run.ID.String(),
		"mode":      string(run.Mode),
		"startedAt": run.StartedAt.Format(time.RFC3339),
		"message":   "pipeline run initiated",
	})
}

// ExportReport отдает Excel-отчет по объектам в окне сближения
func (h *NEOHandler) ExportReport(c *gin.Context) {
	ctx := c.Request.Context()

	days := 7
	if daysStr := c.Query("days"); daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 {
			days = d
		}
	}

	objects, err := h.service.GetUpcoming(ctx, days, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to get upcoming objects",
			"message": err.Error(),
		})
		return
	}

	buf, err := utils.BuildRiskReport(objects)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to build report",
			"message": err.Error(),
		})
		return
	}

	filename := "neo-risk-report-" + time.Now().UTC().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
