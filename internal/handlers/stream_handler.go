package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"astrowatch/internal/notify"
)

// StreamHandler - SSE-мост над шиной нотификаций: клиент получает
// broadcast-канал и, при указании userID, свой персональный канал.
type StreamHandler struct {
	gateway *notify.RedisGateway
}

func NewStreamHandler(gateway *notify.RedisGateway) *StreamHandler {
	return &StreamHandler{gateway: gateway}
}

func (h *StreamHandler) Stream(c *gin.Context) {
	channels := []string{notify.ChannelBroadcast}

	if userIDStr := c.Query("userID"); userIDStr != "" {
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userID"})
			return
		}
		channels = append(channels, notify.UserChannel(userID.String()))
	}

	events, unsubscribe := h.gateway.Subscribe(c.Request.Context(), channels...)
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			data, err := json.Marshal(ev.Payload)
			if err != nil {
				return true
			}
			c.SSEvent(ev.Event, string(data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
