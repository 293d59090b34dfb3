package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-loyalty/internal/events"
)

const streamHeartbeat = 25 * time.Second

// StreamHandler pushes calendar changes to the admin dashboard over
// server-sent events.
type StreamHandler struct {
	feed      events.Feed
	heartbeat time.Duration
}

func NewStreamHandler(feed events.Feed) *StreamHandler {
	return &StreamHandler{feed: feed, heartbeat: streamHeartbeat}
}

func (h *StreamHandler) Stream(c *gin.Context) {
	ch, cancel := h.feed.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.SSEvent("ready", gin.H{"at": time.Now().UTC()})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
