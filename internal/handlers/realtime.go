package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ufoundit-dev/ufoundit/internal/realtime"
)

// RealtimeHandler upgrades authenticated requests to websocket connections.
type RealtimeHandler struct {
	hub *realtime.Hub
}

// NewRealtimeHandler constructs a RealtimeHandler.
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Connect hands the request to the hub. The auth middleware has already
// bound the caller's identity; the hub assigns the endpoint id.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	h.hub.Serve(currentUserID(c), currentUserName(c), c.Writer, c.Request)
}
