package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"beamclip/internal/services"
)

// RoomHandler handles room creation and lookup.
type RoomHandler struct {
	service *services.Lifecycle
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(service *services.Lifecycle) *RoomHandler {
	return &RoomHandler{service: service}
}

// Create handles POST /api/rooms.
func (h *RoomHandler) Create(c *gin.Context) {
	room, err := h.service.CreateRoom(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": room.Code})
}

// Get handles GET /api/rooms/:code. serverNow lets clients correct for clock
// skew when rendering the countdown.
func (h *RoomHandler) Get(c *gin.Context) {
	view := resolveRoom(c, h.service)
	if view == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        view.Room.ID,
		"code":      view.Room.Code,
		"expiresAt": view.Room.ExpiresAt,
		"serverNow": time.Now(),
	})
}

// resolveRoom looks up the room for the :code route param and writes the
// 404/410 response itself when the room is missing or expired. A nil return
// means the response has already been written.
func resolveRoom(c *gin.Context, service *services.Lifecycle) *services.RoomView {
	view, err := service.GetRoom(c.Request.Context(), c.Param("code"))
	if err == services.ErrRoomNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return nil
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch room"})
		return nil
	}
	if view.Expired {
		c.JSON(http.StatusGone, gin.H{"error": "Room expired"})
		return nil
	}
	return view
}
