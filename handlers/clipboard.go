package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"beamclip/internal/services"
)

// ClipboardHandler handles sending and receiving clipboard items.
type ClipboardHandler struct {
	service *services.Lifecycle
}

// NewClipboardHandler creates a new clipboard handler.
func NewClipboardHandler(service *services.Lifecycle) *ClipboardHandler {
	return &ClipboardHandler{service: service}
}

// sendRequest is the body of POST /api/rooms/:code/send.
type sendRequest struct {
	Content string `json:"content"`
}

// Send handles POST /api/rooms/:code/send.
func (h *ClipboardHandler) Send(c *gin.Context) {
	view := resolveRoom(c, h.service)
	if view == nil {
		return
	}

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}

	item, err := h.service.SendText(c.Request.Context(), view.Room.ID, req.Content)
	switch err {
	case nil:
	case services.ErrEmptyContent:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	case services.ErrContentTooLarge:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content too long (max 10,000 characters)"})
		return
	case services.ErrRoomGone:
		// The room died between the lookup above and the service re-check.
		c.JSON(http.StatusGone, gin.H{"error": "Room expired"})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send text"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        item.ID,
		"createdAt": item.CreatedAt,
	})
}

// Receive handles GET /api/rooms/:code/receive?consume=true|false. The body
// is {"item": null} when the mailbox is empty.
func (h *ClipboardHandler) Receive(c *gin.Context) {
	view := resolveRoom(c, h.service)
	if view == nil {
		return
	}

	consume := c.Query("consume") == "true"
	item, err := h.service.ReceiveLatest(c.Request.Context(), view.Room.ID, consume)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to receive text"})
		return
	}

	if item == nil {
		c.JSON(http.StatusOK, gin.H{"item": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item": gin.H{
			"id":        item.ID,
			"content":   item.Content,
			"createdAt": item.CreatedAt,
		},
	})
}
