package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"beamclip/config"
	"beamclip/internal/services"
)

// QRHandler serves QR code images linking to a room.
type QRHandler struct {
	service *services.Lifecycle
	config  *config.Config
}

// NewQRHandler creates a new QR handler.
func NewQRHandler(service *services.Lifecycle, config *config.Config) *QRHandler {
	return &QRHandler{service: service, config: config}
}

// Room handles GET /api/rooms/:code/qr with a PNG encoding the room URL, so
// the second device can join by camera instead of typing the code.
func (h *QRHandler) Room(c *gin.Context) {
	view := resolveRoom(c, h.service)
	if view == nil {
		return
	}

	roomURL := baseURL(c, h.config) + "/" + view.Room.Code
	png, err := qrcode.Encode(roomURL, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
