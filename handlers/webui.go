package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"beamclip/config"
)

// WebUIHandler handles the browser interface.
type WebUIHandler struct {
	config *config.Config
}

// NewWebUIHandler creates a new web UI handler.
func NewWebUIHandler(config *config.Config) *WebUIHandler {
	return &WebUIHandler{config: config}
}

// Index handles the landing page via GET /.
func (h *WebUIHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":   "Beamclip",
		"BaseURL": baseURL(c, h.config),
		"Version": h.config.Version,
	})
}

// Room handles GET /:code. The page itself resolves the room via the API, so
// expired and unknown codes render their distinct messages client-side.
func (h *WebUIHandler) Room(c *gin.Context) {
	c.HTML(http.StatusOK, "room.html", gin.H{
		"Title":   "Beamclip",
		"Code":    c.Param("code"),
		"BaseURL": baseURL(c, h.config),
	})
}

// baseURL returns the configured base URL, or derives one from the request.
func baseURL(c *gin.Context, cfg *config.Config) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	scheme := "http"
	if isHTTPS(c) {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}

// isHTTPS detects if the original request was HTTPS, even behind proxies.
func isHTTPS(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}

	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	if proto := c.GetHeader("X-Forwarded-Protocol"); proto == "https" {
		return true
	}
	if scheme := c.GetHeader("X-Scheme"); scheme == "https" {
		return true
	}
	if c.GetHeader("X-Forwarded-Ssl") == "on" {
		return true
	}

	return false
}
