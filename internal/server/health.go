package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aidetector/web"
)

// Health reports liveness plus model state. Always 200: a reachable
// process is the signal, model_loaded carries the rest.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"model_loaded": h.host.Ready(),
		"device":       h.host.Device(),
	})
}

// Index serves the embedded upload page.
func (h *Handler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}
