package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/styles"
)

type StylesHandler struct {
	manager *styles.Manager
}

func NewStylesHandler(manager *styles.Manager) *StylesHandler {
	return &StylesHandler{manager: manager}
}

// ListStyles returns every known style plus the "random" meta-style
func (h *StylesHandler) ListStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"styles":    h.manager.All(),
		"available": h.manager.Available(),
	})
}
