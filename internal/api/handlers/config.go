package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/logger"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/params"
	"github.com/mihailmariusiondev/pixel-prophet-bot/internal/services"
)

type ConfigHandler struct {
	config *services.ConfigService
}

func NewConfigHandler(config *services.ConfigService) *ConfigHandler {
	return &ConfigHandler{config: config}
}

type SetConfigRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// GetConfig returns the user's effective configuration: schema defaults
// overlaid with their stored overrides.
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	resolved, err := h.config.Resolve(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	configured, err := h.config.IsConfigured(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":    userID,
		"config":     resolved,
		"configured": configured,
	})
}

// SetConfig validates and persists a single parameter write
func (h *ConfigHandler) SetConfig(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req SetConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resolved, err := h.config.ValidateAndSet(userID, req.Key, req.Value)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Configuration updated", logger.Fields{
		"request_id": c.GetString("request_id"),
		"user_id":    userID,
		"key":        req.Key,
	})

	c.JSON(http.StatusOK, gin.H{
		"key":    req.Key,
		"value":  resolved[req.Key],
		"config": resolved,
	})
}

// ListParameters exposes the parameter schema so clients can render
// configuration menus without hardcoding it
func (h *ConfigHandler) ListParameters(c *gin.Context) {
	descriptors := make([]gin.H, 0, len(params.Keys()))
	for _, key := range params.Keys() {
		desc, _ := params.Lookup(key)
		entry := gin.H{
			"key":         key,
			"kind":        string(desc.Kind),
			"default":     desc.Default,
			"description": desc.Description,
		}
		if len(desc.Allowed) > 0 {
			entry["allowed"] = desc.Allowed
		}
		descriptors = append(descriptors, entry)
	}

	c.JSON(http.StatusOK, gin.H{"parameters": descriptors})
}

// parseUserID reads the numeric user id path segment, answering 400 itself
// when it is malformed.
func parseUserID(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return 0, false
	}
	return userID, true
}
