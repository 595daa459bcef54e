package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bizhub/internal/httpapi/dto"
	"bizhub/internal/httpapi/service"

	"github.com/gin-gonic/gin"
)

type PreferenceHandler struct {
	svc service.PreferenceService
}

func NewPreferenceHandler(svc service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

func (h *PreferenceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/preferences", h.Get)
	rg.PUT("/preferences", h.Update)
}

// Get returns the user's notification preferences, defaults if never saved
func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	prefs, err := h.svc.Get(ctx, userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// Update persists the user's notification preferences
func (h *PreferenceHandler) Update(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.PreferencesDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Update(ctx, userID.(string), req); err != nil {
		if errors.Is(err, service.ErrUnknownSound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
