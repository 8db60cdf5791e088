package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/parceltrack/internal/server/http/dto"
)

// SettingsHandler exposes global settings.
type SettingsHandler struct {
	facade SettingsFacade
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(facade SettingsFacade) *SettingsHandler {
	return &SettingsHandler{facade: facade}
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.facade.Settings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSettingsResponse(settings))
}

// Update handles PUT /api/admin/settings.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.SettingsPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	settings, err := h.facade.UpdateSettings(c.Request.Context(), req.ToPatch())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSettingsResponse(settings))
}

// GlobalBonus handles GET /api/settings/global-bonus.
func (h *SettingsHandler) GlobalBonus(c *gin.Context) {
	pct, err := h.facade.GlobalBonus(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GlobalBonusResponse{Percentage: pct})
}

// SetGlobalBonus handles PUT /api/admin/settings/global-bonus.
func (h *SettingsHandler) SetGlobalBonus(c *gin.Context) {
	var req dto.GlobalBonusRequest
	if !bindJSON(c, &req) {
		return
	}
	pct, err := h.facade.SetGlobalBonus(c.Request.Context(), *req.Percentage)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GlobalBonusResponse{Percentage: pct})
}
