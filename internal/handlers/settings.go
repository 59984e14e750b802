package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smart_hub/internal/service"
)

// Request DTO for the preference write.
type settingsRequest struct {
	UserTemp      *float64 `json:"user_temp" binding:"required"`
	UserLight     string   `json:"user_light" binding:"required"`
	LightDuration string   `json:"light_duration"`
}

// SettingsRequest is an exported model for Swagger docs of the settings payload.
type SettingsRequest struct {
	// Target temperature in Celsius
	UserTemp float64 `json:"user_temp" example:"25"`
	// Light-on time as HH:MM:SS, or "sunset"
	UserLight string `json:"user_light" example:"sunset"`
	// How long the light stays on, e.g. 1h30m
	LightDuration string `json:"light_duration" example:"4h"`
}

// @Summary      Create or replace preferences
// @Description  user_light "sunset" is resolved to today's sunset at the hub location
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body   SettingsRequest  true  "Preference payload"
// @Success      200   {object}  models.Preference  "updated"
// @Success      201   {object}  models.Preference  "created"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /settings [put]
// @Security     BearerAuth
func (h *Handler) putSettings(c *gin.Context) {
	var req settingsRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	userID, _ := userIDFrom(c)
	pref, created, err := h.services.Settings.Upsert(c.Request.Context(), service.PreferenceInput{
		UserTemp:      *req.UserTemp,
		UserLight:     req.UserLight,
		LightDuration: req.LightDuration,
		UserID:        userID,
	})
	if err != nil {
		h.respondError(c, "settings_upsert_failed", err, "user_light", req.UserLight)
		return
	}
	h.metrics.SettingsWritten(created)

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	c.JSON(code, pref)
}

// @Summary      Get preferences
// @Tags         settings
// @Produce      json
// @Success      200  {object}  models.Preference
// @Failure      412  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /settings [get]
func (h *Handler) getSettings(c *gin.Context) {
	pref, err := h.services.Settings.Get(c.Request.Context())
	if err != nil {
		h.respondError(c, "settings_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, pref)
}
