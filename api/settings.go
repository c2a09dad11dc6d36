package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teaminsight/reflection/service"
)

// GetReflectionSettings returns the global reflection settings.
// GET /v1/lecturer/reflection/settings
func (h *Handler) GetReflectionSettings(c echo.Context) error {
	ctx := c.Request().Context()

	settings, err := h.svc.GetSettings(ctx)
	if err != nil {
		log.Printf("ERROR: failed to get settings: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":                 true,
		"selectedProfileKey": settings.SelectedProfileKey,
		"weeklyInstructions": settings.WeeklyInstructions,
	})
}

type settingsRequest struct {
	SelectedProfileKey string `json:"selectedProfileKey"`
	WeeklyInstructions string `json:"weeklyInstructions"`
}

// UpdateReflectionSettings changes the selected profile and weekly
// instructions for new sessions.
// PUT /v1/lecturer/reflection/settings
func (h *Handler) UpdateReflectionSettings(c echo.Context) error {
	ctx := c.Request().Context()

	var req settingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := h.svc.UpdateSettings(ctx, req.SelectedProfileKey, req.WeeklyInstructions); err != nil {
		if errors.Is(err, service.ErrUnknownProfile) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error":  "Invalid profile key",
				"reason": "invalid_profile_key",
			})
		}
		log.Printf("ERROR: failed to update settings: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update settings"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"ok": true})
}

// ListReflectionProfiles lists all reflection profiles.
// GET /v1/lecturer/reflection/profiles
func (h *Handler) ListReflectionProfiles(c echo.Context) error {
	ctx := c.Request().Context()

	profiles, err := h.svc.ListProfiles(ctx)
	if err != nil {
		log.Printf("ERROR: failed to list profiles: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list profiles"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":       true,
		"profiles": profiles,
	})
}
