// Package api provides HTTP handlers for the reflection service.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teaminsight/reflection/auth"
	"github.com/teaminsight/reflection/service"
)

const teamIDContextKey = "team_id"

// Handler handles HTTP requests.
type Handler struct {
	svc    *service.Service
	secret string
}

// NewHandler creates a new handler. The secret verifies team session
// tokens; authentication itself happens upstream at login.
func NewHandler(svc *service.Service, teamSessionSecret string) *Handler {
	return &Handler{svc: svc, secret: teamSessionSecret}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	team := e.Group("/v1/team/reflection", h.requireTeam)
	team.POST("/start", h.StartReflection)
	team.POST("/turn", h.TurnReflection)
	team.POST("/confirm", h.ConfirmReflection)
	team.POST("/reset", h.ResetReflection)

	e.GET("/v1/lecturer/reflection/settings", h.GetReflectionSettings)
	e.PUT("/v1/lecturer/reflection/settings", h.UpdateReflectionSettings)
	e.GET("/v1/lecturer/reflection/profiles", h.ListReflectionProfiles)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// requireTeam extracts and verifies the team identity. No session lookup
// happens for unauthenticated requests.
func (h *Handler) requireTeam(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := ""
		if cookie, err := c.Cookie("team_session"); err == nil {
			token = cookie.Value
		}
		if token == "" {
			header := c.Request().Header.Get("Authorization")
			if len(header) > 7 && header[:7] == "Bearer " {
				token = header[7:]
			}
		}

		teamID, err := auth.Verify(h.secret, token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error":  "Unauthorized",
				"reason": "missing_or_invalid_team_session",
			})
		}

		c.Set(teamIDContextKey, teamID)
		return next(c)
	}
}

func teamID(c echo.Context) string {
	id, _ := c.Get(teamIDContextKey).(string)
	return id
}
