package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teaminsight/reflection/service"
)

// StartReflection starts or resumes the team's reflection session.
// POST /v1/team/reflection/start
func (h *Handler) StartReflection(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.svc.Start(ctx, teamID(c))
	if err != nil {
		return h.reflectionError(c, "start", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":        true,
		"sessionId": result.SessionID,
		"status":    result.Status,
		"messages":  result.Messages,
	})
}

type turnRequest struct {
	Text string `json:"text"`
}

// TurnReflection processes one user message.
// POST /v1/team/reflection/turn
func (h *Handler) TurnReflection(c echo.Context) error {
	ctx := c.Request().Context()

	var req turnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := h.svc.Turn(ctx, teamID(c), req.Text)
	if err != nil {
		return h.reflectionError(c, "turn", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":            true,
		"assistantText": result.AssistantText,
		"readyToSubmit": result.ReadyToSubmit,
		"status":        result.Status,
	})
}

// ConfirmReflection submits a ready reflection.
// POST /v1/team/reflection/confirm
func (h *Handler) ConfirmReflection(c echo.Context) error {
	ctx := c.Request().Context()

	submissionID, err := h.svc.Confirm(ctx, teamID(c))
	if err != nil {
		return h.reflectionError(c, "confirm", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":           true,
		"submissionId": submissionID,
	})
}

// ResetReflection deletes any active session for the team.
// POST /v1/team/reflection/reset
func (h *Handler) ResetReflection(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.svc.Reset(ctx, teamID(c)); err != nil {
		return h.reflectionError(c, "reset", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"ok": true})
}

// reflectionError maps orchestrator errors to HTTP responses with
// machine-readable reasons; conflict responses distinguish "no active
// session" from "session already awaiting confirmation".
func (h *Handler) reflectionError(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, service.ErrNoActiveSession):
		return c.JSON(http.StatusConflict, map[string]string{
			"error":  "No active reflection session. Call /start first.",
			"reason": "no_active_session",
		})
	case errors.Is(err, service.ErrAwaitingConfirm):
		return c.JSON(http.StatusConflict, map[string]string{
			"error":  "Reflection is ready to submit. Use /confirm to submit or /reset to start over.",
			"reason": "awaiting_confirm",
		})
	case errors.Is(err, service.ErrNothingToConfirm):
		return c.JSON(http.StatusConflict, map[string]string{
			"error":  "Nothing to confirm",
			"reason": "nothing_to_confirm",
		})
	case errors.Is(err, service.ErrEmptyText):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error":  "Missing text",
			"reason": "missing_text",
		})
	default:
		log.Printf("ERROR: reflection/%s failed: %v", op, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Internal Server Error",
		})
	}
}
