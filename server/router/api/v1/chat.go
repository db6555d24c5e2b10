package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/autosense/server/internal/observability"
	"github.com/hrygo/autosense/server/service/dialog"
	"github.com/hrygo/autosense/server/service/session"
)

const msgSessionExpired = "セッションの有効期限が切れました。新しい問診を開始します。"

// chat processes one dialogue turn. A request without a session id opens
// a new session; a request for an expired or unknown session gets a
// terminal expiry response with the same id echoed back.
func (s *APIV1Service) chat(c echo.Context) error {
	req := new(dialog.Request)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request payload")
	}

	reqCtx := observability.NewRequestContext(slog.Default(), req.SessionID)
	ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)

	// Turns on the same session are serialized, and the lock must be
	// held before the read: two concurrent turns may otherwise both
	// observe the pre-state and the later Update drops the earlier
	// turn's mutations. Distinct sessions proceed in parallel.
	var sess *session.Session
	if req.SessionID != "" {
		unlock := s.Sessions.Lock(req.SessionID)
		defer unlock()
		sess = s.Sessions.Get(req.SessionID)
		if sess == nil {
			reqCtx.Info("session expired or unknown")
			return c.JSON(http.StatusOK, &dialog.Response{
				SessionID:   req.SessionID,
				CurrentStep: "expired",
				Prompt: dialog.Prompt{
					Type:    dialog.PromptText,
					Message: msgSessionExpired,
				},
			})
		}
	} else {
		sess = s.Sessions.Create()
		reqCtx.SessionID = sess.ID
		unlock := s.Sessions.Lock(sess.ID)
		defer unlock()
	}

	resp := s.Engine.Process(ctx, sess, req)
	s.Sessions.Update(sess)

	reqCtx.Info("chat turn processed",
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
		slog.String(observability.LogFieldStep, resp.CurrentStep),
	)
	return c.JSON(http.StatusOK, resp)
}

// deleteSession ends a session early.
func (s *APIV1Service) deleteSession(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session id required")
	}
	s.Sessions.Delete(id)
	return c.NoContent(http.StatusNoContent)
}
