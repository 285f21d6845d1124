package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/urocare/clinic/internal/admin"
	"github.com/urocare/clinic/internal/auth"
	"github.com/urocare/clinic/internal/http/middleware"
	"github.com/urocare/clinic/internal/notice"
)

type dashboardResp struct {
	Dashboard admin.View      `json:"dashboard"`
	Notices   []notice.Notice `json:"notices"`
}

type adminHandlers struct {
	reg       *admin.Registry
	gate      auth.Gate
	loginPath string
}

func (h *adminHandlers) unauthorized(c echo.Context, reason string) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"error":    reason,
		"redirect": h.loginPath,
	})
}

// enter runs the gate and answers with the loaded dashboard.
func (h *adminHandlers) enter(c echo.Context) error {
	tok, _ := middleware.AdminTokenFromCtx(c)
	d, res := h.reg.Enter(c.Request().Context(), tok)
	if d == nil {
		return h.unauthorized(c, denialReason(res))
	}
	return h.render(c, http.StatusOK, d)
}

// resolve returns the caller's dashboard, running the gate when it has none yet.
func (h *adminHandlers) resolve(c echo.Context) (*admin.Dashboard, string) {
	tok, _ := middleware.AdminTokenFromCtx(c)
	if d, ok := h.reg.Get(tok); ok {
		return d, ""
	}
	d, res := h.reg.Enter(c.Request().Context(), tok)
	if d == nil {
		return nil, denialReason(res)
	}
	return d, ""
}

func denialReason(res auth.AuthorizationResult) string {
	switch r := res.(type) {
	case auth.Denied:
		return string(r.Reason)
	case auth.CheckFailed:
		return "role_check_failed"
	default:
		return "unauthorized"
	}
}

func (h *adminHandlers) render(c echo.Context, status int, d *admin.Dashboard) error {
	return c.JSON(status, dashboardResp{Dashboard: d.View(), Notices: d.DrainNotices()})
}

func (h *adminHandlers) dashboard(c echo.Context) error {
	d, reason := h.resolve(c)
	if d == nil {
		return h.unauthorized(c, reason)
	}
	return h.render(c, http.StatusOK, d)
}

func (h *adminHandlers) refresh(c echo.Context) error {
	d, reason := h.resolve(c)
	if d == nil {
		return h.unauthorized(c, reason)
	}
	// fetch failures are reported through notices; the view keeps prior data
	_ = d.Refresh(c.Request().Context())
	return h.render(c, http.StatusOK, d)
}

// action wraps a per-record dashboard operation keyed by :id.
func (h *adminHandlers) action(op func(d *admin.Dashboard, ctx context.Context, id string) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if _, err := uuid.Parse(id); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
		}

		d, reason := h.resolve(c)
		if d == nil {
			return h.unauthorized(c, reason)
		}

		err := op(d, c.Request().Context(), id)
		switch {
		case err == nil:
			return h.render(c, http.StatusOK, d)
		case errors.Is(err, admin.ErrNotAuthorized):
			return h.unauthorized(c, "unauthorized")
		case errors.Is(err, admin.ErrRecordNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		case errors.Is(err, admin.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			return h.render(c, http.StatusBadGateway, d)
		}
	}
}

func (h *adminHandlers) logout(c echo.Context) error {
	tok, _ := middleware.AdminTokenFromCtx(c)
	ctx := c.Request().Context()
	if d, ok := h.reg.Get(tok); ok {
		d.Logout(ctx)
	} else if s, err := h.gate.Session(ctx, tok); err == nil {
		_ = h.gate.SignOut(ctx, s)
	}
	h.reg.Remove(tok)
	return c.JSON(http.StatusOK, map[string]string{"redirect": h.loginPath})
}
