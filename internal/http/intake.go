package http

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/urocare/clinic/internal/i18n"
	"github.com/urocare/clinic/internal/intake"
	"github.com/urocare/clinic/internal/model"
	"github.com/urocare/clinic/internal/notice"
)

type submitResp struct {
	Errors  intake.FieldErrors `json:"errors,omitempty"`
	Notices []notice.Notice    `json:"notices"`
	Lang    i18n.Lang          `json:"lang"`
	RTL     bool               `json:"rtl"`
}

// inflight refuses a second submission from a client while its first is running.
type inflight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newInflight() *inflight { return &inflight{keys: make(map[string]struct{})} }

func (g *inflight) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.keys[key]; busy {
		return false
	}
	g.keys[key] = struct{}{}
	return true
}

func (g *inflight) release(key string) {
	g.mu.Lock()
	delete(g.keys, key)
	g.mu.Unlock()
}

// requestLang prefers ?lang= and falls back to Accept-Language.
func requestLang(c echo.Context) i18n.Lang {
	if q := strings.TrimSpace(c.QueryParam("lang")); q != "" {
		return i18n.ParseLang(q)
	}
	return i18n.ParseLang(c.Request().Header.Get("Accept-Language"))
}

func submitHandler(table model.Table, store intake.Inserter, pub intake.EventPublisher, guard *inflight) echo.HandlerFunc {
	return func(c echo.Context) error {
		lang := requestLang(c)
		resp := submitResp{Lang: lang, RTL: lang.RTL(), Notices: []notice.Notice{}}

		var in intake.Fields
		if err := c.Bind(&in); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		key := c.RealIP()
		if !guard.acquire(key) {
			resp.Notices = append(resp.Notices, notice.Notice{
				Level:       notice.Error,
				Title:       i18n.T(lang, i18n.SubmitErrorTitle),
				Description: i18n.T(lang, i18n.SubmitBusy),
			})
			return c.JSON(http.StatusConflict, resp)
		}
		defer guard.release(key)

		var notes notice.Buffer
		opts := []intake.Option{intake.WithLanguage(lang)}
		if pub != nil {
			opts = append(opts, intake.WithPublisher(pub))
		}
		form := intake.NewForm(table, store, &notes, opts...)
		form.SetAll(in)

		err := form.Submit(c.Request().Context())
		resp.Notices = notes.Drain()

		var verr *intake.ValidationError
		switch {
		case err == nil:
			return c.JSON(http.StatusCreated, resp)
		case errors.As(err, &verr):
			resp.Errors = verr.Fields
			return c.JSON(http.StatusBadRequest, resp)
		case errors.Is(err, intake.ErrSubmitInFlight):
			return c.JSON(http.StatusConflict, resp)
		default:
			return c.JSON(http.StatusBadGateway, resp)
		}
	}
}
