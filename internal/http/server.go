package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/urocare/clinic/internal/admin"
	"github.com/urocare/clinic/internal/auth"
	"github.com/urocare/clinic/internal/config"
	"github.com/urocare/clinic/internal/db"
	"github.com/urocare/clinic/internal/http/middleware"
	"github.com/urocare/clinic/internal/intake"
	"github.com/urocare/clinic/internal/logger"
	"github.com/urocare/clinic/internal/metrics"
	"github.com/urocare/clinic/internal/model"
	"github.com/urocare/clinic/internal/recordstore"
	"github.com/urocare/clinic/internal/util"
	"go.uber.org/zap"
)

// Deps are the collaborators the server wires into its handlers.
type Deps struct {
	Store     recordstore.Store
	Gate      auth.Gate
	Publisher intake.EventPublisher // optional
	Redis     *redis.Client         // optional, enables rate limiting
	Checks    []db.Check
	Registry  *prometheus.Registry // nil => default registry
}

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, deps Deps) *Server {
	// echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(gommonLevel(cfg.Log.Level))
	e.Use(
		echoMid.Recover(),
		echoMid.RequestIDWithConfig(echoMid.RequestIDConfig{Generator: util.New}),
		middleware.RequestLogger(),
	)

	// metrics
	var reg prometheus.Registerer = prometheus.DefaultRegisterer
	var gather prometheus.Gatherer = prometheus.DefaultGatherer
	if deps.Registry != nil {
		reg, gather = deps.Registry, deps.Registry
	}
	metrics.MustRegister(reg)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gather, promhttp.HandlerOpts{})))

	// health
	e.GET("/healthz", healthHandler(deps.Checks))

	// middlewares
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          deps.Redis,
		RPS:            cfg.RateLimit.RPS,
		KeyPrefix:      "rl:intake:",
		Window:         time.Second,
		RetryAfterHint: true,
	})
	authMW := middleware.AdminTokenMiddleware(cfg.Auth.LoginPath)

	// public intake
	bookings, _ := model.ParseTable(cfg.Intake.BookingsTable)
	if bookings == "" {
		bookings = model.TableBookings
	}
	messages, _ := model.ParseTable(cfg.Intake.MessagesTable)
	if messages == "" {
		messages = model.TableMessages
	}
	guard := newInflight()
	pub := e.Group("/v1", rlMW)
	pub.POST("/bookings", submitHandler(bookings, deps.Store, deps.Publisher, guard))
	pub.POST("/messages", submitHandler(messages, deps.Store, deps.Publisher, guard))

	// admin
	h := &adminHandlers{
		reg: admin.NewRegistry(func() *admin.Dashboard {
			return admin.New(deps.Store, deps.Gate, cfg.Auth.AdminRole)
		}),
		gate:      deps.Gate,
		loginPath: cfg.Auth.LoginPath,
	}
	adm := e.Group("/v1/admin", authMW)
	adm.POST("/session", h.enter)
	adm.GET("/dashboard", h.dashboard)
	adm.POST("/refresh", h.refresh)
	adm.POST("/bookings/:id/confirm", h.action((*admin.Dashboard).ConfirmBooking))
	adm.POST("/bookings/:id/complete", h.action((*admin.Dashboard).CompleteBooking))
	adm.POST("/bookings/:id/cancel", h.action((*admin.Dashboard).CancelBooking))
	adm.DELETE("/bookings/:id", h.action((*admin.Dashboard).DeleteBooking))
	adm.POST("/messages/:id/read", h.action((*admin.Dashboard).MarkMessageRead))
	adm.DELETE("/messages/:id", h.action((*admin.Dashboard).DeleteMessage))
	adm.POST("/logout", h.logout)

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	logger.Log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

// ServeHTTP lets the server be driven directly, as in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.e.ServeHTTP(w, r) }

func gommonLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}
