package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/gourmet/ai"
	"github.com/hrygo/gourmet/internal/metrics"
	"github.com/hrygo/gourmet/internal/profile"
	apiv1 "github.com/hrygo/gourmet/server/router/api/v1"
	"github.com/hrygo/gourmet/server/service/prune"
	"github.com/hrygo/gourmet/server/service/recommender"
	"github.com/hrygo/gourmet/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	pruner     *prune.Pruner
	pruneStop  context.CancelFunc
}

func NewServer(_ context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			)
			return nil
		},
	}))

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: e,
	}

	exporter := metrics.NewExporter(metrics.DefaultConfig())

	engineOpts := []recommender.Option{recommender.WithMetrics(exporter)}
	if profile.IsLLMEnabled() {
		engineOpts = append(engineOpts, recommender.WithNicknameGenerator(
			ai.NewNicknameGenerator(ai.NicknameGeneratorConfig{
				APIKey:  profile.LLMAPIKey,
				BaseURL: profile.LLMBaseURL,
				Model:   profile.LLMModel,
			}),
		))
		slog.Info("nickname generator enabled", "model", profile.LLMModel)
	} else {
		slog.Info("nickname generator disabled, flavours get placeholder names")
	}
	engine := recommender.New(store, profile, engineOpts...)

	apiV1Service := apiv1.NewAPIV1Service(profile.Secret, profile, store, engine)
	apiV1Service.Register(e)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})
	e.GET("/metrics", echo.WrapHandler(exporter.Handler()))

	s.pruner = prune.NewPruner(store, profile, prune.WithMetrics(exporter))

	return s, nil
}

func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "version", s.Profile.Version)

	pruneCtx, cancel := context.WithCancel(context.Background())
	s.pruneStop = cancel
	go s.pruner.Run(pruneCtx)

	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", "error", err)
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if s.pruneStop != nil {
		s.pruneStop()
	}

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}

	slog.Info("server stopped")
}
