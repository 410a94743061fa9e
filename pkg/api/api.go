// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/telekom/form-relay/pkg/apiresponses"
	"github.com/telekom/form-relay/pkg/config"
	"github.com/telekom/form-relay/pkg/metrics"
	"github.com/telekom/form-relay/pkg/system"
)

const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	idleTimeout       = 120 * time.Second
)

type APIController interface {
	BasePath() string
	Register(rg *gin.RouterGroup) error
	Handlers() []gin.HandlerFunc
}

type Server struct {
	gin    *gin.Engine
	config config.Config
	log    *zap.SugaredLogger
}

func NewServer(log *zap.Logger, cfg config.Config) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	sugar := log.Sugar().Named("api")

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if err := engine.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		sugar.Warnw("Invalid trusted proxies, trusting none", "trustedProxies", cfg.Server.TrustedProxies, "error", err)
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(
		system.RequestID(sugar),
		ginzap.GinzapWithConfig(log, &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        true,
			Context: func(c *gin.Context) []zapcore.Field {
				return []zapcore.Field{zap.String("request_id", system.GetRequestID(c))}
			},
		}),
		ginzap.CustomRecoveryWithZap(log, true, recoverInternalError(sugar)),
	)

	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		if mw, err := newCORS(cfg.Server.CORSAllowedOrigins); err != nil {
			sugar.Warnw("Invalid CORS configuration, CORS disabled", "origins", cfg.Server.CORSAllowedOrigins, "error", err)
		} else {
			engine.Use(mw)
		}
	}

	engine.NoRoute(func(c *gin.Context) {
		apiresponses.RespondNotFoundSimple(c, "not found")
	})
	engine.NoMethod(apiresponses.RespondMethodNotAllowed)

	return &Server{
		gin:    engine,
		config: cfg,
		log:    sugar,
	}
}

func newCORS(origins []string) (gin.HandlerFunc, error) {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", system.RequestIDHeader},
		ExposeHeaders: []string{system.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	if err := cc.Validate(); err != nil {
		return nil, err
	}
	return cors.New(cc), nil
}

// recoverInternalError turns a panic in any handler into the generic 500
// response. ginzap has already logged the panic with its stack.
func recoverInternalError(log *zap.SugaredLogger) gin.RecoveryFunc {
	return func(c *gin.Context, err any) {
		system.GetReqLogger(c, log).Errorw("Error while processing request", "error", err, "path", c.Request.URL.Path)
		if c.FullPath() == submitPath {
			metrics.Submissions.WithLabelValues(metrics.OutcomeInternalError).Inc()
		}
		apiresponses.RespondInternalErrorSimple(c, msgInternalError)
		c.Abort()
	}
}

func (s *Server) RegisterAll(controllers []APIController) error {
	for _, c := range controllers {
		if err := c.Register(s.gin.Group(c.BasePath(), c.Handlers()...)); err != nil {
			return err
		}
	}
	return nil
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Listen binds the configured address and serves until ctx is cancelled.
func (s *Server) Listen(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully within
// the configured shutdown timeout. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.gin,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
	}

	useTLS := s.config.Server.TLSCertFile != "" && s.config.Server.TLSKeyFile != ""
	errCh := make(chan error, 1)
	go func() {
		var err error
		if useTLS {
			err = srv.ServeTLS(ln, s.config.Server.TLSCertFile, s.config.Server.TLSKeyFile)
		} else {
			err = srv.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()
	s.log.Infow("HTTP server listening", "address", ln.Addr().String(), "tls", useTLS)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
