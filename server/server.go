// Package server hosts the HTTP server wrapping the v1 API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/autosense/internal/profile"
	"github.com/hrygo/autosense/server/middleware"
	apiv1 "github.com/hrygo/autosense/server/router/api/v1"
	"github.com/hrygo/autosense/store"
)

// Server is the HTTP server hosting the diagnostic API.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	apiService *apiv1.APIV1Service
}

// NewServer creates a configured server, routes registered.
func NewServer(prof *profile.Profile, st *store.Store) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(middleware.NewRateLimiter(10, 20).Middleware())

	apiService := apiv1.NewAPIV1Service(prof, st)
	apiService.RegisterRoutes(e)

	return &Server{
		Profile:    prof,
		Store:      st,
		echoServer: e,
		apiService: apiService,
	}
}

// Start begins serving. It returns once the listener stops.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server listening", "address", address, "mode", s.Profile.Mode, "version", s.Profile.Version)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echoServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server stopped unexpectedly")
	}
	return nil
}
