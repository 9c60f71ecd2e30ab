// Package server assembles the HTTP server: echo instance, middlewares,
// route registration, and graceful shutdown.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/chatassist/chatassist/internal/profile"
	"github.com/chatassist/chatassist/internal/version"
	"github.com/chatassist/chatassist/server/internal/apierrors"
	"github.com/chatassist/chatassist/server/middleware"
	apiv1 "github.com/chatassist/chatassist/server/router/api/v1"
	"github.com/chatassist/chatassist/store"
)

type Server struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
}

func NewServer(_ context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Secret:  profile.Secret,
		Profile: profile,
		Store:   store,
	}

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.HTTPErrorHandler = errorHandler

	// Completion calls can run long; the write timeout has to outlast them.
	echoServer.Server.ReadTimeout = 15 * time.Second
	echoServer.Server.WriteTimeout = 120 * time.Second
	echoServer.Server.IdleTimeout = 120 * time.Second

	echoServer.Use(echomw.Recover())
	echoServer.Use(middleware.RequestLogger())
	corsConfig := echomw.DefaultCORSConfig
	if len(profile.Origins) > 0 {
		corsConfig.AllowOrigins = profile.Origins
	}
	echoServer.Use(echomw.CORSWithConfig(corsConfig))

	echoServer.GET("/health", s.healthCheck)

	apiV1Service := apiv1.NewAPIV1Service(s.Secret, profile, store)
	apiV1Service.RegisterRoutes(echoServer)

	s.echoServer = echoServer
	return s, nil
}

func (s *Server) Start(_ context.Context) error {
	address := s.Profile.ListenAddr()
	slog.Info("server started", "address", address, "version", version.GetCurrentVersion(s.Profile.Mode))
	if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start server")
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shutdown")
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.GetCurrentVersion(s.Profile.Mode),
	})
}

// errorHandler renders every error as {"code", "message"}. Internal causes
// are logged server-side and never serialized to the client.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.HTTPStatus()
		message := apiErr.Message
		if status >= http.StatusInternalServerError {
			slog.Error("request failed", "method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
			message = "internal server error"
		}
		writeErrorResponse(c, status, apiErr.Code, message)
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
		writeErrorResponse(c, httpErr.Code, apierrors.CodeFromHTTPStatus(httpErr.Code), message)
		return
	}

	slog.Error("request failed", "method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
	writeErrorResponse(c, http.StatusInternalServerError, apierrors.CodeInternal, "internal server error")
}

func writeErrorResponse(c echo.Context, status int, code apierrors.Code, message string) {
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, map[string]string{
		"code":    string(code),
		"message": message,
	})
}
