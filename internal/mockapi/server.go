// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mockapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Server is the mock API.
type Server struct {
	echo *echo.Echo
	log  zerolog.Logger
	// now and reading are swapped out in tests.
	now     func() time.Time
	reading func() float64
}

// New creates a mock API server which logs each request to log.
func New(log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		log:     log,
		now:     time.Now,
		reading: randomReading,
	}
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Error().
				Err(err).
				Bytes("stack", stack).
				Msg("panic recovered")
			return err
		},
	}))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(requestLogger(log))

	e.GET("/api/results", s.results)
	e.POST("/api/set", s.set)
	e.POST("/results/timeseries/search", s.search)

	return s
}

// Handler returns the server as an http.Handler, for use with
// httptest or a custom http.Server.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("address", addr).Msg("mock API listening")
		errc <- s.echo.Start(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// errorHandler renders every routing failure, including a known path
// with the wrong method, as a JSON 404.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	status := http.StatusInternalServerError
	if errors.As(err, &he) {
		status = he.Code
	}

	var body map[string]string
	switch status {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		status = http.StatusNotFound
		body = map[string]string{
			"error":  "not_found",
			"method": c.Request().Method,
			"path":   c.Request().URL.Path,
		}
	case http.StatusRequestEntityTooLarge:
		body = map[string]string{"error": "too_large"}
	default:
		s.log.Error().Err(err).Msg("unhandled error")
		body = map[string]string{"error": "internal"}
	}

	if err := c.JSON(status, body); err != nil {
		s.log.Error().Err(err).Msg("failed to write error response")
	}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error()
			} else if v.Status >= http.StatusBadRequest {
				ev = log.Warn()
			}
			if v.Error != nil {
				ev = ev.Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
