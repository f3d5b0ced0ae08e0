package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
)

const mockShutdownTimeout = 5 * time.Second

// mockCmd runs a local target server for demos and manual testing.
var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a mock target server",
	Long: `Run a local HTTP server that fetchq batches can target.

Routes:
  GET  /ok            - 200 with a small body
  ANY  /status/:code  - responds with the given status code
  GET  /slow?delay=2s - sleeps for the given duration, then 200
  ANY  /echo          - echoes the request body and method back
  GET  /metrics       - prometheus metrics for the mock itself

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  fetchq mock --port 9095`,
	RunE: runMock,
}

func init() {
	rootCmd.AddCommand(mockCmd)

	mockCmd.Flags().Int("port", 9095, "port to listen on")
}

func runMock(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetInt("port")
	logger := newLogger(false)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(echoprometheus.NewMiddleware("fetchq_mock"))
	e.GET("/metrics", echoprometheus.NewHandler())

	e.GET("/ok", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok from fetchq mock\n")
	})

	e.Any("/status/:code", func(c echo.Context) error {
		code, err := strconv.Atoi(c.Param("code"))
		if err != nil || code < 100 || code > 599 {
			return c.String(http.StatusBadRequest, "bad status code\n")
		}
		return c.String(code, http.StatusText(code)+"\n")
	})

	e.GET("/slow", func(c echo.Context) error {
		delay := 2 * time.Second
		if raw := c.QueryParam("delay"); raw != "" {
			parsed, err := time.ParseDuration(raw)
			if err != nil {
				return c.String(http.StatusBadRequest, "bad delay\n")
			}
			delay = parsed
		}

		select {
		case <-time.After(delay):
			return c.String(http.StatusOK, "finally\n")
		case <-c.Request().Context().Done():
			return nil // client gave up
		}
	})

	e.Any("/echo", func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return c.String(http.StatusBadRequest, "unreadable body\n")
		}
		c.Response().Header().Set("X-Echo-Method", c.Request().Method)
		return c.Blob(http.StatusOK, c.Request().Header.Get("Content-Type"), body)
	})

	// run until interrupted, then shut down gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(fmt.Sprintf(":%d", port))
	}()

	logger.Info("mock server started", "port", port)

	select {
	case err := <-errCh:
		return fmt.Errorf("mock server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), mockShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mock server shutdown failed: %w", err)
	}

	logger.Info("mock server stopped")
	return nil
}
