package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health check handler
func (s *Server) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	overall := "healthy"
	for _, hc := range s.healthCheckers {
		if hc == nil {
			continue
		}
		if err := hc.Check(ctx); err != nil {
			deps[hc.Name()] = "unhealthy"
			if overall == "healthy" {
				overall = "degraded"
			}
		} else {
			deps[hc.Name()] = "healthy"
		}
	}
	health := map[string]interface{}{
		"status":       overall,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"version":      "1.0.0",
		"service":      "captcha-recognizer",
		"dependencies": deps,
	}
	code := http.StatusOK
	if overall != "healthy" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, health)
}

// index describes the service and its endpoints.
func (s *Server) index(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"service": "captcha-recognizer",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /api/v1/recognize/upload": "recognize an uploaded image file",
			"POST /api/v1/recognize/url":    "recognize an image fetched from a URL",
			"POST /api/v1/recognize/base64": "recognize a base64-encoded image",
			"GET /api/v1/captcha/types":     "list supported captcha types",
			"GET /api/v1/cache/stats":       "result cache statistics",
			"DELETE /api/v1/cache":          "clear the result cache",
			"GET /health":                   "service health",
			"GET /metrics":                  "prometheus metrics",
		},
	})
}
