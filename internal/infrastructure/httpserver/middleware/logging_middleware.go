package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type LoggingMiddleware struct {
	logger *logrus.Logger
}

func NewLoggingMiddleware(logger *logrus.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// RequestLogging emits one structured record per request, on every exit path
// including handler errors.
func (m *LoggingMiddleware) RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.logger == nil {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			fields := logrus.Fields{
				"method":      c.Request().Method,
				"path":        c.Path(),
				"status":      c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
			}
			if err != nil {
				m.logger.WithFields(fields).WithError(err).Warn("request failed")
			} else {
				m.logger.WithFields(fields).Debug("request completed")
			}
			return err
		}
	}
}
