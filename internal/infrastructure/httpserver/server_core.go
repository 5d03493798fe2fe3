package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/captchakit/captcha-recognizer/internal/core/ports"
	customMiddleware "github.com/captchakit/captcha-recognizer/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
	// DefaultType is used when a request omits captcha_type.
	DefaultType string
}

type ServerDeps struct {
	Recognizer     ports.RecognizerService
	HealthCheckers []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	recognizer     ports.RecognizerService
	healthCheckers []ports.HealthChecker
	middleware     *customMiddleware.MiddlewareCollection
	httpClient     *http.Client
	maxImageBytes  int64
	minImageBytes  int64
	urlFetchLimit  int64
}

type Limits struct {
	MaxImageBytes int64
	MinImageBytes int64
	URLFetchLimit int64
}

func NewServer(serverConfig *ServerConfig, limits Limits, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true

	if limits.MaxImageBytes <= 0 {
		limits.MaxImageBytes = 16 * 1024 * 1024
	}
	if limits.URLFetchLimit <= 0 {
		limits.URLFetchLimit = limits.MaxImageBytes
	}

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		recognizer:     deps.Recognizer,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		maxImageBytes: limits.MaxImageBytes,
		minImageBytes: limits.MinImageBytes,
		urlFetchLimit: limits.URLFetchLimit,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
