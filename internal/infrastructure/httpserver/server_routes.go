package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/", s.index)
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	recognize := api.Group("/recognize")
	recognize.POST("/upload", s.recognizeUpload)
	recognize.POST("/url", s.recognizeURL)
	recognize.POST("/base64", s.recognizeBase64)

	api.GET("/captcha/types", s.listCaptchaTypes)

	api.GET("/cache/stats", s.cacheStats)
	api.DELETE("/cache", s.clearCache)
}
