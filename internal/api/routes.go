package api

import "github.com/gin-gonic/gin"

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.WorkerInfo)
	s.router.GET("/health", s.healthHandler.HealthCheck)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := s.router.Group("/api")
	{
		session := api.Group("/session")
		{
			session.POST("/start", s.sessionHandler.Start)
			session.POST("/stop", s.sessionHandler.Stop)
			session.POST("/reset", s.sessionHandler.Reset)
		}
		api.GET("/state", s.sessionHandler.State)

		api.POST("/detect", s.ingestHandler.Detect)
		api.POST("/classify", s.ingestHandler.Classify)

		api.GET("/recordings", s.recordingsHandler.List)
		api.POST("/recordings/upload", s.recordingsHandler.Upload)
	}

	s.router.GET("/media/recordings/:filename", s.recordingsHandler.Download)
}
