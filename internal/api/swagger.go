package api

import (
	"net/http"

	_ "vigil-worker-go/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) setupSwagger() {
	s.router.GET("/api/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"title":       "Vigil Worker API",
			"version":     s.config.Version,
			"description": "Surveillance worker API for frame detection, clip classification, session state and recordings",
			"swagger_ui":  "/docs/index.html",
			"endpoints": gin.H{
				"health":     "/health",
				"state":      "/api/state",
				"session":    "/api/session",
				"detect":     "/api/detect",
				"classify":   "/api/classify",
				"recordings": "/api/recordings",
				"metrics":    "/metrics",
			},
			"worker_id": s.config.WorkerID,
			"port":      s.config.Port,
		})
	})

	s.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
}
