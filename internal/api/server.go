package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"vigil-worker-go/internal/api/handlers"
	"vigil-worker-go/internal/config"
	"vigil-worker-go/internal/metrics"
	"vigil-worker-go/internal/services/pipeline"
	"vigil-worker-go/internal/services/recordings"
)

type Server struct {
	config  *config.Config
	router  *gin.Engine
	server  *http.Server
	metrics *metrics.Metrics

	healthHandler     *handlers.HealthHandler
	sessionHandler    *handlers.SessionHandler
	ingestHandler     *handlers.IngestHandler
	recordingsHandler *handlers.RecordingsHandler
}

func NewServer(cfg *config.Config, p *pipeline.Service, store *recordings.Store, m *metrics.Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	return &Server{
		config:            cfg,
		router:            router,
		metrics:           m,
		healthHandler:     handlers.NewHealthHandler(cfg.WorkerID, cfg.Version, p),
		sessionHandler:    handlers.NewSessionHandler(p),
		ingestHandler:     handlers.NewIngestHandler(p),
		recordingsHandler: handlers.NewRecordingsHandler(store, p),
	}
}

func (s *Server) Setup() error {
	s.setupMiddleware()

	s.setupRoutes()

	s.setupSwagger()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
	}

	return nil
}

func (s *Server) Start() error {
	log.Info().Int("port", s.config.Port).Msg("🚀 Starting Vigil Worker API")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("🛑 Stopping Vigil Worker API")
	return s.server.Shutdown(ctx)
}
