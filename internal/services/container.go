package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"vigil-worker-go/internal/config"
	"vigil-worker-go/internal/metrics"
	"vigil-worker-go/internal/models"
	"vigil-worker-go/internal/services/classification"
	"vigil-worker-go/internal/services/detection"
	"vigil-worker-go/internal/services/inference"
	"vigil-worker-go/internal/services/messaging"
	"vigil-worker-go/internal/services/pipeline"
	"vigil-worker-go/internal/services/recordings"
)

// ServiceContainer holds all services
type ServiceContainer struct {
	Config     *config.Config
	Messaging  *messaging.Service // nil when NATS is unreachable
	Pipeline   *pipeline.Service
	Recordings *recordings.Store
	Metrics    *metrics.Metrics
}

// NewServiceContainer creates a new service container. Messaging is optional:
// without NATS the worker still serves detection and classification, only
// alert publishing (and the nats inference backend) is lost.
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	m := metrics.New()

	messagingSvc, err := messaging.NewService(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("NATS unavailable, alerts will not be published")
		messagingSvc = nil
	}

	detector, classifier, err := buildInferenceBackend(cfg, messagingSvc)
	if err != nil {
		return nil, err
	}

	var publisher models.MessagePublisher
	if messagingSvc != nil {
		publisher = messagingSvc
	}
	pipelineSvc := pipeline.NewService(cfg, detector, classifier, publisher, m)

	store, err := recordings.NewStore(cfg.RecordingsDir, cfg.RecordingsDBPath, cfg.RecordingsBaseURL)
	if err != nil {
		return nil, err
	}

	return &ServiceContainer{
		Config:     cfg,
		Messaging:  messagingSvc,
		Pipeline:   pipelineSvc,
		Recordings: store,
		Metrics:    m,
	}, nil
}

func buildInferenceBackend(cfg *config.Config, messagingSvc *messaging.Service) (inference.PersonDetector, inference.ActivityClassifier, error) {
	switch cfg.InferenceBackend {
	case "onnx":
		detector := detection.NewONNXDetector(cfg.DetectorModelPath, cfg.DetectorNamesPath, cfg.DetectorInputSize, cfg.ConfidenceThreshold)
		classifier := classification.NewONNXClassifier(cfg.ClassifierModelPath, cfg.ClassifierNamesPath, cfg.ClassifierInputSize, cfg.ConfidenceThreshold)
		return detector, classifier, nil
	case "nats":
		if messagingSvc == nil {
			return nil, nil, fmt.Errorf("inference backend %q requires a NATS connection", cfg.InferenceBackend)
		}
		remote := inference.NewRemote(messagingSvc, cfg.DetectSubject, cfg.ClassifySubject, cfg.InferenceTimeout)
		return remote, remote, nil
	default:
		return nil, nil, fmt.Errorf("unknown inference backend %q", cfg.InferenceBackend)
	}
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	if sc.Pipeline != nil {
		if err := sc.Pipeline.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Pipeline shutdown failed")
		}
	}

	if sc.Recordings != nil {
		if err := sc.Recordings.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Recording store shutdown failed")
		}
	}

	if sc.Messaging != nil {
		return sc.Messaging.Shutdown(ctx)
	}

	return nil
}
