package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"vigil-worker-go/internal/alerting"
	"vigil-worker-go/internal/clip"
	"vigil-worker-go/internal/config"
	"vigil-worker-go/internal/imaging"
	"vigil-worker-go/internal/logging"
	"vigil-worker-go/internal/metrics"
	"vigil-worker-go/internal/models"
	"vigil-worker-go/internal/services/detection"
	"vigil-worker-go/internal/services/inference"
	"vigil-worker-go/internal/session"
)

// Service orchestrates the surveillance pipeline: frame decode, person
// detection, box normalization, clip classification, alert fusion and session
// state. Inference always runs outside the state lock, so a slow or dead
// model server can delay a response but never wedge state reads.
type Service struct {
	cfg *config.Config

	detector   inference.PersonDetector
	classifier inference.ActivityClassifier
	normalizer *detection.Normalizer
	policy     *alerting.Policy
	state      *session.State
	publisher  models.MessagePublisher // optional
	metrics    *metrics.Metrics
	log        zerolog.Logger

	// Detection IDs are unique within a process run. Seeding with the boot
	// timestamp keeps them increasing across restarts too.
	nextDetectionID atomic.Int64

	// Last observed session window, used as the fallback interval for
	// recordings uploaded without explicit timestamps.
	windowMu    sync.Mutex
	lastStarted *time.Time
	lastEnded   *time.Time
}

// NewService wires the pipeline together. publisher may be nil when messaging
// is unavailable; alerts are then only kept in session state.
func NewService(cfg *config.Config, detector inference.PersonDetector, classifier inference.ActivityClassifier, publisher models.MessagePublisher, m *metrics.Metrics) *Service {
	s := &Service{
		cfg:        cfg,
		detector:   detector,
		classifier: classifier,
		normalizer: detection.NewNormalizer(detection.NormalizerConfig{
			AcceptedLabels:      cfg.AcceptedLabels,
			SuspiciousLabels:    cfg.SuspiciousLabels,
			ConfidenceThreshold: cfg.ConfidenceThreshold,
			MinBoxSizePct:       cfg.MinBoxSizePct,
		}),
		policy:    alerting.NewPolicy(cfg.AlertMinConfidence, cfg.ClassifierPrecedence),
		state:     session.NewState(cfg.DetectionRingSize, cfg.AlertRingSize),
		publisher: publisher,
		metrics:   m,
		log:       logging.NewServiceLogger(cfg, "pipeline"),
	}
	s.nextDetectionID.Store(time.Now().UnixMilli())

	s.log.Info().
		Str("backend", cfg.InferenceBackend).
		Int("clip_length", cfg.ClipLength).
		Bool("classifier_precedence", cfg.ClassifierPrecedence).
		Msg("Surveillance pipeline initialized")

	return s
}

// DetectFrame decodes one client frame, runs person detection, records the
// accepted detections and evaluates the alert policy. A decode failure or
// unavailable detector returns an error and leaves session state untouched.
func (s *Service) DetectFrame(ctx context.Context, encoded string) ([]models.Detection, error) {
	frame, err := imaging.DecodeDataURL(encoded)
	if err != nil {
		s.metrics.DecodeFailures.Inc()
		return nil, err
	}
	s.metrics.FramesDecoded.Inc()

	ictx, cancel := s.inferenceContext(ctx)
	defer cancel()

	boxes, err := s.detector.Detect(ictx, frame)
	if err != nil {
		s.metrics.InferenceFailures.WithLabelValues("detect").Inc()
		if !errors.Is(err, inference.ErrUnavailable) {
			err = inference.Unavailable(err)
		}
		return nil, err
	}

	detections := s.normalizer.NormalizeAll(boxes, frame.Width, frame.Height)
	for i := range detections {
		detections[i].ID = s.nextDetectionID.Add(1)
	}

	if err := s.state.RecordDetections(detections); err != nil {
		s.log.Error().Err(err).Msg("Session state rejected detections")
		return nil, err
	}
	s.metrics.Detections.Add(float64(len(detections)))

	if alert, ok := s.policy.Evaluate(nil, detections); ok {
		s.recordAlert(alert, detections)
	}

	return detections, nil
}

// ClassifyClip decodes the uploaded frames, samples them down to the
// configured clip length and runs activity classification. numFrames <= 0
// selects the configured default.
func (s *Service) ClassifyClip(ctx context.Context, encodedFrames []string, numFrames int) (models.ClassificationResult, error) {
	if len(encodedFrames) == 0 {
		return models.ClassificationResult{}, clip.ErrEmptyClip
	}

	frames := make([]*imaging.Frame, 0, len(encodedFrames))
	for _, encoded := range encodedFrames {
		frame, err := imaging.DecodeDataURL(encoded)
		if err != nil {
			s.metrics.DecodeFailures.Inc()
			return models.ClassificationResult{}, err
		}
		frames = append(frames, frame)
	}
	s.metrics.FramesDecoded.Add(float64(len(frames)))

	if numFrames <= 0 {
		numFrames = s.cfg.ClipLength
	}
	sampled, err := clip.Sample(frames, numFrames)
	if err != nil {
		return models.ClassificationResult{}, err
	}

	ictx, cancel := s.inferenceContext(ctx)
	defer cancel()

	result, err := s.classifier.Classify(ictx, sampled)
	if err != nil {
		s.metrics.InferenceFailures.WithLabelValues("classify").Inc()
		if !errors.Is(err, inference.ErrUnavailable) {
			err = inference.Unavailable(err)
		}
		return models.ClassificationResult{}, err
	}
	s.metrics.Classifications.WithLabelValues(string(result.Prediction)).Inc()

	if alert, ok := s.policy.Evaluate(&result, nil); ok {
		s.recordAlert(alert, nil)
	}

	return result, nil
}

// StartSession starts the surveillance session. Idempotent.
func (s *Service) StartSession() models.StateSnapshot {
	startedAt, started := s.state.Start()
	if started {
		s.metrics.SessionRunning.Set(1)
		s.windowMu.Lock()
		at := startedAt
		s.lastStarted = &at
		s.lastEnded = nil
		s.windowMu.Unlock()
		s.log.Info().Time("started_at", startedAt).Msg("Surveillance session started")
	}
	return s.Snapshot()
}

// StopSession stops the session, keeping history. Idempotent.
func (s *Service) StopSession() models.StateSnapshot {
	_, endedAt, stopped := s.state.Stop()
	if stopped {
		s.metrics.SessionRunning.Set(0)
		s.windowMu.Lock()
		at := endedAt
		s.lastEnded = &at
		s.windowMu.Unlock()
		s.log.Info().Time("ended_at", endedAt).Msg("Surveillance session stopped")
	}
	return s.Snapshot()
}

// ResetSession stops the session and clears all history and counters.
func (s *Service) ResetSession() models.StateSnapshot {
	s.state.Reset()
	s.metrics.SessionRunning.Set(0)
	s.windowMu.Lock()
	s.lastStarted = nil
	s.lastEnded = nil
	s.windowMu.Unlock()
	s.log.Info().Msg("Surveillance session reset")
	return s.Snapshot()
}

// Snapshot returns an immutable view of the session for polling clients.
func (s *Service) Snapshot() models.StateSnapshot {
	return s.state.Snapshot()
}

// SessionWindow returns the last observed start/stop transition times, the
// fallback interval for recording uploads without explicit timestamps. Either
// may be nil.
func (s *Service) SessionWindow() (startedAt, endedAt *time.Time) {
	s.windowMu.Lock()
	defer s.windowMu.Unlock()
	return s.lastStarted, s.lastEnded
}

// HealthCheck reports inference backend reachability.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.detector.HealthCheck(ctx); err != nil {
		return err
	}
	return s.classifier.HealthCheck(ctx)
}

// Shutdown releases the inference backends.
func (s *Service) Shutdown(ctx context.Context) error {
	if err := s.detector.Shutdown(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Detector shutdown failed")
	}
	return s.classifier.Shutdown(ctx)
}

func (s *Service) recordAlert(alert models.Alert, detections []models.Detection) {
	if err := s.state.RecordAlert(alert); err != nil {
		s.log.Error().Err(err).Msg("Session state rejected alert")
		return
	}
	s.metrics.Alerts.Inc()

	s.log.Warn().
		Float64("confidence", alert.Confidence).
		Float64("raw_confidence", alert.RawConfidence).
		Msg("🚨 Suspicious activity alert recorded")

	if s.publisher == nil {
		return
	}
	payload := models.AlertPayload{
		WorkerID:       s.cfg.WorkerID,
		Alert:          alert,
		ActivityStatus: s.state.CurrentActivity(),
		Detections:     detections,
		Timestamp:      alert.Timestamp,
	}
	if err := s.publisher.Publish(s.cfg.AlertsSubject, payload); err != nil {
		// Publishing is best effort; the alert is already in state
		s.log.Warn().Err(err).Str("subject", s.cfg.AlertsSubject).Msg("Failed to publish alert")
	}
}

func (s *Service) inferenceContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.InferenceTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.InferenceTimeout)
	}
	return context.WithCancel(ctx)
}
