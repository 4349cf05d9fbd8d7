package inference

import (
	"context"
	"errors"
	"fmt"

	"vigil-worker-go/internal/imaging"
	"vigil-worker-go/internal/models"
)

// ErrUnavailable means a backend could not produce a result at all: model
// missing, sidecar unreachable, or timeout. It is distinct from an empty
// detection list, which is a valid successful result.
var ErrUnavailable = errors.New("inference backend unavailable")

// Unavailable wraps a cause into an ErrUnavailable chain.
func Unavailable(cause error) error {
	if cause == nil {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, cause)
}

// PersonDetector finds people in a single frame. Implementations return
// pixel-space boxes; normalization and filtering happen downstream.
type PersonDetector interface {
	Detect(ctx context.Context, frame *imaging.Frame) ([]models.RawBox, error)
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ActivityClassifier judges a fixed-length sampled clip as normal or
// suspicious.
type ActivityClassifier interface {
	Classify(ctx context.Context, clip []*imaging.Frame) (models.ClassificationResult, error)
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
