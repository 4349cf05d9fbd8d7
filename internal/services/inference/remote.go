package inference

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"vigil-worker-go/internal/imaging"
	"vigil-worker-go/internal/models"
)

// Requester is the request-reply slice of the messaging service.
type Requester interface {
	Request(subject string, data []byte, timeout time.Duration) ([]byte, error)
	IsConnected() bool
}

// Remote sends inference requests to a sidecar model server over NATS
// request-reply with JSON payloads. It implements both PersonDetector and
// ActivityClassifier; a timeout or missing responder surfaces as
// ErrUnavailable, never as an empty result.
type Remote struct {
	requester       Requester
	detectSubject   string
	classifySubject string
	timeout         time.Duration
	jpegQuality     int
}

// NewRemote creates a remote inference backend.
func NewRemote(requester Requester, detectSubject, classifySubject string, timeout time.Duration) *Remote {
	if detectSubject == "" {
		detectSubject = "inference.detect"
	}
	if classifySubject == "" {
		classifySubject = "inference.classify"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	log.Info().
		Str("detect_subject", detectSubject).
		Str("classify_subject", classifySubject).
		Dur("timeout", timeout).
		Msg("Remote inference backend initialized")

	return &Remote{
		requester:       requester,
		detectSubject:   detectSubject,
		classifySubject: classifySubject,
		timeout:         timeout,
		jpegQuality:     90,
	}
}

type detectRequest struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Image  string `json:"image"` // base64 JPEG
}

type detectResponse struct {
	Boxes []models.RawBox `json:"boxes"`
	Error string          `json:"error,omitempty"`
}

type classifyRequest struct {
	Frames []string `json:"frames"` // base64 JPEG, sampled clip order
}

type classifyResponse struct {
	Result models.ClassificationResult `json:"result"`
	Error  string                      `json:"error,omitempty"`
}

// Detect forwards one frame to the detection subject.
func (r *Remote) Detect(ctx context.Context, frame *imaging.Frame) ([]models.RawBox, error) {
	encoded, err := r.encodeFrame(frame)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(detectRequest{
		Width:  frame.Width,
		Height: frame.Height,
		Image:  encoded,
	})
	if err != nil {
		return nil, err
	}

	data, err := r.request(ctx, r.detectSubject, payload)
	if err != nil {
		return nil, err
	}

	var resp detectResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, Unavailable(fmt.Errorf("malformed detect reply: %w", err))
	}
	if resp.Error != "" {
		return nil, Unavailable(fmt.Errorf("sidecar: %s", resp.Error))
	}
	return resp.Boxes, nil
}

// Classify forwards the sampled clip to the classification subject.
func (r *Remote) Classify(ctx context.Context, clip []*imaging.Frame) (models.ClassificationResult, error) {
	frames := make([]string, 0, len(clip))
	for _, frame := range clip {
		encoded, err := r.encodeFrame(frame)
		if err != nil {
			return models.ClassificationResult{}, err
		}
		frames = append(frames, encoded)
	}

	payload, err := json.Marshal(classifyRequest{Frames: frames})
	if err != nil {
		return models.ClassificationResult{}, err
	}

	data, err := r.request(ctx, r.classifySubject, payload)
	if err != nil {
		return models.ClassificationResult{}, err
	}

	var resp classifyResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.ClassificationResult{}, Unavailable(fmt.Errorf("malformed classify reply: %w", err))
	}
	if resp.Error != "" {
		return models.ClassificationResult{}, Unavailable(fmt.Errorf("sidecar: %s", resp.Error))
	}
	return resp.Result, nil
}

// HealthCheck reports connectivity to the messaging layer.
func (r *Remote) HealthCheck(ctx context.Context) error {
	if !r.requester.IsConnected() {
		return Unavailable(fmt.Errorf("messaging disconnected"))
	}
	return nil
}

// Shutdown is a no-op; the messaging service owns the connection.
func (r *Remote) Shutdown(ctx context.Context) error {
	return nil
}

func (r *Remote) request(ctx context.Context, subject string, payload []byte) ([]byte, error) {
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, Unavailable(ctx.Err())
	}

	data, err := r.requester.Request(subject, payload, timeout)
	if err != nil {
		return nil, Unavailable(err)
	}
	return data, nil
}

func (r *Remote) encodeFrame(frame *imaging.Frame) (string, error) {
	raw, err := frame.EncodeJPEG(r.jpegQuality)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
