package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"reflect"
	"testing"
	"time"

	"vigil-worker-go/internal/clip"
	"vigil-worker-go/internal/config"
	"vigil-worker-go/internal/imaging"
	"vigil-worker-go/internal/metrics"
	"vigil-worker-go/internal/models"
	"vigil-worker-go/internal/services/inference"
)

type fakeDetector struct {
	boxes []models.RawBox
	err   error
	calls int
}

func (f *fakeDetector) Detect(ctx context.Context, frame *imaging.Frame) ([]models.RawBox, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.boxes, nil
}

func (f *fakeDetector) HealthCheck(ctx context.Context) error { return f.err }
func (f *fakeDetector) Shutdown(ctx context.Context) error    { return nil }

type fakeClassifier struct {
	result models.ClassificationResult
	err    error
	clips  [][]*imaging.Frame
}

func (f *fakeClassifier) Classify(ctx context.Context, frames []*imaging.Frame) (models.ClassificationResult, error) {
	f.clips = append(f.clips, frames)
	if f.err != nil {
		return models.ClassificationResult{}, f.err
	}
	return f.result, nil
}

func (f *fakeClassifier) HealthCheck(ctx context.Context) error { return f.err }
func (f *fakeClassifier) Shutdown(ctx context.Context) error    { return nil }

type fakePublisher struct {
	subjects []string
	payloads []interface{}
}

func (f *fakePublisher) Publish(subject string, data interface{}) error {
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		WorkerID:             "worker-test",
		AlertsSubject:        "alerts.test",
		ConfidenceThreshold:  0.5,
		MinBoxSizePct:        1.0,
		SuspiciousLabels:     []string{"knife"},
		ClipLength:           16,
		DetectionRingSize:    3,
		AlertRingSize:        5,
		AlertMinConfidence:   70,
		ClassifierPrecedence: true,
		InferenceTimeout:     time.Second,
	}
}

func newTestService(cfg *config.Config, det *fakeDetector, cls *fakeClassifier, pub models.MessagePublisher) *Service {
	return NewService(cfg, det, cls, pub, metrics.New())
}

// frameDataURL builds a small valid PNG data URL for pipeline input.
func frameDataURL(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 20), G: uint8(y * 20), B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDetectFrameRecordsDetections(t *testing.T) {
	det := &fakeDetector{boxes: []models.RawBox{
		{X1: 10, Y1: 10, X2: 60, Y2: 80, Confidence: 0.91, Label: "person"},
		{X1: 0, Y1: 0, X2: 30, Y2: 30, Confidence: 0.2, Label: "person"}, // below floor
	}}
	svc := newTestService(testConfig(), det, &fakeClassifier{}, nil)

	detections, err := svc.DetectFrame(context.Background(), frameDataURL(t, 100, 100))
	if err != nil {
		t.Fatalf("DetectFrame() error = %v", err)
	}
	if len(detections) != 1 {
		t.Fatalf("accepted detections = %d, want 1", len(detections))
	}
	if detections[0].ID == 0 {
		t.Error("detection ID not assigned")
	}
	if detections[0].Status != models.StatusNormal {
		t.Errorf("status = %q, want normal", detections[0].Status)
	}

	snap := svc.Snapshot()
	if snap.Stats.TotalDetections != 1 || snap.Stats.NormalCount != 1 {
		t.Errorf("stats = %+v, want total=1 normal=1", snap.Stats)
	}
	if len(snap.Detections) != 1 {
		t.Errorf("snapshot detections = %d, want 1", len(snap.Detections))
	}
}

func TestDetectionIDsUnique(t *testing.T) {
	det := &fakeDetector{boxes: []models.RawBox{
		{X1: 10, Y1: 10, X2: 60, Y2: 80, Confidence: 0.9, Label: "person"},
		{X1: 20, Y1: 20, X2: 70, Y2: 90, Confidence: 0.8, Label: "person"},
	}}
	svc := newTestService(testConfig(), det, &fakeClassifier{}, nil)

	seen := make(map[int64]bool)
	for i := 0; i < 3; i++ {
		detections, err := svc.DetectFrame(context.Background(), frameDataURL(t, 100, 100))
		if err != nil {
			t.Fatalf("DetectFrame(%d) error = %v", i, err)
		}
		for _, d := range detections {
			if seen[d.ID] {
				t.Errorf("duplicate detection ID %d", d.ID)
			}
			seen[d.ID] = true
		}
	}
}

func TestDetectFrameDecodeFailureLeavesStateUntouched(t *testing.T) {
	det := &fakeDetector{boxes: []models.RawBox{{X1: 10, Y1: 10, X2: 60, Y2: 80, Confidence: 0.9, Label: "person"}}}
	svc := newTestService(testConfig(), det, &fakeClassifier{}, nil)

	before := svc.Snapshot()
	_, err := svc.DetectFrame(context.Background(), "data:image/png;base64,!!!not-base64!!!")
	if err == nil {
		t.Fatal("DetectFrame() with malformed payload succeeded")
	}
	var decodeErr *imaging.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("error type = %T, want *imaging.DecodeError", err)
	}
	if det.calls != 0 {
		t.Errorf("detector called %d times on malformed input, want 0", det.calls)
	}
	if after := svc.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("state changed on decode failure:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestDetectFrameUnavailableDetectorLeavesStateUntouched(t *testing.T) {
	det := &fakeDetector{err: inference.Unavailable(fmt.Errorf("model server down"))}
	svc := newTestService(testConfig(), det, &fakeClassifier{}, nil)

	before := svc.Snapshot()
	_, err := svc.DetectFrame(context.Background(), frameDataURL(t, 64, 64))
	if !errors.Is(err, inference.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if after := svc.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("state changed on detector failure:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestDetectFrameSuspiciousLabelRaisesAlert(t *testing.T) {
	det := &fakeDetector{boxes: []models.RawBox{
		{X1: 10, Y1: 10, X2: 60, Y2: 80, Confidence: 0.88, Label: "knife"},
	}}
	pub := &fakePublisher{}
	svc := newTestService(testConfig(), det, &fakeClassifier{}, pub)

	detections, err := svc.DetectFrame(context.Background(), frameDataURL(t, 100, 100))
	if err != nil {
		t.Fatalf("DetectFrame() error = %v", err)
	}
	if detections[0].Status != models.StatusSuspicious {
		t.Errorf("status = %q, want suspicious", detections[0].Status)
	}

	snap := svc.Snapshot()
	if len(snap.Alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(snap.Alerts))
	}
	if snap.Alerts[0].RawConfidence != 88 {
		t.Errorf("raw confidence = %v, want 88", snap.Alerts[0].RawConfidence)
	}

	if len(pub.subjects) != 1 || pub.subjects[0] != "alerts.test" {
		t.Errorf("published subjects = %v, want [alerts.test]", pub.subjects)
	}
	payload, ok := pub.payloads[0].(models.AlertPayload)
	if !ok {
		t.Fatalf("payload type = %T, want models.AlertPayload", pub.payloads[0])
	}
	if payload.WorkerID != "worker-test" {
		t.Errorf("payload worker = %q, want worker-test", payload.WorkerID)
	}
}

func TestClassifyClipSuspiciousRecordsAlert(t *testing.T) {
	cls := &fakeClassifier{result: models.ClassificationResult{
		Prediction: models.StatusSuspicious,
		Confidence: 85,
		Probabilities: map[string]float64{
			"suspicious": 85,
			"normal":     15,
		},
	}}
	svc := newTestService(testConfig(), &fakeDetector{}, cls, nil)

	frames := []string{
		frameDataURL(t, 32, 32),
		frameDataURL(t, 32, 32),
	}
	result, err := svc.ClassifyClip(context.Background(), frames, 0)
	if err != nil {
		t.Fatalf("ClassifyClip() error = %v", err)
	}
	if result.Prediction != models.StatusSuspicious {
		t.Errorf("prediction = %q, want suspicious", result.Prediction)
	}

	// Two frames padded up to the configured clip length
	if len(cls.clips) != 1 {
		t.Fatalf("classifier invoked %d times, want 1", len(cls.clips))
	}
	if len(cls.clips[0]) != 16 {
		t.Fatalf("classifier clip length = %d, want 16", len(cls.clips[0]))
	}

	snap := svc.Snapshot()
	if len(snap.Alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(snap.Alerts))
	}
	if snap.Alerts[0].Confidence != 85 {
		t.Errorf("alert confidence = %v, want 85", snap.Alerts[0].Confidence)
	}
	// Classification never touches the detection counters
	if snap.Stats.TotalDetections != 0 {
		t.Errorf("totalDetections = %d after classification, want 0", snap.Stats.TotalDetections)
	}
}

func TestClassifyClipEmpty(t *testing.T) {
	svc := newTestService(testConfig(), &fakeDetector{}, &fakeClassifier{}, nil)

	_, err := svc.ClassifyClip(context.Background(), nil, 0)
	if !errors.Is(err, clip.ErrEmptyClip) {
		t.Errorf("error = %v, want ErrEmptyClip", err)
	}
}

func TestClassifyClipUnavailableLeavesStateUntouched(t *testing.T) {
	cls := &fakeClassifier{err: inference.Unavailable(fmt.Errorf("timeout"))}
	svc := newTestService(testConfig(), &fakeDetector{}, cls, nil)

	before := svc.Snapshot()
	_, err := svc.ClassifyClip(context.Background(), []string{frameDataURL(t, 32, 32)}, 4)
	if !errors.Is(err, inference.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if after := svc.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("state changed on classifier failure:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestSessionLifecycle(t *testing.T) {
	det := &fakeDetector{boxes: []models.RawBox{
		{X1: 10, Y1: 10, X2: 60, Y2: 80, Confidence: 0.9, Label: "person"},
	}}
	svc := newTestService(testConfig(), det, &fakeClassifier{}, nil)

	snap := svc.StartSession()
	if !snap.Running {
		t.Fatal("session not running after start")
	}
	if snap.ActivityStatus != models.ActivityNormal {
		t.Errorf("activity = %q after start, want normal", snap.ActivityStatus)
	}

	if _, err := svc.DetectFrame(context.Background(), frameDataURL(t, 100, 100)); err != nil {
		t.Fatalf("DetectFrame() error = %v", err)
	}

	// Idempotent start keeps state
	snap = svc.StartSession()
	if snap.Stats.TotalDetections != 1 {
		t.Errorf("restart lost counters: %+v", snap.Stats)
	}

	snap = svc.StopSession()
	if snap.Running {
		t.Fatal("session running after stop")
	}
	if snap.ActivityStatus != models.ActivityIdle {
		t.Errorf("activity = %q after stop, want idle", snap.ActivityStatus)
	}
	if snap.Stats.TotalDetections != 1 || len(snap.Detections) != 1 {
		t.Errorf("stop cleared history: %+v", snap)
	}

	started, ended := svc.SessionWindow()
	if started == nil || ended == nil {
		t.Errorf("session window = (%v, %v), want both set", started, ended)
	}

	snap = svc.ResetSession()
	if snap.Running || snap.Stats.TotalDetections != 0 || len(snap.Detections) != 0 || len(snap.Alerts) != 0 {
		t.Errorf("reset left residue: %+v", snap)
	}
	if started, ended := svc.SessionWindow(); started != nil || ended != nil {
		t.Errorf("reset kept session window (%v, %v)", started, ended)
	}
}

func TestEndToEndSuspiciousScenario(t *testing.T) {
	det := &fakeDetector{boxes: []models.RawBox{
		{X1: 10, Y1: 10, X2: 60, Y2: 80, Confidence: 0.9, Label: "person"},
	}}
	cls := &fakeClassifier{result: models.ClassificationResult{
		Prediction:    models.StatusSuspicious,
		Confidence:    91.5,
		Probabilities: map[string]float64{"suspicious": 91.5, "normal": 8.5},
	}}
	pub := &fakePublisher{}
	svc := newTestService(testConfig(), det, cls, pub)

	svc.StartSession()

	// Detection ring stays bounded over many frames
	for i := 0; i < 5; i++ {
		if _, err := svc.DetectFrame(context.Background(), frameDataURL(t, 100, 100)); err != nil {
			t.Fatalf("DetectFrame(%d) error = %v", i, err)
		}
	}

	if _, err := svc.ClassifyClip(context.Background(), []string{frameDataURL(t, 32, 32)}, 8); err != nil {
		t.Fatalf("ClassifyClip() error = %v", err)
	}

	snap := svc.Snapshot()
	if !snap.Running {
		t.Error("session not running mid-scenario")
	}
	if len(snap.Detections) != 3 {
		t.Errorf("detection ring = %d, want capped at 3", len(snap.Detections))
	}
	if snap.Stats.TotalDetections != 5 || snap.Stats.NormalCount != 5 {
		t.Errorf("stats = %+v, want total=5 normal=5", snap.Stats)
	}
	if len(snap.Alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(snap.Alerts))
	}
	if snap.Alerts[0].RawConfidence != 91.5 {
		t.Errorf("alert raw confidence = %v, want 91.5", snap.Alerts[0].RawConfidence)
	}
	if len(pub.payloads) != 1 {
		t.Errorf("published alerts = %d, want 1", len(pub.payloads))
	}
}
