package classification

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"vigil-worker-go/internal/helpers"
	"vigil-worker-go/internal/imaging"
	"vigil-worker-go/internal/models"
	"vigil-worker-go/internal/services/inference"
)

// Labels the activity model emits for ordinary human presence. Anything
// outside this set counts as the suspicious signal.
var normalLabels = map[string]struct{}{
	"person": {},
	"people": {},
}

// minConfidence floors the reported confidence so a positive judgment always
// reads as actionable; the probability split still reflects it.
const minConfidence = 70.0

// ONNXClassifier judges a sampled clip with a custom suspicious-activity
// YOLO model. Only the most recent frame of the clip is inspected — the
// model is a frame-level detector, and the newest frame carries the current
// scene.
type ONNXClassifier struct {
	mu sync.Mutex

	modelPath      string
	namesPath      string
	inputSize      int
	scoreThreshold float32

	net        gocv.Net
	classNames []string
	loaded     bool
	loadedPath string
}

// NewONNXClassifier creates the classifier with lazy, memoized model
// loading, mirroring the detector's degrade-don't-crash behavior.
func NewONNXClassifier(modelPath, namesPath string, inputSize int, scoreThreshold float64) *ONNXClassifier {
	if inputSize <= 0 {
		inputSize = 480
	}

	c := &ONNXClassifier{
		modelPath:      modelPath,
		namesPath:      namesPath,
		inputSize:      inputSize,
		scoreThreshold: float32(scoreThreshold),
	}

	if err := c.ensureLoaded(); err != nil {
		log.Warn().Err(err).Str("model", modelPath).
			Msg("Activity classification model not available, will retry on demand")
	} else {
		log.Info().Str("model", modelPath).Msg("Activity classification model loaded")
	}

	return c
}

func (c *ONNXClassifier) ensureLoaded() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded && c.loadedPath == c.modelPath {
		return nil
	}

	if c.modelPath == "" {
		return fmt.Errorf("no classification model path configured")
	}

	if c.loaded {
		c.net.Close()
		c.loaded = false
	}

	net := gocv.ReadNet(c.modelPath, "")
	if net.Empty() {
		return fmt.Errorf("failed to load classification model from %s", c.modelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	var names []string
	if c.namesPath != "" {
		loaded, err := helpers.LoadClassNames(c.namesPath)
		if err != nil {
			net.Close()
			return err
		}
		names = loaded
	}

	c.net = net
	c.classNames = names
	c.loaded = true
	c.loadedPath = c.modelPath
	return nil
}

// Classify runs the activity model and folds its per-box output into one
// normal/suspicious judgment with a full probability split.
func (c *ONNXClassifier) Classify(ctx context.Context, clip []*imaging.Frame) (models.ClassificationResult, error) {
	if len(clip) == 0 {
		return models.ClassificationResult{}, fmt.Errorf("empty clip")
	}
	if err := ctx.Err(); err != nil {
		return models.ClassificationResult{}, inference.Unavailable(err)
	}
	if err := c.ensureLoaded(); err != nil {
		return models.ClassificationResult{}, inference.Unavailable(err)
	}

	frame := clip[len(clip)-1]

	c.mu.Lock()
	boxes, err := helpers.RunYOLO(&c.net, frame, c.inputSize, c.scoreThreshold, helpers.DefaultNMSThreshold, c.classNames)
	c.mu.Unlock()
	if err != nil {
		return models.ClassificationResult{}, inference.Unavailable(err)
	}

	return FuseBoxes(boxes), nil
}

// FuseBoxes maps the activity model's raw boxes to a classification result:
// the strongest non-person label drives a suspicious verdict, otherwise the
// scene is normal with confidence tied to how clearly people were seen.
func FuseBoxes(boxes []models.RawBox) models.ClassificationResult {
	maxPeopleConf := 0.0
	maxSuspiciousConf := 0.0

	for _, box := range boxes {
		label := strings.ToLower(strings.TrimSpace(box.Label))
		if _, ok := normalLabels[label]; ok {
			if box.Confidence > maxPeopleConf {
				maxPeopleConf = box.Confidence
			}
		} else if box.Confidence > maxSuspiciousConf {
			maxSuspiciousConf = box.Confidence
		}
	}

	if maxSuspiciousConf > 0 {
		confidence := maxSuspiciousConf * 100
		if confidence < minConfidence {
			confidence = minConfidence
		}
		return models.ClassificationResult{
			Prediction: models.StatusSuspicious,
			Confidence: confidence,
			Probabilities: map[string]float64{
				"normal":     clampPct(100 - confidence),
				"suspicious": clampPct(confidence),
			},
		}
	}

	confidence := 80.0
	if maxPeopleConf > 0 {
		confidence = maxPeopleConf * 100
	}
	if confidence < minConfidence {
		confidence = minConfidence
	}
	return models.ClassificationResult{
		Prediction: models.StatusNormal,
		Confidence: confidence,
		Probabilities: map[string]float64{
			"normal":     clampPct(confidence),
			"suspicious": clampPct(100 - confidence),
		},
	}
}

// HealthCheck reports whether the model is loadable.
func (c *ONNXClassifier) HealthCheck(ctx context.Context) error {
	if err := c.ensureLoaded(); err != nil {
		return inference.Unavailable(err)
	}
	return nil
}

// Shutdown releases the network.
func (c *ONNXClassifier) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		log.Info().Msg("Releasing activity classification model")
		c.loaded = false
		return c.net.Close()
	}
	return nil
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
