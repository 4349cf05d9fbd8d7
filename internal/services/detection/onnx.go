package detection

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"vigil-worker-go/internal/helpers"
	"vigil-worker-go/internal/imaging"
	"vigil-worker-go/internal/models"
	"vigil-worker-go/internal/services/inference"
)

// ONNXDetector runs a YOLO person-detection model through the OpenCV DNN
// backend. Loading is lazy and memoized per model path; an unavailable model
// never crashes startup, it surfaces per call as inference unavailability.
type ONNXDetector struct {
	mu sync.Mutex

	modelPath      string
	namesPath      string
	inputSize      int
	scoreThreshold float32
	nmsThreshold   float32

	net        gocv.Net
	classNames []string
	loaded     bool
	loadedPath string
}

// NewONNXDetector creates the detector and attempts an eager load so a
// missing model is reported once at startup instead of on the first frame.
func NewONNXDetector(modelPath, namesPath string, inputSize int, scoreThreshold float64) *ONNXDetector {
	if inputSize <= 0 {
		inputSize = helpers.DefaultYOLOInputSize
	}

	d := &ONNXDetector{
		modelPath:      modelPath,
		namesPath:      namesPath,
		inputSize:      inputSize,
		scoreThreshold: float32(scoreThreshold),
		nmsThreshold:   helpers.DefaultNMSThreshold,
	}

	if err := d.ensureLoaded(); err != nil {
		log.Warn().Err(err).Str("model", modelPath).
			Msg("Person detection model not available, will retry on demand")
	} else {
		log.Info().Str("model", modelPath).Int("input_size", inputSize).
			Msg("Person detection model loaded")
	}

	return d
}

func (d *ONNXDetector) ensureLoaded() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Already loaded from the same source
	if d.loaded && d.loadedPath == d.modelPath {
		return nil
	}

	if d.modelPath == "" {
		return fmt.Errorf("no detection model path configured")
	}

	if d.loaded {
		d.net.Close()
		d.loaded = false
	}

	net := gocv.ReadNet(d.modelPath, "")
	if net.Empty() {
		return fmt.Errorf("failed to load detection model from %s", d.modelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	names := []string{"person"}
	if d.namesPath != "" {
		loaded, err := helpers.LoadClassNames(d.namesPath)
		if err != nil {
			net.Close()
			return err
		}
		names = loaded
	}

	d.net = net
	d.classNames = names
	d.loaded = true
	d.loadedPath = d.modelPath
	return nil
}

// Detect returns pixel-space person boxes for one frame.
func (d *ONNXDetector) Detect(ctx context.Context, frame *imaging.Frame) ([]models.RawBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, inference.Unavailable(err)
	}
	if err := d.ensureLoaded(); err != nil {
		return nil, inference.Unavailable(err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	boxes, err := helpers.RunYOLO(&d.net, frame, d.inputSize, d.scoreThreshold, d.nmsThreshold, d.classNames)
	if err != nil {
		return nil, inference.Unavailable(err)
	}
	return boxes, nil
}

// HealthCheck reports whether the model is loadable.
func (d *ONNXDetector) HealthCheck(ctx context.Context) error {
	if err := d.ensureLoaded(); err != nil {
		return inference.Unavailable(err)
	}
	return nil
}

// Shutdown releases the network.
func (d *ONNXDetector) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded {
		log.Info().Msg("Releasing person detection model")
		d.loaded = false
		return d.net.Close()
	}
	return nil
}
