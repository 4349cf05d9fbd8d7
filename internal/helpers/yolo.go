package helpers

import (
	"fmt"
	"image"
	"os"
	"strings"

	"gocv.io/x/gocv"

	"vigil-worker-go/internal/imaging"
	"vigil-worker-go/internal/models"
)

const (
	// DefaultYOLOInputSize is the square input resolution for YOLO blobs
	DefaultYOLOInputSize = 640

	// DefaultNMSThreshold for box de-duplication
	DefaultNMSThreshold = 0.45
)

// FrameToMat converts an RGB frame to a BGR Mat for OpenCV DNN input.
// The caller owns the returned Mat and must Close it.
func FrameToMat(frame *imaging.Frame) (gocv.Mat, error) {
	if frame == nil || len(frame.Pix) != frame.Width*frame.Height*3 {
		return gocv.NewMat(), fmt.Errorf("invalid frame buffer")
	}

	rgb, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to wrap frame bytes: %w", err)
	}
	defer rgb.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgb, &bgr, gocv.ColorRGBToBGR)
	return bgr, nil
}

// LoadClassNames reads one class label per line, skipping blanks.
func LoadClassNames(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class names %s: %w", path, err)
	}

	var names []string
	for _, line := range strings.Split(string(raw), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// RunYOLO runs a single forward pass of a YOLOv8-family network over one
// frame and returns pixel-space boxes mapped back to the original frame
// size. The output tensor is expected as [1, 4+numClasses, numCandidates].
func RunYOLO(net *gocv.Net, frame *imaging.Frame, inputSize int, scoreThreshold, nmsThreshold float32, classNames []string) ([]models.RawBox, error) {
	mat, err := FrameToMat(frame)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(inputSize, inputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	net.SetInput(blob, "")
	output := net.Forward("")
	defer output.Close()

	sizes := output.Size()
	if len(sizes) != 3 {
		return nil, fmt.Errorf("unexpected YOLO output rank %d", len(sizes))
	}
	rows := sizes[1] // 4 box params + class scores
	candidates := sizes[2]
	numClasses := rows - 4
	if numClasses < 1 {
		return nil, fmt.Errorf("unexpected YOLO output shape %v", sizes)
	}

	scaleX := float32(frame.Width) / float32(inputSize)
	scaleY := float32(frame.Height) / float32(inputSize)

	var rects []image.Rectangle
	var scores []float32
	var classIDs []int

	for c := 0; c < candidates; c++ {
		bestScore := float32(0)
		bestClass := -1
		for cls := 0; cls < numClasses; cls++ {
			score := output.GetFloatAt3(0, 4+cls, c)
			if score > bestScore {
				bestScore = score
				bestClass = cls
			}
		}
		if bestClass < 0 || bestScore < scoreThreshold {
			continue
		}

		cx := output.GetFloatAt3(0, 0, c)
		cy := output.GetFloatAt3(0, 1, c)
		w := output.GetFloatAt3(0, 2, c)
		h := output.GetFloatAt3(0, 3, c)

		x1 := (cx - w/2) * scaleX
		y1 := (cy - h/2) * scaleY
		x2 := (cx + w/2) * scaleX
		y2 := (cy + h/2) * scaleY

		rects = append(rects, image.Rect(int(x1), int(y1), int(x2), int(y2)))
		scores = append(scores, bestScore)
		classIDs = append(classIDs, bestClass)
	}

	if len(rects) == 0 {
		return nil, nil
	}

	keep := gocv.NMSBoxes(rects, scores, scoreThreshold, nmsThreshold)

	boxes := make([]models.RawBox, 0, len(keep))
	for _, idx := range keep {
		rect := rects[idx]
		boxes = append(boxes, models.RawBox{
			X1:         float64(rect.Min.X),
			Y1:         float64(rect.Min.Y),
			X2:         float64(rect.Max.X),
			Y2:         float64(rect.Max.Y),
			Confidence: float64(scores[idx]),
			Label:      className(classNames, classIDs[idx]),
		})
	}
	return boxes, nil
}

func className(names []string, id int) string {
	if id >= 0 && id < len(names) {
		return names[id]
	}
	return fmt.Sprintf("class_%d", id)
}
