package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vigil-worker-go/internal/logging"
	"vigil-worker-go/internal/models"
	"vigil-worker-go/internal/services/pipeline"
)

// IngestHandler accepts client frames for detection and clips for activity
// classification.
type IngestHandler struct {
	pipeline *pipeline.Service
}

func NewIngestHandler(p *pipeline.Service) *IngestHandler {
	return &IngestHandler{pipeline: p}
}

type DetectRequest struct {
	// Image is a base64 data URL (data:image/jpeg;base64,...) or bare base64
	Image string `json:"image" binding:"required"`
}

type DetectResponse struct {
	Detections     []models.Detection    `json:"detections"`
	ActivityStatus models.ActivityStatus `json:"activityStatus" example:"normal"`
}

type ClassifyRequest struct {
	// Frames are base64 data URLs in capture order
	Frames []string `json:"frames" binding:"required"`
	// NumFrames overrides the configured clip length; 0 keeps the default
	NumFrames int `json:"numFrames"`
}

// @Summary Detect persons in a frame
// @Description Run person detection on one frame and record the accepted detections.
// @Tags ingest
// @Accept json
// @Produce json
// @Param request body DetectRequest true "Frame payload"
// @Success 200 {object} DetectResponse
// @Failure 400 {object} ErrorResponse "Malformed frame payload"
// @Failure 503 {object} ErrorResponse "Detector unavailable"
// @Router /api/detect [post]
func (h *IngestHandler) Detect(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "image is required"})
		return
	}

	detections, err := h.pipeline.DetectFrame(c.Request.Context(), req.Image)
	if err != nil {
		logging.Warn(c).Err(err).Msg("Frame detection failed")
		respondError(c, err)
		return
	}

	snap := h.pipeline.Snapshot()
	c.JSON(http.StatusOK, DetectResponse{
		Detections:     detections,
		ActivityStatus: snap.ActivityStatus,
	})
}

// @Summary Classify clip activity
// @Description Sample the uploaded frames to a fixed-length clip and classify the activity.
// @Tags ingest
// @Accept json
// @Produce json
// @Param request body ClassifyRequest true "Clip payload"
// @Success 200 {object} models.ClassificationResult
// @Failure 400 {object} ErrorResponse "Empty clip or malformed frame"
// @Failure 503 {object} ErrorResponse "Classifier unavailable"
// @Router /api/classify [post]
func (h *IngestHandler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "frames are required"})
		return
	}

	result, err := h.pipeline.ClassifyClip(c.Request.Context(), req.Frames, req.NumFrames)
	if err != nil {
		logging.Warn(c).Err(err).Msg("Clip classification failed")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
