package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vigil-worker-go/internal/models"
	"vigil-worker-go/internal/services/pipeline"
	"vigil-worker-go/internal/services/recordings"
)

type RecordingsHandler struct {
	store    *recordings.Store
	pipeline *pipeline.Service
}

func NewRecordingsHandler(store *recordings.Store, p *pipeline.Service) *RecordingsHandler {
	return &RecordingsHandler{store: store, pipeline: p}
}

type RecordingListResponse struct {
	Recordings []models.Recording `json:"recordings"`
	Count      int                `json:"count" example:"2"`
}

// @Summary List recordings
// @Description All stored recordings, newest first.
// @Tags recordings
// @Accept json
// @Produce json
// @Success 200 {object} RecordingListResponse
// @Router /api/recordings [get]
func (h *RecordingsHandler) List(c *gin.Context) {
	recs, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if recs == nil {
		recs = []models.Recording{}
	}
	c.JSON(http.StatusOK, RecordingListResponse{Recordings: recs, Count: len(recs)})
}

// @Summary Upload a recording
// @Description Store a finished recording. startedAt/endedAt are optional RFC3339 form fields; when absent the last session start/stop transitions are used.
// @Tags recordings
// @Accept multipart/form-data
// @Produce json
// @Param video formData file true "Recording file"
// @Param startedAt formData string false "Interval start, RFC3339"
// @Param endedAt formData string false "Interval end, RFC3339"
// @Success 201 {object} models.Recording
// @Failure 400 {object} ErrorResponse "Missing file"
// @Router /api/recordings/upload [post]
func (h *RecordingsHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "video file is required"})
		return
	}

	startedAt := parseTimeField(c.PostForm("startedAt"))
	endedAt := parseTimeField(c.PostForm("endedAt"))
	if startedAt == nil && endedAt == nil {
		startedAt, endedAt = h.pipeline.SessionWindow()
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable upload"})
		return
	}
	defer f.Close()

	rec, err := h.store.Save(c.Request.Context(), f, fileHeader.Filename, startedAt, endedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// @Summary Download a recording
// @Description Stream a stored recording by filename.
// @Tags recordings
// @Produce octet-stream
// @Param filename path string true "Recording filename"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse "Unknown recording"
// @Router /media/recordings/{filename} [get]
func (h *RecordingsHandler) Download(c *gin.Context) {
	r, err := h.store.Open(c.Param("filename"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "recording not found"})
		return
	}
	defer r.Close()

	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	io.Copy(c.Writer, r)
}

func parseTimeField(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	return &t
}
