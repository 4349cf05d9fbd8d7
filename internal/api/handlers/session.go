package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vigil-worker-go/internal/models"
	"vigil-worker-go/internal/services/pipeline"
)

type SessionHandler struct {
	pipeline *pipeline.Service
}

func NewSessionHandler(p *pipeline.Service) *SessionHandler {
	return &SessionHandler{pipeline: p}
}

type SessionResponse struct {
	Status string               `json:"status" example:"started"`
	State  models.StateSnapshot `json:"state"`
}

// @Summary Start surveillance session
// @Description Start the surveillance session. Idempotent: restarting keeps the original start time.
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /api/session/start [post]
func (h *SessionHandler) Start(c *gin.Context) {
	snap := h.pipeline.StartSession()
	c.JSON(http.StatusOK, SessionResponse{Status: "started", State: snap})
}

// @Summary Stop surveillance session
// @Description Stop the session. History and counters are kept for review.
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /api/session/stop [post]
func (h *SessionHandler) Stop(c *gin.Context) {
	snap := h.pipeline.StopSession()
	c.JSON(http.StatusOK, SessionResponse{Status: "stopped", State: snap})
}

// @Summary Reset surveillance session
// @Description Stop the session and clear all history and counters.
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /api/session/reset [post]
func (h *SessionHandler) Reset(c *gin.Context) {
	snap := h.pipeline.ResetSession()
	c.JSON(http.StatusOK, SessionResponse{Status: "reset", State: snap})
}

// @Summary Session state
// @Description Immutable snapshot of the session: running flag, activity, recent detections and alerts, counters, uptime.
// @Tags session
// @Accept json
// @Produce json
// @Success 200 {object} models.StateSnapshot
// @Router /api/state [get]
func (h *SessionHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.pipeline.Snapshot())
}
