package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vigil-worker-go/internal/services/pipeline"
)

type HealthHandler struct {
	workerID string
	version  string
	pipeline *pipeline.Service
}

func NewHealthHandler(workerID, version string, p *pipeline.Service) *HealthHandler {
	return &HealthHandler{workerID: workerID, version: version, pipeline: p}
}

type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	WorkerID  string `json:"worker_id" example:"worker-1"`
	Inference string `json:"inference" example:"available"`
}

type WorkerInfoResponse struct {
	WorkerID     string   `json:"worker_id" example:"worker-1"`
	Status       string   `json:"status" example:"running"`
	Version      string   `json:"version" example:"1.0.0"`
	Capabilities []string `json:"capabilities"`
}

// @Summary Health check
// @Description Check if the worker is healthy; inference reachability is reported but never fails the check
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	inference := "available"
	if err := h.pipeline.HealthCheck(c.Request.Context()); err != nil {
		inference = "unavailable"
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		WorkerID:  h.workerID,
		Inference: inference,
	})
}

// @Summary Worker information
// @Description Get basic worker information and capabilities
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} WorkerInfoResponse
// @Router / [get]
func (h *HealthHandler) WorkerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, WorkerInfoResponse{
		WorkerID: h.workerID,
		Status:   "running",
		Version:  h.version,
		Capabilities: []string{
			"person_detection",
			"activity_classification",
			"session_state",
			"recordings",
		},
	})
}
