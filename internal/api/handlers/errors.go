package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vigil-worker-go/internal/clip"
	"vigil-worker-go/internal/imaging"
	"vigil-worker-go/internal/services/inference"
)

type ErrorResponse struct {
	Error string `json:"error" example:"invalid frame payload"`
}

// respondError maps pipeline errors onto HTTP status codes: client payload
// problems are 400, inference unavailability is 503, anything else 500.
func respondError(c *gin.Context, err error) {
	var decodeErr *imaging.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, clip.ErrEmptyClip):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, inference.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
