package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memegen/internal/api/middleware"
	"github.com/timmy/memegen/internal/domain"
)

// MemeGenerator runs batch generation.
type MemeGenerator interface {
	GenerateN(ctx context.Context, keyword string, n, retryLimit int) ([]*domain.Generation, error)
}

// MemeHandler handles meme generation endpoints.
type MemeHandler struct {
	generator MemeGenerator
}

// NewMemeHandler creates a new meme handler.
// Parameters:
//   - generator: batch generation service.
// Returns:
//   - *MemeHandler: initialized handler.
func NewMemeHandler(generator MemeGenerator) *MemeHandler {
	return &MemeHandler{generator: generator}
}

// GenerateRequest is the body of POST /api/v1/memes/generate.
type GenerateRequest struct {
	Keyword    string `json:"keyword" binding:"required"`
	Count      int    `json:"count" binding:"omitempty,min=1,max=10"`
	RetryLimit int    `json:"retry_limit" binding:"omitempty,min=1,max=10"`
}

// GenerateResponse lists the memes that cleared the humor threshold.
type GenerateResponse struct {
	Memes     []*domain.Generation `json:"memes"`
	Requested int                  `json:"requested"`
	Generated int                  `json:"generated"`
}

// Generate handles POST /api/v1/memes/generate.
// A request that produces nothing is still a 200 with generated=0.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *MemeHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	memes, err := h.generator.GenerateN(c.Request.Context(), req.Keyword, req.Count, req.RetryLimit)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			middleware.GetLogger(c).Info("Generation request canceled by client")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Generation canceled",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Generation failed: " + err.Error(),
		})
		return
	}
	if memes == nil {
		memes = []*domain.Generation{}
	}

	c.JSON(http.StatusOK, GenerateResponse{
		Memes:     memes,
		Requested: req.Count,
		Generated: len(memes),
	})
}
