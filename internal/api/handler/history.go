package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memegen/internal/domain"
	"github.com/timmy/memegen/internal/repository"
)

// TemplateLister lists the template catalog.
type TemplateLister interface {
	ListAll(ctx context.Context) []domain.Template
}

// GenerationStore reads accepted generations.
type GenerationStore interface {
	List(ctx context.Context, keyword string, limit, offset int) ([]domain.Generation, int64, error)
	GetByID(ctx context.Context, id string) (*domain.Generation, error)
}

// HistoryHandler serves the template catalog and past generations.
type HistoryHandler struct {
	templates   TemplateLister
	generations GenerationStore
}

// NewHistoryHandler creates a new history handler.
// Parameters:
//   - templates: template catalog.
//   - generations: generation history store.
// Returns:
//   - *HistoryHandler: initialized handler.
func NewHistoryHandler(templates TemplateLister, generations GenerationStore) *HistoryHandler {
	return &HistoryHandler{templates: templates, generations: generations}
}

// ListTemplates handles GET /api/v1/templates.
func (h *HistoryHandler) ListTemplates(c *gin.Context) {
	templates := h.templates.ListAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"templates": templates,
		"total":     len(templates),
	})
}

// ListGenerations handles GET /api/v1/generations.
func (h *HistoryHandler) ListGenerations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	gens, total, err := h.generations.List(c.Request.Context(), c.Query("keyword"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list generations: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"generations": gens,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

// GetGeneration handles GET /api/v1/generations/:id.
func (h *HistoryHandler) GetGeneration(c *gin.Context) {
	gen, err := h.generations.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrGenerationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Generation not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get generation: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gen)
}
