package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/timmy/memegen/internal/domain"
	"gorm.io/gorm"
)

// ErrGenerationNotFound is returned when a generation ID does not exist.
var ErrGenerationNotFound = errors.New("generation not found")

const maxListLimit = 100

// GenerationRepository stores accepted generations.
type GenerationRepository struct {
	db *gorm.DB
}

// NewGenerationRepository creates a new GenerationRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *GenerationRepository: repository instance bound to db.
func NewGenerationRepository(db *gorm.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

// Create inserts a new generation record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - gen: accepted generation to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *GenerationRepository) Create(ctx context.Context, gen *domain.Generation) error {
	if err := r.db.WithContext(ctx).Create(gen).Error; err != nil {
		return fmt.Errorf("failed to save generation: %w", err)
	}
	return nil
}

// GetByID retrieves a generation by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: generation ID.
// Returns:
//   - *domain.Generation: generation record if found.
//   - error: ErrGenerationNotFound if missing, non-nil if lookup fails.
func (r *GenerationRepository) GetByID(ctx context.Context, id string) (*domain.Generation, error) {
	var gen domain.Generation
	err := r.db.WithContext(ctx).First(&gen, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGenerationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &gen, nil
}

// List retrieves generations newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - keyword: optional exact keyword filter; empty lists everything.
//   - limit: maximum number of records, clamped to [1,100].
//   - offset: number of records to skip.
// Returns:
//   - []domain.Generation: generations in the requested page.
//   - int64: total number of matching generations.
//   - error: non-nil if the query fails.
func (r *GenerationRepository) List(ctx context.Context, keyword string, limit, offset int) ([]domain.Generation, int64, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).Model(&domain.Generation{})
	if keyword != "" {
		query = query.Where("keyword = ?", keyword)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var gens []domain.Generation
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&gens).Error
	if err != nil {
		return nil, 0, err
	}
	return gens, total, nil
}
