package partnerships

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/marketplace-backend/pkg/db/models"
	"github.com/pasturelink/marketplace-backend/pkg/enums"
)

// PairConstraint is the unique index covering the producer/processor pair.
const PairConstraint = "partnerships_pair_key"

// Repository handles partnership persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to partnership operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new partnership row.
func (r *Repository) Create(ctx context.Context, partnership *models.Partnership) error {
	if partnership == nil {
		return fmt.Errorf("partnership is required")
	}
	return r.db.WithContext(ctx).Create(partnership).Error
}

// FindByID loads a partnership by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Partnership, error) {
	var partnership models.Partnership
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&partnership).Error; err != nil {
		return nil, err
	}
	return &partnership, nil
}

// FindPair loads the partnership between a producer and processor regardless
// of status.
func (r *Repository) FindPair(ctx context.Context, producerStoreID, processorStoreID uuid.UUID) (*models.Partnership, error) {
	var partnership models.Partnership
	err := r.db.WithContext(ctx).
		Where("producer_store_id = ? AND processor_store_id = ?", producerStoreID, processorStoreID).
		First(&partnership).Error
	if err != nil {
		return nil, err
	}
	return &partnership, nil
}

// ListByStore returns partnerships where the store occupies either side,
// optionally filtered by status.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, statuses ...enums.PartnershipStatus) ([]models.Partnership, error) {
	query := r.db.WithContext(ctx).
		Where("producer_store_id = ? OR processor_store_id = ?", storeID, storeID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var partnerships []models.Partnership
	if err := query.Order("created_at ASC").Find(&partnerships).Error; err != nil {
		return nil, err
	}
	return partnerships, nil
}

// Terminate marks the partnership terminated with a reason.
func (r *Repository) Terminate(ctx context.Context, id uuid.UUID, reason string) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.Partnership{}).
		Where("id = ? AND status <> ?", id, enums.PartnershipStatusTerminated).
		Updates(map[string]any{
			"status":             enums.PartnershipStatusTerminated,
			"termination_reason": reason,
			"terminated_at":      now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
