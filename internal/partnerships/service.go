package partnerships

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/marketplace-backend/pkg/db"
	"github.com/pasturelink/marketplace-backend/pkg/db/models"
	"github.com/pasturelink/marketplace-backend/pkg/enums"
	pkgerrors "github.com/pasturelink/marketplace-backend/pkg/errors"
)

type partnershipRepository interface {
	Create(ctx context.Context, partnership *models.Partnership) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Partnership, error)
	FindPair(ctx context.Context, producerStoreID, processorStoreID uuid.UUID) (*models.Partnership, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, statuses ...enums.PartnershipStatus) ([]models.Partnership, error)
	Terminate(ctx context.Context, id uuid.UUID, reason string) error
}

// CreatePartnershipInput shapes a create request. InitiatedByStoreID must be
// one of the two sides.
type CreatePartnershipInput struct {
	ProducerStoreID  uuid.UUID
	ProcessorStoreID uuid.UUID
	InitiatedByStore uuid.UUID
	Terms            *string
}

// PartnershipDTO exposes partnership data to API consumers.
type PartnershipDTO struct {
	ID                uuid.UUID               `json:"id"`
	ProducerStoreID   uuid.UUID               `json:"producer_store_id"`
	ProcessorStoreID  uuid.UUID               `json:"processor_store_id"`
	InitiatedByStore  uuid.UUID               `json:"initiated_by_store_id"`
	Status            enums.PartnershipStatus `json:"status"`
	Terms             *string                 `json:"terms,omitempty"`
	TerminationReason *string                 `json:"termination_reason,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
}

// Service exposes partnership operations.
type Service interface {
	Create(ctx context.Context, input CreatePartnershipInput) (*PartnershipDTO, error)
	Terminate(ctx context.Context, partnershipID uuid.UUID, reason string) error
	ListByStore(ctx context.Context, storeID uuid.UUID, statuses ...enums.PartnershipStatus) ([]PartnershipDTO, error)
}

type service struct {
	repo partnershipRepository
}

// NewService builds a partnership service with the provided repository.
func NewService(repo partnershipRepository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partnership repository required")
	}
	return &service{repo: repo}, nil
}

// Create inserts the partnership. Concurrent initiations from both sides of
// the same pair race against the unique index; the loser surfaces
// CodeConflict so callers can converge on the existing row.
func (s *service) Create(ctx context.Context, input CreatePartnershipInput) (*PartnershipDTO, error) {
	if input.ProducerStoreID == uuid.Nil || input.ProcessorStoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "producer and processor store ids required")
	}
	if input.ProducerStoreID == input.ProcessorStoreID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a store cannot partner with itself")
	}
	if input.InitiatedByStore != input.ProducerStoreID && input.InitiatedByStore != input.ProcessorStoreID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initiating store must be one side of the partnership")
	}

	partnership := &models.Partnership{
		ProducerStoreID:  input.ProducerStoreID,
		ProcessorStoreID: input.ProcessorStoreID,
		InitiatedByStore: input.InitiatedByStore,
		Status:           enums.PartnershipStatusPending,
		Terms:            input.Terms,
	}
	if err := s.repo.Create(ctx, partnership); err != nil {
		if db.IsUniqueViolation(err, PairConstraint) || db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "partnership already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create partnership")
	}
	return fromModel(partnership), nil
}

func (s *service) Terminate(ctx context.Context, partnershipID uuid.UUID, reason string) error {
	if partnershipID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "partnership_id required")
	}
	if reason == "" {
		reason = "terminated by store"
	}
	if err := s.repo.Terminate(ctx, partnershipID, reason); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "partnership not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "terminate partnership")
	}
	return nil
}

func (s *service) ListByStore(ctx context.Context, storeID uuid.UUID, statuses ...enums.PartnershipStatus) ([]PartnershipDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store_id required")
	}
	rows, err := s.repo.ListByStore(ctx, storeID, statuses...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list partnerships")
	}
	out := make([]PartnershipDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromModel(&rows[i]))
	}
	return out, nil
}

func fromModel(m *models.Partnership) *PartnershipDTO {
	if m == nil {
		return nil
	}
	return &PartnershipDTO{
		ID:                m.ID,
		ProducerStoreID:   m.ProducerStoreID,
		ProcessorStoreID:  m.ProcessorStoreID,
		InitiatedByStore:  m.InitiatedByStore,
		Status:            m.Status,
		Terms:             m.Terms,
		TerminationReason: m.TerminationReason,
		CreatedAt:         m.CreatedAt,
	}
}
