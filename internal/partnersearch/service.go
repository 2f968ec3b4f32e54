package partnersearch

import (
	"context"

	"github.com/google/uuid"

	"github.com/pasturelink/marketplace-backend/pkg/db/models"
	"github.com/pasturelink/marketplace-backend/pkg/enums"
	pkgerrors "github.com/pasturelink/marketplace-backend/pkg/errors"
	"github.com/pasturelink/marketplace-backend/pkg/types"
)

// PotentialPartner is a transient search result, refreshed on each query.
type PotentialPartner struct {
	StoreID                   uuid.UUID                `json:"store_id"`
	StoreName                 string                   `json:"store_name"`
	StoreType                 enums.StoreType          `json:"store_type"`
	Address                   *types.Address           `json:"address,omitempty"`
	DistanceMiles             float64                  `json:"distance_miles"`
	ExistingPartnershipID     *uuid.UUID               `json:"existing_partnership_id,omitempty"`
	ExistingPartnershipStatus *enums.PartnershipStatus `json:"existing_partnership_status,omitempty"`
}

type candidateRepository interface {
	FindNearby(ctx context.Context, origin types.Address, partnerType enums.PartnerRole, radiusMiles float64) ([]CandidateRow, error)
}

type partnershipLister interface {
	ListByStore(ctx context.Context, storeID uuid.UUID, statuses ...enums.PartnershipStatus) ([]models.Partnership, error)
}

type storeLocator interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// Service finds candidate partner stores within a radius and decorates each
// with any relationship the searching store already has with it.
type Service interface {
	Search(ctx context.Context, storeID uuid.UUID, partnerType enums.PartnerRole, radiusMiles float64) ([]PotentialPartner, error)
}

type service struct {
	candidates   candidateRepository
	partnerships partnershipLister
	stores       storeLocator
}

// NewService builds the partner search service.
func NewService(candidates candidateRepository, partnerships partnershipLister, stores storeLocator) (Service, error) {
	if candidates == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "candidate repository required")
	}
	if partnerships == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partnership lister required")
	}
	if stores == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store locator required")
	}
	return &service{candidates: candidates, partnerships: partnerships, stores: stores}, nil
}

func (s *service) Search(ctx context.Context, storeID uuid.UUID, partnerType enums.PartnerRole, radiusMiles float64) ([]PotentialPartner, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store_id required")
	}
	if !partnerType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid partner type")
	}
	if radiusMiles <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "radius must be positive")
	}

	origin, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load searching store")
	}
	if origin.BusinessAddress == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "store has no business address yet")
	}

	rows, err := s.candidates.FindNearby(ctx, *origin.BusinessAddress, partnerType, radiusMiles)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search candidate partners")
	}

	existing, err := s.partnerships.ListByStore(ctx, storeID, enums.PartnershipStatusPending, enums.PartnershipStatusActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list existing partnerships")
	}
	byPartner := make(map[uuid.UUID]models.Partnership, len(existing))
	for _, p := range existing {
		partnerID := p.ProcessorStoreID
		if partnerID == storeID {
			partnerID = p.ProducerStoreID
		}
		byPartner[partnerID] = p
	}

	results := make([]PotentialPartner, 0, len(rows))
	for _, row := range rows {
		if row.StoreID == storeID {
			continue
		}
		partner := PotentialPartner{
			StoreID:       row.StoreID,
			StoreName:     row.Name,
			StoreType:     row.Type,
			Address:       row.Address,
			DistanceMiles: row.DistanceMiles,
		}
		if p, ok := byPartner[row.StoreID]; ok {
			id := p.ID
			status := p.Status
			partner.ExistingPartnershipID = &id
			partner.ExistingPartnershipStatus = &status
		}
		results = append(results, partner)
	}
	return results, nil
}
