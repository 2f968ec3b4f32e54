package stores

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/pasturelink/marketplace-backend/internal/onboarding"
	"github.com/pasturelink/marketplace-backend/pkg/db/models"
	"github.com/pasturelink/marketplace-backend/pkg/enums"
	pkgerrors "github.com/pasturelink/marketplace-backend/pkg/errors"
	"github.com/pasturelink/marketplace-backend/pkg/types"
)

type storeRepository interface {
	Create(ctx context.Context, store *models.Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	Update(ctx context.Context, store *models.Store) error
}

// Service is the authoritative store API the wizard talks to. The capability
// configuration it confirms on create/update wins over the client-proposed
// one.
type Service interface {
	CreateStore(ctx context.Context, ownerID uuid.UUID, basics onboarding.StoreBasics) (uuid.UUID, onboarding.DerivedStoreConfig, error)
	UpdateBasics(ctx context.Context, storeID uuid.UUID, basics onboarding.StoreBasics) (onboarding.DerivedStoreConfig, error)
	SaveLocation(ctx context.Context, storeID uuid.UUID, location onboarding.LocationLogistics) error
	SaveHours(ctx context.Context, storeID uuid.UUID, hours types.WeekHours) error
	SaveBranding(ctx context.Context, storeID uuid.UUID, branding onboarding.Branding) error
	SubmitForReview(ctx context.Context, storeID uuid.UUID) (uuid.UUID, time.Time, error)
}

type service struct {
	repo   storeRepository
	lookup onboarding.OptionLookup
}

// NewService builds the store service. The option lookup is the same catalog
// the wizard derives from; the service recomputes the configuration
// server-side rather than trusting the client's proposal.
func NewService(repo storeRepository, lookup onboarding.OptionLookup) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store repository required")
	}
	if lookup == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "option lookup required")
	}
	return &service{repo: repo, lookup: lookup}, nil
}

func (s *service) CreateStore(ctx context.Context, ownerID uuid.UUID, basics onboarding.StoreBasics) (uuid.UUID, onboarding.DerivedStoreConfig, error) {
	var zero onboarding.DerivedStoreConfig
	if ownerID == uuid.Nil {
		return uuid.Nil, zero, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	if err := validateBasics(basics); err != nil {
		return uuid.Nil, zero, err
	}

	confirmed := onboarding.Derive(basics.Categories, basics.SetupAnswers, s.lookup)
	store := &models.Store{
		OwnerID:          ownerID,
		Name:             strings.TrimSpace(basics.Name),
		Categories:       pq.StringArray(basics.Categories),
		SubmissionStatus: enums.SubmissionStatusDraft,
	}
	if basics.Description != "" {
		description := basics.Description
		store.Description = &description
	}
	applyConfig(store, confirmed)

	if err := s.repo.Create(ctx, store); err != nil {
		return uuid.Nil, zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}
	return store.ID, confirmed, nil
}

func (s *service) UpdateBasics(ctx context.Context, storeID uuid.UUID, basics onboarding.StoreBasics) (onboarding.DerivedStoreConfig, error) {
	var zero onboarding.DerivedStoreConfig
	if err := validateBasics(basics); err != nil {
		return zero, err
	}

	store, err := s.load(ctx, storeID)
	if err != nil {
		return zero, err
	}

	confirmed := onboarding.Derive(basics.Categories, basics.SetupAnswers, s.lookup)
	store.Name = strings.TrimSpace(basics.Name)
	store.Categories = pq.StringArray(basics.Categories)
	store.Description = nil
	if basics.Description != "" {
		description := basics.Description
		store.Description = &description
	}
	applyConfig(store, confirmed)

	if err := s.repo.Update(ctx, store); err != nil {
		return zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	return confirmed, nil
}

func (s *service) SaveLocation(ctx context.Context, storeID uuid.UUID, location onboarding.LocationLogistics) error {
	if location.BusinessAddress == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "business address required")
	}
	if err := location.BusinessAddress.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "business address")
	}
	if !location.BillingSameAsBusiness {
		if location.BillingAddress == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "billing address required unless same as business")
		}
		if err := location.BillingAddress.Validate(); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "billing address")
		}
	}
	if len(location.SellingMethods) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one selling method required")
	}
	for _, method := range location.SellingMethods {
		if !method.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid selling method")
		}
		if method == enums.SellingMethodLocalDelivery && location.DeliveryRadiusMiles <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "delivery radius required for local delivery")
		}
	}

	store, err := s.load(ctx, storeID)
	if err != nil {
		return err
	}

	store.BusinessAddress = location.BusinessAddress
	store.BillingSameAsAddress = location.BillingSameAsBusiness
	store.BillingAddress = location.BillingAddress
	if location.BillingSameAsBusiness {
		store.BillingAddress = nil
	}
	methods := make([]string, 0, len(location.SellingMethods))
	for _, method := range location.SellingMethods {
		methods = append(methods, method.String())
	}
	store.SellingMethods = pq.StringArray(methods)
	store.DeliveryRadiusMiles = location.DeliveryRadiusMiles

	if err := s.repo.Update(ctx, store); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save location")
	}
	return nil
}

func (s *service) SaveHours(ctx context.Context, storeID uuid.UUID, hours types.WeekHours) error {
	if err := hours.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "open hours")
	}

	store, err := s.load(ctx, storeID)
	if err != nil {
		return err
	}
	store.OpenHours = hours
	if err := s.repo.Update(ctx, store); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save hours")
	}
	return nil
}

func (s *service) SaveBranding(ctx context.Context, storeID uuid.UUID, branding onboarding.Branding) error {
	store, err := s.load(ctx, storeID)
	if err != nil {
		return err
	}
	store.LogoURL = branding.LogoURL
	store.BannerURL = branding.BannerURL
	store.GalleryURLs = pq.StringArray(branding.GalleryURLs)
	store.VideoURL = branding.VideoURL
	if err := s.repo.Update(ctx, store); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save branding")
	}
	return nil
}

// SubmitForReview is one-way: a store already under review or approved stays
// where it is.
func (s *service) SubmitForReview(ctx context.Context, storeID uuid.UUID) (uuid.UUID, time.Time, error) {
	store, err := s.load(ctx, storeID)
	if err != nil {
		return uuid.Nil, time.Time{}, err
	}
	if store.SubmissionStatus != enums.SubmissionStatusDraft && store.SubmissionStatus != enums.SubmissionStatusRejected {
		return uuid.Nil, time.Time{}, pkgerrors.New(pkgerrors.CodeStateConflict, "store already submitted")
	}

	now := time.Now().UTC()
	store.SubmissionStatus = enums.SubmissionStatusUnderReview
	store.SubmittedAt = &now
	if err := s.repo.Update(ctx, store); err != nil {
		return uuid.Nil, time.Time{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit store")
	}
	return uuid.New(), now, nil
}

func (s *service) load(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store_id required")
	}
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func validateBasics(basics onboarding.StoreBasics) error {
	if strings.TrimSpace(basics.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store name required")
	}
	if len(basics.Categories) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one category required")
	}
	return nil
}

func applyConfig(store *models.Store, cfg onboarding.DerivedStoreConfig) {
	store.Type = cfg.StoreType
	store.CanProduce = cfg.CanProduce
	store.CanProcess = cfg.CanProcess
	store.CanRetail = cfg.CanRetail
	store.NeedsPartnership = cfg.NeedsPartnerships
	store.PartnershipType = nil
	if cfg.NeedsPartnerships && cfg.PartnershipType != "" {
		partnerType := cfg.PartnershipType.String()
		store.PartnershipType = &partnerType
	}
}
