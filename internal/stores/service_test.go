package stores

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/marketplace-backend/internal/flowcatalog"
	"github.com/pasturelink/marketplace-backend/internal/onboarding"
	"github.com/pasturelink/marketplace-backend/pkg/db/models"
	"github.com/pasturelink/marketplace-backend/pkg/enums"
	pkgerrors "github.com/pasturelink/marketplace-backend/pkg/errors"
	"github.com/pasturelink/marketplace-backend/pkg/types"
)

type stubStoreRepo struct {
	rows    map[uuid.UUID]*models.Store
	created []*models.Store
	updated []*models.Store

	createErr error
}

func newStubStoreRepo() *stubStoreRepo {
	return &stubStoreRepo{rows: map[uuid.UUID]*models.Store{}}
}

func (s *stubStoreRepo) Create(ctx context.Context, store *models.Store) error {
	if s.createErr != nil {
		return s.createErr
	}
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	s.rows[store.ID] = store
	s.created = append(s.created, store)
	return nil
}

func (s *stubStoreRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *store
	return &copied, nil
}

func (s *stubStoreRepo) Update(ctx context.Context, store *models.Store) error {
	s.rows[store.ID] = store
	s.updated = append(s.updated, store)
	return nil
}

type stubOptionLookup struct {
	options map[string]map[string]flowcatalog.CategoryFlowOption
}

func (s stubOptionLookup) Option(category, optionKey string) (flowcatalog.CategoryFlowOption, bool) {
	byKey, ok := s.options[category]
	if !ok {
		return flowcatalog.CategoryFlowOption{}, false
	}
	option, ok := byKey[optionKey]
	return option, ok
}

func producerLookup() stubOptionLookup {
	return stubOptionLookup{options: map[string]map[string]flowcatalog.CategoryFlowOption{
		"flower": {
			"grow_own": {CanProduce: true, NeedsPartnerships: true, PartnerType: "processor"},
		},
	}}
}

func TestCreateStoreConfirmsServerSideConfig(t *testing.T) {
	t.Parallel()

	repo := newStubStoreRepo()
	svc, err := NewService(repo, producerLookup())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ownerID := uuid.New()
	storeID, confirmed, err := svc.CreateStore(context.Background(), ownerID, onboarding.StoreBasics{
		Name:         "  Green Acres  ",
		Categories:   []string{"flower"},
		SetupAnswers: map[string]string{"flower": "grow_own"},
	})
	if err != nil {
		t.Fatalf("CreateStore: %v", err)
	}
	if storeID == uuid.Nil {
		t.Fatalf("expected a store id")
	}

	if confirmed.StoreType != enums.StoreTypeProducer || !confirmed.NeedsPartnerships {
		t.Fatalf("unexpected confirmed config: %+v", confirmed)
	}

	created := repo.created[0]
	if created.Name != "Green Acres" {
		t.Fatalf("name not trimmed: %q", created.Name)
	}
	if !created.CanProduce || created.Type != enums.StoreTypeProducer {
		t.Fatalf("confirmed config not applied to row: %+v", created)
	}
	if created.PartnershipType == nil || *created.PartnershipType != "processor" {
		t.Fatalf("partnership type not stored: %+v", created.PartnershipType)
	}
	if created.SubmissionStatus != enums.SubmissionStatusDraft {
		t.Fatalf("new stores start as drafts, got %s", created.SubmissionStatus)
	}
}

func TestCreateStoreValidatesBasics(t *testing.T) {
	t.Parallel()

	svc, err := NewService(newStubStoreRepo(), producerLookup())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, _, err = svc.CreateStore(context.Background(), uuid.New(), onboarding.StoreBasics{Name: "   ", Categories: []string{"flower"}})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}

	_, _, err = svc.CreateStore(context.Background(), uuid.New(), onboarding.StoreBasics{Name: "Green Acres"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing categories, got %v", err)
	}
}

func TestUpdateBasicsReappliesConfig(t *testing.T) {
	t.Parallel()

	repo := newStubStoreRepo()
	svc, _ := NewService(repo, producerLookup())

	storeID, _, err := svc.CreateStore(context.Background(), uuid.New(), onboarding.StoreBasics{
		Name:         "Green Acres",
		Categories:   []string{"flower"},
		SetupAnswers: map[string]string{"flower": "grow_own"},
	})
	if err != nil {
		t.Fatalf("CreateStore: %v", err)
	}

	confirmed, err := svc.UpdateBasics(context.Background(), storeID, onboarding.StoreBasics{
		Name:       "Green Acres Collective",
		Categories: []string{"accessories"},
	})
	if err != nil {
		t.Fatalf("UpdateBasics: %v", err)
	}
	if confirmed.StoreType != enums.StoreTypeIndependent || confirmed.NeedsPartnerships {
		t.Fatalf("config must be recomputed from new answers: %+v", confirmed)
	}

	updated := repo.rows[storeID]
	if updated.CanProduce || updated.NeedsPartnership || updated.PartnershipType != nil {
		t.Fatalf("stale capabilities left on row: %+v", updated)
	}
}

func validAddress() *types.Address {
	return &types.Address{
		Line1:      "12 Orchard Way",
		City:       "Petaluma",
		State:      "CA",
		PostalCode: "94952",
		Lat:        38.23,
		Lng:        -122.64,
	}
}

func TestSaveLocationValidations(t *testing.T) {
	t.Parallel()

	repo := newStubStoreRepo()
	svc, _ := NewService(repo, producerLookup())
	storeID, _, err := svc.CreateStore(context.Background(), uuid.New(), onboarding.StoreBasics{
		Name:       "Green Acres",
		Categories: []string{"flower"},
	})
	if err != nil {
		t.Fatalf("CreateStore: %v", err)
	}

	err = svc.SaveLocation(context.Background(), storeID, onboarding.LocationLogistics{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("missing business address must be rejected, got %v", err)
	}

	err = svc.SaveLocation(context.Background(), storeID, onboarding.LocationLogistics{
		BusinessAddress: validAddress(),
		SellingMethods:  []enums.SellingMethod{enums.SellingMethodPickup},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("billing address required unless same-as-business, got %v", err)
	}

	err = svc.SaveLocation(context.Background(), storeID, onboarding.LocationLogistics{
		BusinessAddress:       validAddress(),
		BillingSameAsBusiness: true,
		SellingMethods:        []enums.SellingMethod{enums.SellingMethodLocalDelivery},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("local delivery without a radius must be rejected, got %v", err)
	}

	err = svc.SaveLocation(context.Background(), storeID, onboarding.LocationLogistics{
		BusinessAddress:       validAddress(),
		BillingSameAsBusiness: true,
		SellingMethods:        []enums.SellingMethod{enums.SellingMethodLocalDelivery},
		DeliveryRadiusMiles:   15,
	})
	if err != nil {
		t.Fatalf("valid location rejected: %v", err)
	}

	saved := repo.rows[storeID]
	if saved.BusinessAddress == nil || saved.BillingAddress != nil || !saved.BillingSameAsAddress {
		t.Fatalf("billing-same flag not honored: %+v", saved)
	}
}

func TestSubmitForReviewIsOneWay(t *testing.T) {
	t.Parallel()

	repo := newStubStoreRepo()
	svc, _ := NewService(repo, producerLookup())
	storeID, _, err := svc.CreateStore(context.Background(), uuid.New(), onboarding.StoreBasics{
		Name:       "Green Acres",
		Categories: []string{"flower"},
	})
	if err != nil {
		t.Fatalf("CreateStore: %v", err)
	}

	submissionID, submittedAt, err := svc.SubmitForReview(context.Background(), storeID)
	if err != nil {
		t.Fatalf("SubmitForReview: %v", err)
	}
	if submissionID == uuid.Nil || submittedAt.IsZero() {
		t.Fatalf("submission must return an id and timestamp")
	}
	if repo.rows[storeID].SubmissionStatus != enums.SubmissionStatusUnderReview {
		t.Fatalf("store not moved to review: %s", repo.rows[storeID].SubmissionStatus)
	}

	_, _, err = svc.SubmitForReview(context.Background(), storeID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("resubmission must be a state conflict, got %v", err)
	}

	// Rejected stores may be resubmitted.
	repo.rows[storeID].SubmissionStatus = enums.SubmissionStatusRejected
	if _, _, err := svc.SubmitForReview(context.Background(), storeID); err != nil {
		t.Fatalf("rejected store must be resubmittable: %v", err)
	}
}

func TestSubmitForReviewUnknownStore(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(newStubStoreRepo(), producerLookup())
	_, _, err := svc.SubmitForReview(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
