package partnersearch

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/pasturelink/marketplace-backend/pkg/db/models"
	"github.com/pasturelink/marketplace-backend/pkg/enums"
	pkgerrors "github.com/pasturelink/marketplace-backend/pkg/errors"
	"github.com/pasturelink/marketplace-backend/pkg/types"
)

type stubCandidateRepo struct {
	rows []CandidateRow
	err  error

	lastPartnerType enums.PartnerRole
	lastRadius      float64
}

func (s *stubCandidateRepo) FindNearby(ctx context.Context, origin types.Address, partnerType enums.PartnerRole, radiusMiles float64) ([]CandidateRow, error) {
	s.lastPartnerType = partnerType
	s.lastRadius = radiusMiles
	return s.rows, s.err
}

type stubPartnershipLister struct {
	rows []models.Partnership
}

func (s *stubPartnershipLister) ListByStore(ctx context.Context, storeID uuid.UUID, statuses ...enums.PartnershipStatus) ([]models.Partnership, error) {
	return s.rows, nil
}

type stubStoreLocator struct {
	rows map[uuid.UUID]*models.Store
}

func (s *stubStoreLocator) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store, ok := s.rows[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	return store, nil
}

func searchAddress() *types.Address {
	return &types.Address{Line1: "1 Main St", City: "Petaluma", State: "CA", PostalCode: "94952", Lat: 38.2, Lng: -122.6}
}

func TestSearchDecoratesExistingPartnerships(t *testing.T) {
	t.Parallel()

	storeID := uuid.New()
	knownPartner := uuid.New()
	freshPartner := uuid.New()
	partnershipID := uuid.New()

	candidates := &stubCandidateRepo{rows: []CandidateRow{
		{StoreID: knownPartner, Name: "Valley Labs", Type: enums.StoreTypeProcessor, DistanceMiles: 4.2},
		{StoreID: freshPartner, Name: "Hilltop Extracts", Type: enums.StoreTypeProcessor, DistanceMiles: 11.8},
	}}
	lister := &stubPartnershipLister{rows: []models.Partnership{
		{ID: partnershipID, ProducerStoreID: storeID, ProcessorStoreID: knownPartner, Status: enums.PartnershipStatusPending},
	}}
	locator := &stubStoreLocator{rows: map[uuid.UUID]*models.Store{
		storeID: {ID: storeID, BusinessAddress: searchAddress()},
	}}

	svc, err := NewService(candidates, lister, locator)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	results, err := svc.Search(context.Background(), storeID, enums.PartnerRoleProcessor, 25)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	known := results[0]
	if known.ExistingPartnershipID == nil || *known.ExistingPartnershipID != partnershipID {
		t.Fatalf("existing partnership not decorated: %+v", known)
	}
	if known.ExistingPartnershipStatus == nil || *known.ExistingPartnershipStatus != enums.PartnershipStatusPending {
		t.Fatalf("existing status not decorated: %+v", known)
	}
	if results[1].ExistingPartnershipID != nil {
		t.Fatalf("fresh candidate must not carry a partnership: %+v", results[1])
	}

	if candidates.lastPartnerType != enums.PartnerRoleProcessor || candidates.lastRadius != 25 {
		t.Fatalf("query inputs not forwarded: %s %v", candidates.lastPartnerType, candidates.lastRadius)
	}
}

func TestSearchSkipsTheSearchingStore(t *testing.T) {
	t.Parallel()

	storeID := uuid.New()
	candidates := &stubCandidateRepo{rows: []CandidateRow{
		{StoreID: storeID, Name: "Self", Type: enums.StoreTypeHybrid},
		{StoreID: uuid.New(), Name: "Other", Type: enums.StoreTypeProcessor},
	}}
	locator := &stubStoreLocator{rows: map[uuid.UUID]*models.Store{
		storeID: {ID: storeID, BusinessAddress: searchAddress()},
	}}

	svc, _ := NewService(candidates, &stubPartnershipLister{}, locator)
	results, err := svc.Search(context.Background(), storeID, enums.PartnerRoleProcessor, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].StoreName != "Other" {
		t.Fatalf("searching store must be excluded: %+v", results)
	}
}

func TestSearchRequiresBusinessAddress(t *testing.T) {
	t.Parallel()

	storeID := uuid.New()
	locator := &stubStoreLocator{rows: map[uuid.UUID]*models.Store{
		storeID: {ID: storeID},
	}}

	svc, _ := NewService(&stubCandidateRepo{}, &stubPartnershipLister{}, locator)
	_, err := svc.Search(context.Background(), storeID, enums.PartnerRoleProcessor, 10)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict without an address, got %v", err)
	}
}

func TestSearchValidatesInput(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubCandidateRepo{}, &stubPartnershipLister{}, &stubStoreLocator{rows: map[uuid.UUID]*models.Store{}})

	if _, err := svc.Search(context.Background(), uuid.Nil, enums.PartnerRoleProcessor, 10); err == nil {
		t.Fatalf("nil store id must be rejected")
	}
	if _, err := svc.Search(context.Background(), uuid.New(), enums.PartnerRole("grower"), 10); err == nil {
		t.Fatalf("invalid partner type must be rejected")
	}
	if _, err := svc.Search(context.Background(), uuid.New(), enums.PartnerRoleProcessor, 0); err == nil {
		t.Fatalf("non-positive radius must be rejected")
	}
}
