package partnerships

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pasturelink/marketplace-backend/pkg/enums"
	pkgerrors "github.com/pasturelink/marketplace-backend/pkg/errors"
	"github.com/pasturelink/marketplace-backend/pkg/metrics"
)

// Outcome classifies one reconciliation item.
type Outcome string

const (
	OutcomeCreated        Outcome = "created"
	OutcomeTerminated     Outcome = "terminated"
	OutcomeAlreadyExisted Outcome = "already_existed"
	OutcomeFailed         Outcome = "failed"
)

// Operation names the call a reconciliation item issued.
type Operation string

const (
	OperationCreate    Operation = "create"
	OperationTerminate Operation = "terminate"
)

// KnownPartnership pairs a partner store with its established partnership.
type KnownPartnership struct {
	PartnerStoreID uuid.UUID
	PartnershipID  uuid.UUID
}

// ItemResult is the settled outcome of one create or terminate call.
type ItemResult struct {
	PartnerStoreID uuid.UUID `json:"partner_store_id"`
	Operation      Operation `json:"operation"`
	Outcome        Outcome   `json:"outcome"`
	Error          string    `json:"error,omitempty"`
}

// ReconciliationResult aggregates all item outcomes of one run.
type ReconciliationResult struct {
	Items          []ItemResult `json:"items"`
	Created        int          `json:"created"`
	Terminated     int          `json:"terminated"`
	AlreadyExisted int          `json:"already_existed"`
	Failed         int          `json:"failed"`
}

// Converged reports whether every item settled without failure.
func (r *ReconciliationResult) Converged() bool {
	return r != nil && r.Failed == 0
}

type partnershipAPI interface {
	Create(ctx context.Context, input CreatePartnershipInput) (*PartnershipDTO, error)
	Terminate(ctx context.Context, partnershipID uuid.UUID, reason string) error
}

// Reconciler diffs a desired partner set against established partnerships and
// issues the minimal create/terminate batch. Re-running with the same desired
// set against a partially converged remote only touches the remaining delta.
type Reconciler struct {
	api             partnershipAPI
	metrics         *metrics.OnboardingMetrics
	terminateReason string
}

// NewReconciler builds the reconciler used by the wizard's partnership step.
func NewReconciler(api partnershipAPI, m *metrics.OnboardingMetrics) (*Reconciler, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partnership api required")
	}
	return &Reconciler{
		api:             api,
		metrics:         m,
		terminateReason: "partner deselected during store setup",
	}, nil
}

// Reconcile computes the delta and fans out all create/terminate calls
// concurrently, waiting for every call to settle before returning. A create
// answered with "already exists" counts as AlreadyExisted, never Failed:
// concurrent initiations from both sides of a partnership are expected.
func (r *Reconciler) Reconcile(ctx context.Context, storeID uuid.UUID, role enums.PartnerRole, desiredPartnerIDs []uuid.UUID, known []KnownPartnership) (*ReconciliationResult, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store_id required")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid store role")
	}

	desired := dedupe(desiredPartnerIDs)
	knownByPartner := make(map[uuid.UUID]uuid.UUID, len(known))
	for _, k := range known {
		if k.PartnerStoreID == uuid.Nil {
			continue
		}
		knownByPartner[k.PartnerStoreID] = k.PartnershipID
	}
	knownSet := make(map[uuid.UUID]struct{}, len(knownByPartner))
	for id := range knownByPartner {
		knownSet[id] = struct{}{}
	}

	toCreate := sortedIDs(difference(desired, knownSet))
	toTerminate := sortedIDs(difference(knownSet, desired))

	results := make(chan ItemResult, len(toCreate)+len(toTerminate))
	var wg sync.WaitGroup

	for _, partnerID := range toCreate {
		wg.Add(1)
		go func(partnerID uuid.UUID) {
			defer wg.Done()
			results <- r.createOne(ctx, storeID, role, partnerID)
		}(partnerID)
	}
	for _, partnerID := range toTerminate {
		wg.Add(1)
		go func(partnerID uuid.UUID) {
			defer wg.Done()
			results <- r.terminateOne(ctx, partnerID, knownByPartner[partnerID])
		}(partnerID)
	}

	wg.Wait()
	close(results)

	result := &ReconciliationResult{}
	for item := range results {
		result.Items = append(result.Items, item)
		switch item.Outcome {
		case OutcomeCreated:
			result.Created++
		case OutcomeTerminated:
			result.Terminated++
		case OutcomeAlreadyExisted:
			result.AlreadyExisted++
		case OutcomeFailed:
			result.Failed++
		}
		r.metrics.IncReconcileOutcome(string(item.Outcome))
	}
	sort.Slice(result.Items, func(i, j int) bool {
		return result.Items[i].PartnerStoreID.String() < result.Items[j].PartnerStoreID.String()
	})

	return result, nil
}

// createOne shapes the create request by role: if the local store produces,
// the partner processes, and vice versa.
func (r *Reconciler) createOne(ctx context.Context, storeID uuid.UUID, role enums.PartnerRole, partnerID uuid.UUID) ItemResult {
	input := CreatePartnershipInput{InitiatedByStore: storeID}
	if role == enums.PartnerRoleProducer {
		input.ProducerStoreID = storeID
		input.ProcessorStoreID = partnerID
	} else {
		input.ProducerStoreID = partnerID
		input.ProcessorStoreID = storeID
	}

	item := ItemResult{PartnerStoreID: partnerID, Operation: OperationCreate}
	_, err := r.api.Create(ctx, input)
	switch {
	case err == nil:
		item.Outcome = OutcomeCreated
	case pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeConflict:
		// Both sides initiated; the relationship already exists remotely.
		item.Outcome = OutcomeAlreadyExisted
	default:
		item.Outcome = OutcomeFailed
		item.Error = err.Error()
	}
	return item
}

func (r *Reconciler) terminateOne(ctx context.Context, partnerID, partnershipID uuid.UUID) ItemResult {
	item := ItemResult{PartnerStoreID: partnerID, Operation: OperationTerminate}
	if partnershipID == uuid.Nil {
		item.Outcome = OutcomeFailed
		item.Error = "no partnership id known for partner"
		return item
	}
	if err := r.api.Terminate(ctx, partnershipID, r.terminateReason); err != nil {
		item.Outcome = OutcomeFailed
		item.Error = err.Error()
		return item
	}
	item.Outcome = OutcomeTerminated
	return item
}

func dedupe(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{})
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

func difference(a, b map[uuid.UUID]struct{}) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{})
	for id := range a {
		if _, ok := b[id]; !ok {
			out[id] = struct{}{}
		}
	}
	return out
}

func sortedIDs(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
