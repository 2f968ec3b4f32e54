package drafts

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pasturelink/marketplace-backend/internal/onboarding"
	"github.com/pasturelink/marketplace-backend/pkg/redis"
)

type stubKV struct {
	values map[string]string
	ttls   map[string]time.Duration

	setErr error
	getErr error
	delErr error
}

func newStubKV() *stubKV {
	return &stubKV{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubKV) Get(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	value, ok := s.values[key]
	if !ok {
		return "", redis.ErrNotFound
	}
	return value, nil
}

func (s *stubKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	payload, ok := value.([]byte)
	if !ok {
		payload = []byte(value.(string))
	}
	s.values[key] = string(payload)
	s.ttls[key] = ttl
	return nil
}

func (s *stubKV) Del(ctx context.Context, keys ...string) error {
	if s.delErr != nil {
		return s.delErr
	}
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubKV) DraftKey(userID string) string {
	return "pl:draft:" + userID
}

func TestDraftSaveStampsOwnerAndRetentionTTL(t *testing.T) {
	t.Parallel()

	kv := newStubKV()
	retention := 48 * time.Hour
	store, err := NewStore(kv, retention)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	saveTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return saveTime }

	ownerID := uuid.New()
	state := onboarding.WizardState{CurrentStepIndex: 2}
	if err := store.Save(context.Background(), ownerID, &state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	key := kv.DraftKey(ownerID.String())
	if kv.ttls[key] != retention {
		t.Fatalf("expected ttl %v, got %v", retention, kv.ttls[key])
	}

	var saved onboarding.Draft
	if err := json.Unmarshal([]byte(kv.values[key]), &saved); err != nil {
		t.Fatalf("unmarshal saved draft: %v", err)
	}
	if saved.OwnerUserID != ownerID {
		t.Fatalf("draft must carry the owner, got %s", saved.OwnerUserID)
	}
	if !saved.SavedAt.Equal(saveTime) {
		t.Fatalf("expected SavedAt %v, got %v", saveTime, saved.SavedAt)
	}
	if saved.State.CurrentStepIndex != 2 {
		t.Fatalf("state not round-tripped: %+v", saved.State)
	}
}

func TestDraftLoadReturnsNilWhenMissing(t *testing.T) {
	t.Parallel()

	store, err := NewStore(newStubKV(), time.Hour)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	draft, err := store.Load(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if draft != nil {
		t.Fatalf("expected no draft, got %+v", draft)
	}
}

func TestDraftLoadRoundTripsFreshDraft(t *testing.T) {
	t.Parallel()

	kv := newStubKV()
	store, err := NewStore(kv, time.Hour)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	ownerID := uuid.New()
	storeID := uuid.New()
	state := onboarding.WizardState{StoreID: &storeID, CurrentStepIndex: 3}
	if err := store.Save(context.Background(), ownerID, &state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	draft, err := store.Load(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if draft == nil || draft.State.StoreID == nil || *draft.State.StoreID != storeID {
		t.Fatalf("expected stored state back, got %+v", draft)
	}
}

func TestDraftLoadRejectsForeignOwner(t *testing.T) {
	t.Parallel()

	kv := newStubKV()
	store, err := NewStore(kv, time.Hour)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	caller := uuid.New()
	foreign := onboarding.Draft{
		OwnerUserID: uuid.New(),
		SavedAt:     time.Now().UTC(),
	}
	payload, _ := json.Marshal(foreign)
	key := kv.DraftKey(caller.String())
	kv.values[key] = string(payload)

	draft, err := store.Load(context.Background(), caller)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if draft != nil {
		t.Fatalf("foreign-owned draft must never be returned")
	}
	if _, ok := kv.values[key]; ok {
		t.Fatalf("foreign-owned draft must be cleared")
	}
}

func TestDraftLoadDropsStaleDraft(t *testing.T) {
	t.Parallel()

	kv := newStubKV()
	retention := 7 * 24 * time.Hour
	store, err := NewStore(kv, retention)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	ownerID := uuid.New()
	stale := onboarding.Draft{
		OwnerUserID: ownerID,
		SavedAt:     time.Now().UTC().Add(-retention - time.Hour),
	}
	payload, _ := json.Marshal(stale)
	key := kv.DraftKey(ownerID.String())
	kv.values[key] = string(payload)

	draft, err := store.Load(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if draft != nil {
		t.Fatalf("stale draft must not be recovered")
	}
	if _, ok := kv.values[key]; ok {
		t.Fatalf("stale draft must be cleared")
	}
}

func TestDraftLoadDiscardsUndecodablePayload(t *testing.T) {
	t.Parallel()

	kv := newStubKV()
	store, err := NewStore(kv, time.Hour)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	ownerID := uuid.New()
	key := kv.DraftKey(ownerID.String())
	kv.values[key] = "{not json"

	draft, err := store.Load(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if draft != nil {
		t.Fatalf("undecodable draft must not be returned")
	}
	if _, ok := kv.values[key]; ok {
		t.Fatalf("undecodable draft must be cleared")
	}
}

func TestDraftClearRemovesDraft(t *testing.T) {
	t.Parallel()

	kv := newStubKV()
	store, err := NewStore(kv, time.Hour)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	ownerID := uuid.New()
	if err := store.Save(context.Background(), ownerID, &onboarding.WizardState{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(context.Background(), ownerID); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	draft, err := store.Load(context.Background(), ownerID)
	if err != nil || draft != nil {
		t.Fatalf("expected cleared draft, got %+v err=%v", draft, err)
	}
}
