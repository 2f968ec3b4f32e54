package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pasturelink/marketplace-backend/internal/onboarding"
	pkgerrors "github.com/pasturelink/marketplace-backend/pkg/errors"
	"github.com/pasturelink/marketplace-backend/pkg/redis"
)

// Store persists wizard drafts in a user-scoped redis key. One draft per
// user; every save overwrites the previous one.
type Store struct {
	kv        redis.KeyValueStore
	retention time.Duration
	now       func() time.Time
}

// NewStore builds the draft store. The retention window doubles as the key
// TTL so abandoned drafts expire server-side too.
func NewStore(kv redis.KeyValueStore, retention time.Duration) (*Store, error) {
	if kv == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "key/value store required")
	}
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	return &Store{kv: kv, retention: retention, now: time.Now}, nil
}

// Save stamps SavedAt and the owner, replacing any prior draft unconditionally.
func (s *Store) Save(ctx context.Context, ownerUserID uuid.UUID, state *onboarding.WizardState) error {
	if ownerUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner user id required")
	}
	if state == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "wizard state required")
	}

	draft := onboarding.Draft{
		OwnerUserID: ownerUserID,
		SavedAt:     s.now().UTC(),
		State:       *state,
	}
	payload, err := json.Marshal(draft)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "encode draft")
	}
	if err := s.kv.Set(ctx, s.kv.DraftKey(ownerUserID.String()), payload, s.retention); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "save draft")
	}
	return nil
}

// Load returns the caller's draft, or nil when none exists, when the stored
// owner differs from the caller, or when the draft has gone stale. Stale and
// foreign drafts are cleared rather than returned.
func (s *Store) Load(ctx context.Context, ownerUserID uuid.UUID) (*onboarding.Draft, error) {
	if ownerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner user id required")
	}

	key := s.kv.DraftKey(ownerUserID.String())
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load draft")
	}

	var draft onboarding.Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		// An undecodable draft is unrecoverable; discard it.
		_ = s.kv.Del(ctx, key)
		return nil, nil
	}

	if draft.OwnerUserID != ownerUserID {
		// Never hand a draft to a different authenticated user.
		_ = s.kv.Del(ctx, key)
		return nil, nil
	}
	if s.IsStale(&draft, s.retention) {
		_ = s.kv.Del(ctx, key)
		return nil, nil
	}
	return &draft, nil
}

// Clear removes the caller's draft.
func (s *Store) Clear(ctx context.Context, ownerUserID uuid.UUID) error {
	if ownerUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner user id required")
	}
	if err := s.kv.Del(ctx, s.kv.DraftKey(ownerUserID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "clear draft")
	}
	return nil
}

// IsStale reports whether the draft's age exceeds the retention window.
func (s *Store) IsStale(draft *onboarding.Draft, maxAge time.Duration) bool {
	if draft == nil {
		return true
	}
	if maxAge <= 0 {
		maxAge = s.retention
	}
	return s.now().Sub(draft.SavedAt) > maxAge
}
