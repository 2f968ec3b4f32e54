package onboarding

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pasturelink/marketplace-backend/internal/partnersearch"
	"github.com/pasturelink/marketplace-backend/internal/partnerships"
	"github.com/pasturelink/marketplace-backend/pkg/config"
	"github.com/pasturelink/marketplace-backend/pkg/enums"
	pkgerrors "github.com/pasturelink/marketplace-backend/pkg/errors"
	"github.com/pasturelink/marketplace-backend/pkg/logger"
	"github.com/pasturelink/marketplace-backend/pkg/metrics"
	"github.com/pasturelink/marketplace-backend/pkg/types"
)

// StoreAPI is the remote store surface the wizard persists through. The
// derived configuration it returns is authoritative and replaces the
// client-proposed one.
type StoreAPI interface {
	CreateStore(ctx context.Context, ownerID uuid.UUID, basics StoreBasics) (uuid.UUID, DerivedStoreConfig, error)
	UpdateBasics(ctx context.Context, storeID uuid.UUID, basics StoreBasics) (DerivedStoreConfig, error)
	SaveLocation(ctx context.Context, storeID uuid.UUID, location LocationLogistics) error
	SaveHours(ctx context.Context, storeID uuid.UUID, hours types.WeekHours) error
	SaveBranding(ctx context.Context, storeID uuid.UUID, branding Branding) error
	SubmitForReview(ctx context.Context, storeID uuid.UUID) (uuid.UUID, time.Time, error)
}

// PartnerSearcher finds candidate partner stores within a radius.
type PartnerSearcher interface {
	Search(ctx context.Context, storeID uuid.UUID, partnerType enums.PartnerRole, radiusMiles float64) ([]partnersearch.PotentialPartner, error)
}

// PartnershipReconciler applies the desired-partner diff.
type PartnershipReconciler interface {
	Reconcile(ctx context.Context, storeID uuid.UUID, role enums.PartnerRole, desiredPartnerIDs []uuid.UUID, known []partnerships.KnownPartnership) (*partnerships.ReconciliationResult, error)
}

// PartnershipLister reads established partnerships for a store.
type PartnershipLister interface {
	ListByStore(ctx context.Context, storeID uuid.UUID, statuses ...enums.PartnershipStatus) ([]partnerships.PartnershipDTO, error)
}

// CatalogLookup serves the cached category flow configuration.
type CatalogLookup interface {
	Load(ctx context.Context) error
	OptionLookup
}

// ServiceParams carries the wizard service dependencies.
type ServiceParams struct {
	Catalog      CatalogLookup
	Drafts       DraftStore
	Stores       StoreAPI
	Search       PartnerSearcher
	Reconciler   PartnershipReconciler
	Partnerships PartnershipLister
	Config       config.OnboardingConfig
	Logger       *logger.Logger
	Metrics      *metrics.OnboardingMetrics
}

// SessionView is the serializable snapshot returned to API consumers.
type SessionView struct {
	UserID             uuid.UUID                          `json:"user_id"`
	State              WizardState                        `json:"state"`
	Derived            DerivedStoreConfig                 `json:"derived"`
	Steps              []enums.WizardStep                 `json:"steps"`
	CurrentStep        enums.WizardStep                   `json:"current_step"`
	DraftStatus        DraftStatus                        `json:"draft_status"`
	DraftRecovered     bool                               `json:"draft_recovered,omitempty"`
	Submitted          bool                               `json:"submitted"`
	LastReconciliation *partnerships.ReconciliationResult `json:"last_reconciliation,omitempty"`
	Warnings           []string                           `json:"warnings,omitempty"`
}

type session struct {
	mu sync.Mutex

	userID                  uuid.UUID
	state                   WizardState
	derived                 DerivedStoreConfig
	hasExistingPartnerships bool
	draftStatus             DraftStatus
	lastReconcile           *partnerships.ReconciliationResult
	warnings                []string
	submitted               bool

	autosave       *Debouncer
	searchDebounce *Debouncer
}

// Service walks a merchant through store setup: it owns the per-user wizard
// sessions, re-derives configuration on every mutation, keeps the step index
// valid, autosaves drafts, and drives partnership reconciliation on the
// partnership step.
type Service struct {
	catalog      CatalogLookup
	drafts       DraftStore
	stores       StoreAPI
	search       PartnerSearcher
	reconciler   PartnershipReconciler
	partnerships PartnershipLister
	cfg          config.OnboardingConfig
	logg         *logger.Logger
	metrics      *metrics.OnboardingMetrics

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// NewService builds the wizard service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog required")
	}
	if params.Drafts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "draft store required")
	}
	if params.Stores == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store api required")
	}
	if params.Search == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner searcher required")
	}
	if params.Reconciler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reconciler required")
	}
	if params.Partnerships == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partnership lister required")
	}
	return &Service{
		catalog:      params.Catalog,
		drafts:       params.Drafts,
		stores:       params.Stores,
		search:       params.Search,
		reconciler:   params.Reconciler,
		partnerships: params.Partnerships,
		cfg:          params.Config,
		logg:         params.Logger,
		metrics:      params.Metrics,
		sessions:     make(map[uuid.UUID]*session),
	}, nil
}

// StartOrResume opens the user's wizard session, recovering a draft when one
// exists, belongs to the caller, and is fresh enough.
func (s *Service) StartOrResume(ctx context.Context, userID uuid.UUID) (*SessionView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := s.catalog.Load(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess, ok := s.sessions[userID]
	s.mu.Unlock()
	if ok {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return s.viewLocked(sess), nil
	}

	sess = &session{
		userID:         userID,
		draftStatus:    DraftStatusIdle,
		autosave:       NewDebouncer(s.cfg.AutosaveDebounce),
		searchDebounce: NewDebouncer(s.cfg.SearchDebounce),
	}
	sess.state.Partnerships.RadiusMiles = s.cfg.DefaultSearchRadius

	recovered := false
	if draft, err := s.drafts.Load(ctx, userID); err != nil {
		// A broken draft backend must not block onboarding.
		s.warnPersistence(ctx, err)
	} else if draft != nil {
		sess.state = draft.State
		recovered = true
	}

	sess.mu.Lock()
	s.rederiveLocked(ctx, sess)
	sess.mu.Unlock()

	s.mu.Lock()
	s.sessions[userID] = sess
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	view := s.viewLocked(sess)
	view.DraftRecovered = recovered
	return view, nil
}

// DiscardDraft drops the stored draft and resets the session to a blank slate.
func (s *Service) DiscardDraft(ctx context.Context, userID uuid.UUID) (*SessionView, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.Clear(ctx, userID); err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.state = WizardState{}
	sess.state.Partnerships.RadiusMiles = s.cfg.DefaultSearchRadius
	sess.derived = Derive(nil, nil, s.catalog)
	sess.hasExistingPartnerships = false
	sess.draftStatus = DraftStatusIdle
	sess.lastReconcile = nil
	sess.warnings = nil
	return s.viewLocked(sess), nil
}

// ApplyBasics updates name, description, categories, and category answers.
func (s *Service) ApplyBasics(ctx context.Context, userID uuid.UUID, basics StoreBasics) (*SessionView, error) {
	return s.mutate(ctx, userID, true, func(sess *session) error {
		sess.state.Basics = basics
		return nil
	})
}

// ApplyLocation updates addresses and fulfillment settings.
func (s *Service) ApplyLocation(ctx context.Context, userID uuid.UUID, location LocationLogistics) (*SessionView, error) {
	return s.mutate(ctx, userID, false, func(sess *session) error {
		sess.state.Location = location
		return nil
	})
}

// ApplyHours updates the weekly opening hours.
func (s *Service) ApplyHours(ctx context.Context, userID uuid.UUID, hours types.WeekHours) (*SessionView, error) {
	return s.mutate(ctx, userID, false, func(sess *session) error {
		sess.state.Hours = hours
		return nil
	})
}

// ApplyBranding records media URLs as uploads complete.
func (s *Service) ApplyBranding(ctx context.Context, userID uuid.UUID, branding Branding) (*SessionView, error) {
	return s.mutate(ctx, userID, false, func(sess *session) error {
		sess.state.Branding = branding
		return nil
	})
}

// AgreeToTerms flips the policies acknowledgment.
func (s *Service) AgreeToTerms(ctx context.Context, userID uuid.UUID, agreed bool) (*SessionView, error) {
	return s.mutate(ctx, userID, false, func(sess *session) error {
		sess.state.AgreedToTerms = agreed
		return nil
	})
}

// ApplyPartnerSelection updates the desired partner set and search radius. A
// radius change schedules a debounced candidate refresh.
func (s *Service) ApplyPartnerSelection(ctx context.Context, userID uuid.UUID, radiusMiles float64, partnerIDs []uuid.UUID) (*SessionView, error) {
	if radiusMiles > s.cfg.MaxSearchRadiusMiles {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search radius too large")
	}
	return s.mutate(ctx, userID, false, func(sess *session) error {
		radiusChanged := radiusMiles > 0 && radiusMiles != sess.state.Partnerships.RadiusMiles
		if radiusMiles > 0 {
			sess.state.Partnerships.RadiusMiles = radiusMiles
		}
		sess.state.Partnerships.SelectedPartnerIDs = partnerIDs
		sess.state.Partnerships.PartnerType = sess.derived.PartnershipType
		if radiusChanged && sess.state.StoreID != nil {
			storeID := *sess.state.StoreID
			partnerType := sess.derived.PartnershipType
			radius := sess.state.Partnerships.RadiusMiles
			sess.searchDebounce.Trigger(func() {
				s.refreshCandidates(sess, storeID, partnerType, radius)
			})
		}
		return nil
	})
}

// SearchPartners runs an immediate candidate search and caches the results on
// the session.
func (s *Service) SearchPartners(ctx context.Context, userID uuid.UUID, radiusMiles float64) ([]partnersearch.PotentialPartner, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.state.StoreID == nil {
		sess.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "store must be created before searching partners")
	}
	storeID := *sess.state.StoreID
	partnerType := sess.derived.PartnershipType
	if radiusMiles <= 0 {
		radiusMiles = sess.state.Partnerships.RadiusMiles
	}
	sess.mu.Unlock()

	if partnerType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "store configuration does not call for partnerships")
	}

	candidates, err := s.search.Search(ctx, storeID, partnerType, radiusMiles)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.state.Partnerships.RadiusMiles = radiusMiles
	sess.state.Partnerships.Candidates = candidates
	sess.mu.Unlock()
	return candidates, nil
}

// Advance validates and persists the current step, then moves forward.
func (s *Service) Advance(ctx context.Context, userID uuid.UUID) (*SessionView, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.submitted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "wizard already submitted")
	}

	steps := VisibleSteps(sess.derived, sess.hasExistingPartnerships)
	current := StepAt(sess.state.CurrentStepIndex, steps)

	if err := s.commitStepLocked(ctx, sess, current); err != nil {
		return nil, err
	}

	// The step action may have changed the authoritative configuration, so
	// recompute the list before moving.
	steps = VisibleSteps(sess.derived, sess.hasExistingPartnerships)
	sess.state.CurrentStepIndex = ClampIndex(sess.state.CurrentStepIndex, steps)
	next, err := Advance(sess.state.CurrentStepIndex, steps)
	if err != nil {
		return nil, err
	}
	sess.state.CurrentStepIndex = next
	return s.viewLocked(sess), nil
}

// Retreat moves to the previous step. Index-only; never autosaves.
func (s *Service) Retreat(ctx context.Context, userID uuid.UUID) (*SessionView, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.submitted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "wizard already submitted")
	}
	prev, err := Retreat(sess.state.CurrentStepIndex)
	if err != nil {
		return nil, err
	}
	sess.state.CurrentStepIndex = prev
	return s.viewLocked(sess), nil
}

// JumpTo revisits a completed step. Index-only; never autosaves.
func (s *Service) JumpTo(ctx context.Context, userID uuid.UUID, target int) (*SessionView, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	steps := VisibleSteps(sess.derived, sess.hasExistingPartnerships)
	index, err := JumpTo(sess.state.CurrentStepIndex, target, steps)
	if err != nil {
		return nil, err
	}
	sess.state.CurrentStepIndex = index
	return s.viewLocked(sess), nil
}

// Submit posts the aggregated state for review and locks the session. The
// transition is one-way.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID) (*SessionView, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.submitted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "wizard already submitted")
	}
	steps := VisibleSteps(sess.derived, sess.hasExistingPartnerships)
	if StepAt(sess.state.CurrentStepIndex, steps) != enums.WizardStepReview {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "submission is only allowed from the review step")
	}
	if sess.state.StoreID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "store has not been created yet")
	}
	if !sess.state.AgreedToTerms {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "terms must be accepted before submission")
	}

	submissionID, submittedAt, err := s.stores.SubmitForReview(ctx, *sess.state.StoreID)
	if err != nil {
		return nil, err
	}

	sess.state.SubmissionID = &submissionID
	sess.state.SubmissionStatus = enums.SubmissionStatusUnderReview
	sess.state.SubmittedAt = &submittedAt
	sess.submitted = true
	sess.autosave.Stop()
	sess.searchDebounce.Stop()
	s.metrics.IncSubmission()

	if err := s.drafts.Clear(ctx, userID); err != nil {
		s.warnPersistence(ctx, err)
	}
	return s.viewLocked(sess), nil
}

// Exit stops further autosave scheduling and forgets the in-memory session.
// In-flight calls are left to finish on their own.
func (s *Service) Exit(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if ok {
		delete(s.sessions, userID)
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}
	sess.autosave.Stop()
	sess.searchDebounce.Stop()
	return nil
}

func (s *Service) session(userID uuid.UUID) (*session, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active wizard session")
	}
	return sess, nil
}

// mutate applies a state change, re-derives when category inputs moved,
// clamps the step index, and schedules a debounced autosave. Step-index-only
// changes go through Retreat/JumpTo instead and never reach here.
func (s *Service) mutate(ctx context.Context, userID uuid.UUID, rederive bool, apply func(*session) error) (*SessionView, error) {
	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.submitted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "wizard already submitted")
	}
	if err := apply(sess); err != nil {
		return nil, err
	}
	if rederive {
		sess.derived = Derive(sess.state.Basics.Categories, sess.state.Basics.SetupAnswers, s.catalog)
		steps := VisibleSteps(sess.derived, sess.hasExistingPartnerships)
		sess.state.CurrentStepIndex = ClampIndex(sess.state.CurrentStepIndex, steps)
	}
	s.scheduleAutosaveLocked(sess)
	return s.viewLocked(sess), nil
}

// commitStepLocked runs the current step's persistence action. Called with
// the session lock held.
func (s *Service) commitStepLocked(ctx context.Context, sess *session, step enums.WizardStep) error {
	switch step {
	case enums.WizardStepBasics:
		if sess.state.StoreID == nil {
			storeID, confirmed, err := s.stores.CreateStore(ctx, sess.userID, sess.state.Basics)
			if err != nil {
				return err
			}
			sess.state.StoreID = &storeID
			sess.derived = confirmed
			s.scheduleAutosaveLocked(sess)
			return nil
		}
		confirmed, err := s.stores.UpdateBasics(ctx, *sess.state.StoreID, sess.state.Basics)
		if err != nil {
			return err
		}
		sess.derived = confirmed
		return nil

	case enums.WizardStepLocation:
		if sess.state.StoreID == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "store has not been created yet")
		}
		if err := s.stores.SaveLocation(ctx, *sess.state.StoreID, sess.state.Location); err != nil {
			return err
		}
		if len(sess.state.Hours) > 0 {
			return s.stores.SaveHours(ctx, *sess.state.StoreID, sess.state.Hours)
		}
		return nil

	case enums.WizardStepPartnership:
		return s.reconcileLocked(ctx, sess)

	case enums.WizardStepPolicies:
		if !sess.state.AgreedToTerms {
			return pkgerrors.New(pkgerrors.CodeValidation, "terms must be accepted to continue")
		}
		return nil

	case enums.WizardStepBranding:
		if sess.state.StoreID == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "store has not been created yet")
		}
		return s.stores.SaveBranding(ctx, *sess.state.StoreID, sess.state.Branding)

	default:
		return nil
	}
}

// reconcileLocked diffs the selected partner set against established
// partnerships. Partial failures downgrade to warnings; the desired end
// state stays reattainable by re-running the step.
func (s *Service) reconcileLocked(ctx context.Context, sess *session) error {
	if sess.state.StoreID == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "store has not been created yet")
	}
	storeID := *sess.state.StoreID

	role := sess.derived.Role()
	if sess.derived.PartnershipType != "" {
		role = sess.derived.PartnershipType.Counterpart()
	}

	established, err := s.partnerships.ListByStore(ctx, storeID, enums.PartnershipStatusPending, enums.PartnershipStatusActive)
	if err != nil {
		return err
	}
	known := make([]partnerships.KnownPartnership, 0, len(established))
	for _, p := range established {
		partnerID := p.ProcessorStoreID
		if partnerID == storeID {
			partnerID = p.ProducerStoreID
		}
		known = append(known, partnerships.KnownPartnership{PartnerStoreID: partnerID, PartnershipID: p.ID})
	}

	result, err := s.reconciler.Reconcile(ctx, storeID, role, sess.state.Partnerships.SelectedPartnerIDs, known)
	if err != nil {
		return err
	}

	sess.lastReconcile = result
	sess.warnings = nil
	if !result.Converged() {
		sess.warnings = append(sess.warnings, "some partnership changes could not be applied; they will be retried on the next pass")
	}
	sess.hasExistingPartnerships = result.Created+result.AlreadyExisted > 0 ||
		len(known) > result.Terminated+result.Failed
	return nil
}

func (s *Service) refreshCandidates(sess *session, storeID uuid.UUID, partnerType enums.PartnerRole, radiusMiles float64) {
	if partnerType == "" {
		return
	}
	ctx := context.Background()
	candidates, err := s.search.Search(ctx, storeID, partnerType, radiusMiles)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithStoreID(ctx, storeID.String()), "partner candidate refresh failed")
		}
		return
	}
	sess.mu.Lock()
	sess.state.Partnerships.Candidates = candidates
	sess.mu.Unlock()
}

// scheduleAutosaveLocked debounces a draft save once the store exists. The
// newest state always supersedes a pending save.
func (s *Service) scheduleAutosaveLocked(sess *session) {
	if sess.state.StoreID == nil || sess.submitted {
		return
	}
	sess.draftStatus = DraftStatusSaving
	userID := sess.userID
	sess.autosave.Trigger(func() {
		s.saveDraft(userID, sess)
	})
}

func (s *Service) saveDraft(userID uuid.UUID, sess *session) {
	sess.mu.Lock()
	snapshot := sess.state
	sess.mu.Unlock()

	ctx := context.Background()
	if err := s.drafts.Save(ctx, userID, &snapshot); err != nil {
		s.metrics.IncAutosaveFailure()
		s.warnPersistence(ctx, err)
		sess.mu.Lock()
		sess.draftStatus = DraftStatusError
		sess.mu.Unlock()
		return
	}
	sess.mu.Lock()
	sess.draftStatus = DraftStatusSaved
	sess.mu.Unlock()
}

// rederiveLocked recomputes the derived configuration and existing
// partnership flag for a freshly opened session.
func (s *Service) rederiveLocked(ctx context.Context, sess *session) {
	sess.derived = Derive(sess.state.Basics.Categories, sess.state.Basics.SetupAnswers, s.catalog)
	if sess.state.StoreID != nil {
		if established, err := s.partnerships.ListByStore(ctx, *sess.state.StoreID, enums.PartnershipStatusPending, enums.PartnershipStatusActive); err == nil {
			sess.hasExistingPartnerships = len(established) > 0
		}
	}
	steps := VisibleSteps(sess.derived, sess.hasExistingPartnerships)
	sess.state.CurrentStepIndex = ClampIndex(sess.state.CurrentStepIndex, steps)
}

func (s *Service) viewLocked(sess *session) *SessionView {
	steps := VisibleSteps(sess.derived, sess.hasExistingPartnerships)
	return &SessionView{
		UserID:             sess.userID,
		State:              sess.state,
		Derived:            sess.derived,
		Steps:              steps,
		CurrentStep:        StepAt(sess.state.CurrentStepIndex, steps),
		DraftStatus:        sess.draftStatus,
		Submitted:          sess.submitted,
		LastReconciliation: sess.lastReconcile,
		Warnings:           sess.warnings,
	}
}

func (s *Service) warnPersistence(ctx context.Context, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(ctx, "draft persistence degraded", err)
}
