package onboarding

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pasturelink/marketplace-backend/internal/partnersearch"
	"github.com/pasturelink/marketplace-backend/pkg/enums"
	"github.com/pasturelink/marketplace-backend/pkg/types"
)

// StoreBasics holds the first wizard step: identity plus category answers.
type StoreBasics struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Categories  []string          `json:"categories"`
	// SetupAnswers maps a category name to the chosen flow option key.
	SetupAnswers map[string]string `json:"setup_answers,omitempty"`
}

// LocationLogistics holds addresses and fulfillment settings.
type LocationLogistics struct {
	BusinessAddress       *types.Address        `json:"business_address,omitempty"`
	BillingAddress        *types.Address        `json:"billing_address,omitempty"`
	BillingSameAsBusiness bool                  `json:"billing_same_as_business"`
	SellingMethods        []enums.SellingMethod `json:"selling_methods,omitempty"`
	DeliveryRadiusMiles   float64               `json:"delivery_radius_miles,omitempty"`
}

// Branding holds media URLs filled in progressively as uploads complete.
type Branding struct {
	LogoURL     *string  `json:"logo_url,omitempty"`
	BannerURL   *string  `json:"banner_url,omitempty"`
	GalleryURLs []string `json:"gallery_urls,omitempty"`
	VideoURL    *string  `json:"video_url,omitempty"`
}

// PartnershipSelection holds the partnership step's working set.
type PartnershipSelection struct {
	RadiusMiles        float64                          `json:"radius_miles,omitempty"`
	SelectedPartnerIDs []uuid.UUID                      `json:"selected_partner_ids,omitempty"`
	PartnerType        enums.PartnerRole                `json:"partner_type,omitempty"`
	Candidates         []partnersearch.PotentialPartner `json:"candidates,omitempty"`
}

// WizardState is the single mutable aggregate for one onboarding session.
type WizardState struct {
	StoreID          *uuid.UUID             `json:"store_id,omitempty"`
	CurrentStepIndex int                    `json:"current_step_index"`
	Basics           StoreBasics            `json:"basics"`
	Location         LocationLogistics      `json:"location"`
	Hours            types.WeekHours        `json:"hours,omitempty"`
	Branding         Branding               `json:"branding"`
	Partnerships     PartnershipSelection   `json:"partnerships"`
	AgreedToTerms    bool                   `json:"agreed_to_terms"`
	SubmissionID     *uuid.UUID             `json:"submission_id,omitempty"`
	SubmissionStatus enums.SubmissionStatus `json:"submission_status,omitempty"`
	SubmittedAt      *time.Time             `json:"submitted_at,omitempty"`
}

// DerivedStoreConfig is recomputed from category answers and never persisted
// on its own. The store service confirms an authoritative copy on creation.
type DerivedStoreConfig struct {
	StoreType         enums.StoreType   `json:"store_type"`
	CanProduce        bool              `json:"can_produce"`
	CanProcess        bool              `json:"can_process"`
	CanRetail         bool              `json:"can_retail"`
	NeedsPartnerships bool              `json:"needs_partnerships"`
	PartnershipType   enums.PartnerRole `json:"partnership_type,omitempty"`
}

// Role maps the derived configuration to the side of a partnership the store
// occupies. Hybrid stores initiate as producers.
func (c DerivedStoreConfig) Role() enums.PartnerRole {
	if c.CanProcess && !c.CanProduce {
		return enums.PartnerRoleProcessor
	}
	return enums.PartnerRoleProducer
}

// Draft is a durably persisted, user-owned snapshot of wizard state.
type Draft struct {
	OwnerUserID uuid.UUID   `json:"owner_user_id"`
	SavedAt     time.Time   `json:"saved_at"`
	State       WizardState `json:"state"`
}

// DraftStore persists in-progress wizard state per user.
type DraftStore interface {
	// Save stamps SavedAt and the owner, replacing any prior draft.
	Save(ctx context.Context, ownerUserID uuid.UUID, state *WizardState) error
	// Load returns nil when no draft exists, when the stored owner does not
	// match, or when the draft is older than the retention window. Stale
	// drafts are cleared as a side effect.
	Load(ctx context.Context, ownerUserID uuid.UUID) (*Draft, error)
	// Clear removes the caller's draft.
	Clear(ctx context.Context, ownerUserID uuid.UUID) error
}

// DraftStatus reflects the most recent autosave attempt.
type DraftStatus string

const (
	DraftStatusIdle   DraftStatus = "idle"
	DraftStatusSaving DraftStatus = "saving"
	DraftStatusSaved  DraftStatus = "saved"
	DraftStatusError  DraftStatus = "error"
)
