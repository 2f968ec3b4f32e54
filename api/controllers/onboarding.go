package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/pasturelink/marketplace-backend/api/middleware"
	"github.com/pasturelink/marketplace-backend/api/responses"
	"github.com/pasturelink/marketplace-backend/api/validators"
	"github.com/pasturelink/marketplace-backend/internal/onboarding"
	"github.com/pasturelink/marketplace-backend/pkg/enums"
	pkgerrors "github.com/pasturelink/marketplace-backend/pkg/errors"
	"github.com/pasturelink/marketplace-backend/pkg/logger"
	"github.com/pasturelink/marketplace-backend/pkg/types"
)

func wizardUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}

// WizardStart opens or resumes the caller's onboarding session. Recovers a
// saved draft when a fresh one exists.
func WizardStart(svc *onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := wizardUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.StartOrResume(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// WizardDiscardDraft drops the saved draft and resets the session.
func WizardDiscardDraft(svc *onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := wizardUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.DiscardDraft(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type wizardBasicsRequest struct {
	Name         string            `json:"name" validate:"required,min=1"`
	Description  string            `json:"description,omitempty"`
	Categories   []string          `json:"categories" validate:"required,min=1"`
	SetupAnswers map[string]string `json:"setup_answers,omitempty"`
}

// WizardApplyBasics updates identity and category answers. The response
// carries the re-derived configuration and the re-sequenced step list.
func WizardApplyBasics(svc *onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := wizardUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload wizardBasicsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.ApplyBasics(r.Context(), userID, onboarding.StoreBasics{
			Name:         payload.Name,
			Description:  payload.Description,
			Categories:   payload.Categories,
			SetupAnswers: payload.SetupAnswers,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type wizardLocationRequest struct {
	BusinessAddress       *types.Address        `json:"business_address" validate:"required"`
	BillingAddress        *types.Address        `json:"billing_address,omitempty"`
	BillingSameAsBusiness bool                  `json:"billing_same_as_business"`
	SellingMethods        []enums.SellingMethod `json:"selling_methods,omitempty"`
	DeliveryRadiusMiles   float64               `json:"delivery_radius_miles,omitempty" validate:"omitempty,gt=0"`
}

func WizardApplyLocation(svc *onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := wizardUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload wizardLocationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.ApplyLocation(r.Context(), userID, onboarding.LocationLogistics{
			BusinessAddress:       payload.BusinessAddress,
			BillingAddress:        payload.BillingAddress,
			BillingSameAsBusiness: payload.BillingSameAsBusiness,
			SellingMethods:        payload.SellingMethods,
			DeliveryRadiusMiles:   payload.DeliveryRadiusMiles,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type wizardHoursRequest struct {
	Hours types.WeekHours `json:"hours" validate:"required"`
}

func WizardApplyHours(svc *onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := wizardUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload wizardHoursRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := payload.Hours.Validate(); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "open hours"))
			return
		}
		view, err := svc.ApplyHours(r.Context(), userID, payload.Hours)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type wizardBrandingRequest struct {
	LogoURL     *string  `json:"logo_url,omitempty"`
	BannerURL   *string  `json:"banner_url,omitempty"`
	GalleryURLs []string `json:"gallery_urls,omitempty"`
	VideoURL    *string  `json:"video_url,omitempty"`
}

func WizardApplyBranding(svc *onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := wizardUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload wizardBrandingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.ApplyBranding(r.Context(), userID, onboarding.Branding{
			LogoURL:     payload.LogoURL,
			BannerURL:   payload.BannerURL,
			GalleryURLs: payload.GalleryURLs,
			VideoURL:    payload.VideoURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type wizardPoliciesRequest struct {
	Agreed bool `json:"agreed"`
}

func WizardAgreeToTerms(svc *onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := wizardUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload wizardPoliciesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.AgreeToTerms(r.Context(), userID, payload.Agreed)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type wizardPartnersRequest struct {
	RadiusMiles        float64     `json:"radius_miles,omitempty" validate:"omitempty,gt=0"`
	SelectedPartnerIDs []uuid.UUID `json:"selected_partner_ids,omitempty"`
}

// WizardApplyPartnerSelection replaces the desired partner set. Nothing is
// reconciled here; that happens when the partnership step is advanced.
func WizardApplyPartnerSelection(svc *onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := wizardUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload wizardPartnersRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.ApplyPartnerSelection(r.Context(), userID, payload.RadiusMiles, payload.SelectedPartnerIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func WizardSearchPartners(svc *onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := wizardUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var radius float64
		if raw := r.URL.Query().Get("radius_miles"); raw != "" {
			radius, err = strconv.ParseFloat(raw, 64)
			if err != nil || radius <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "radius_miles must be a positive number"))
				return
			}
		}
		candidates, err := svc.SearchPartners(r.Context(), userID, radius)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"candidates": candidates})
	}
}

func WizardAdvance(svc *onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := wizardUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Advance(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func WizardRetreat(svc *onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := wizardUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Retreat(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type wizardJumpRequest struct {
	StepIndex int `json:"step_index" validate:"gte=0"`
}

func WizardJump(svc *onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := wizardUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload wizardJumpRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.JumpTo(r.Context(), userID, payload.StepIndex)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func WizardSubmit(svc *onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := wizardUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Submit(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func WizardExit(svc *onboarding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := wizardUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Exit(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "closed"})
	}
}
