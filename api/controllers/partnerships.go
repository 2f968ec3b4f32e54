package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pasturelink/marketplace-backend/api/responses"
	"github.com/pasturelink/marketplace-backend/api/validators"
	"github.com/pasturelink/marketplace-backend/internal/partnerships"
	"github.com/pasturelink/marketplace-backend/pkg/enums"
	pkgerrors "github.com/pasturelink/marketplace-backend/pkg/errors"
	"github.com/pasturelink/marketplace-backend/pkg/logger"
)

// PartnershipList returns a store's partnerships, optionally filtered by
// status query params.
func PartnershipList(svc partnerships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partnership service unavailable"))
			return
		}

		storeID, err := uuid.Parse(chi.URLParam(r, "storeId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id"))
			return
		}

		var statuses []enums.PartnershipStatus
		for _, raw := range r.URL.Query()["status"] {
			status, err := enums.ParsePartnershipStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			statuses = append(statuses, status)
		}

		list, err := svc.ListByStore(r.Context(), storeID, statuses...)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"partnerships": list})
	}
}

type partnershipTerminateRequest struct {
	Reason string `json:"reason,omitempty"`
}

// PartnershipTerminate ends a partnership with an optional reason.
func PartnershipTerminate(svc partnerships.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "partnership service unavailable"))
			return
		}

		partnershipID, err := uuid.Parse(chi.URLParam(r, "partnershipId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid partnership id"))
			return
		}

		var payload partnershipTerminateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Terminate(r.Context(), partnershipID, payload.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "terminated"})
	}
}
