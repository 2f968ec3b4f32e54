package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pasturelink/marketplace-backend/api/responses"
	pkgerrors "github.com/pasturelink/marketplace-backend/pkg/errors"
	"github.com/pasturelink/marketplace-backend/pkg/logger"
)

const userIDHeader = "X-User-Id"

// Identity resolves the calling user from the trusted gateway header.
// Authentication happens upstream; requests without a valid user id are
// rejected here.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(userIDHeader)
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing"))
				return
			}
			userID, err := uuid.Parse(raw)
			if err != nil || userID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid user identity"))
				return
			}

			ctx := WithUserID(r.Context(), userID.String())
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
