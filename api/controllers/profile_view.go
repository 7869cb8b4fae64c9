package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tandur-id/tandur-backend/api/responses"
	"github.com/tandur-id/tandur-backend/api/validators"
	viewsvc "github.com/tandur-id/tandur-backend/internal/profileviews"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"github.com/tandur-id/tandur-backend/pkg/logger"
)

type profileViewRequest struct {
	PetaniID string `json:"petaniId" validate:"required"`
}

// RecordProfileView stores one farmer profile visit; guests are recorded
// without a viewer identity.
func RecordProfileView(svc viewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile views service unavailable"))
			return
		}

		var payload profileViewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		petaniID, err := uuid.Parse(payload.PetaniID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid petani id"))
			return
		}

		if err := svc.Record(r.Context(), petaniID, optionalCallerID(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "recorded"})
	}
}
