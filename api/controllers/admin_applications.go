package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tandur-id/tandur-backend/api/responses"
	"github.com/tandur-id/tandur-backend/api/validators"
	appsvc "github.com/tandur-id/tandur-backend/internal/applications"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"github.com/tandur-id/tandur-backend/pkg/logger"
)

type reviewApplicationRequest struct {
	ApplicationID string  `json:"applicationId" validate:"required"`
	Status        string  `json:"status" validate:"required"`
	AdminNotes    *string `json:"adminNotes,omitempty"`
}

// AdminListPetaniApplications pages through applications, optionally filtered
// by status.
func AdminListPetaniApplications(svc appsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "applications service unavailable"))
			return
		}

		query := r.URL.Query()
		page, _ := strconv.Atoi(query.Get("page"))
		limit, _ := strconv.Atoi(query.Get("limit"))

		result, err := svc.AdminList(r.Context(), appsvc.ListParams{
			Status: query.Get("status"),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// the listing keeps its own applications/pagination keys
		responses.WriteSuccess(w, result)
	}
}

// AdminReviewPetaniApplication applies one status transition; approval copies
// the application onto the identity and elevates the role.
func AdminReviewPetaniApplication(svc appsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "applications service unavailable"))
			return
		}

		reviewer, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reviewApplicationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		applicationID, err := uuid.Parse(payload.ApplicationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid application id"))
			return
		}

		reviewed, err := svc.Review(r.Context(), reviewer, appsvc.ReviewParams{
			ApplicationID: applicationID,
			Status:        payload.Status,
			AdminNotes:    payload.AdminNotes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reviewed)
	}
}

// AdminDeletePetaniApplication removes one application outright.
func AdminDeletePetaniApplication(svc appsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "applications service unavailable"))
			return
		}

		id, err := pathUUID(chi.URLParam(r, "id"), "application id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.AdminDelete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
