package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tandur-id/tandur-backend/api/responses"
	"github.com/tandur-id/tandur-backend/api/validators"
	feedsvc "github.com/tandur-id/tandur-backend/internal/feed"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"github.com/tandur-id/tandur-backend/pkg/logger"
)

type createUpdateRequest struct {
	ProyekTaniID string   `json:"proyekTaniId" validate:"required"`
	Judul        string   `json:"judul" validate:"required"`
	Deskripsi    string   `json:"deskripsi" validate:"required"`
	FotoURL      []string `json:"fotoUrl,omitempty"`
}

type editUpdateRequest struct {
	Judul     *string  `json:"judul,omitempty"`
	Deskripsi *string  `json:"deskripsi,omitempty"`
	FotoURL   []string `json:"fotoUrl,omitempty"`
}

type likeRequest struct {
	FarmingUpdateID string `json:"farmingUpdateId" validate:"required"`
}

type commentRequest struct {
	FarmingUpdateID string `json:"farmingUpdateId" validate:"required"`
	Content         string `json:"content" validate:"required"`
}

// ListFeed returns the community feed; guests see it without like ownership.
func ListFeed(svc feedsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}

		query := r.URL.Query()
		limit, _ := strconv.Atoi(query.Get("limit"))
		viewer := optionalCallerID(r)

		entries, err := svc.List(r.Context(), viewer, query.Get("sort"), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// CreateFarmingUpdate posts a progress update under an owned project.
func CreateFarmingUpdate(svc feedsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		projectID, err := uuid.Parse(payload.ProyekTaniID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid project id"))
			return
		}

		update, err := svc.CreateUpdate(r.Context(), caller, feedsvc.CreateUpdateParams{
			ProyekTaniID: projectID,
			Judul:        payload.Judul,
			Deskripsi:    payload.Deskripsi,
			FotoURL:      payload.FotoURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, update)
	}
}

// EditFarmingUpdate applies a sparse owner-only edit to an update.
func EditFarmingUpdate(svc feedsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updateID, err := pathUUID(chi.URLParam(r, "id"), "update id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload editUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update, err := svc.UpdateUpdate(r.Context(), caller, updateID, feedsvc.UpdateUpdateParams{
			Judul:     payload.Judul,
			Deskripsi: payload.Deskripsi,
			FotoURL:   payload.FotoURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, update)
	}
}

// DeleteFarmingUpdate removes an owned update.
func DeleteFarmingUpdate(svc feedsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updateID, err := pathUUID(chi.URLParam(r, "id"), "update id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteUpdate(r.Context(), caller, updateID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// LikeUpdate records one like; double likes conflict.
func LikeUpdate(svc feedsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload likeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updateID, err := uuid.Parse(payload.FarmingUpdateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid update id"))
			return
		}

		if err := svc.Like(r.Context(), caller, updateID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "liked"})
	}
}

// UnlikeUpdate removes the caller's like.
func UnlikeUpdate(svc feedsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload likeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updateID, err := uuid.Parse(payload.FarmingUpdateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid update id"))
			return
		}

		if err := svc.Unlike(r.Context(), caller, updateID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "unliked"})
	}
}

// CreateComment posts a comment under an update.
func CreateComment(svc feedsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload commentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updateID, err := uuid.Parse(payload.FarmingUpdateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid update id"))
			return
		}

		comment, err := svc.Comment(r.Context(), caller, updateID, payload.Content)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, comment)
	}
}

// ListComments returns an update's comments with their authors.
func ListComments(svc feedsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "feed service unavailable"))
			return
		}

		updateID, err := pathUUID(chi.URLParam(r, "updateId"), "update id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		comments, err := svc.Comments(r.Context(), updateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, comments)
	}
}
