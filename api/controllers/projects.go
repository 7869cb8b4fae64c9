package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tandur-id/tandur-backend/api/responses"
	"github.com/tandur-id/tandur-backend/api/validators"
	projectsvc "github.com/tandur-id/tandur-backend/internal/projects"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"github.com/tandur-id/tandur-backend/pkg/logger"
)

type createProjectRequest struct {
	NamaProyek  string `json:"namaProyek" validate:"required,max=100"`
	Deskripsi   string `json:"deskripsi" validate:"required,max=500"`
	LokasiLahan string `json:"lokasiLahan" validate:"required,max=200"`
}

type updateProjectRequest struct {
	NamaProyek  *string `json:"namaProyek,omitempty" validate:"omitempty,max=100"`
	Deskripsi   *string `json:"deskripsi,omitempty" validate:"omitempty,max=500"`
	LokasiLahan *string `json:"lokasiLahan,omitempty" validate:"omitempty,max=200"`
	Status      *string `json:"status,omitempty"`
}

type updateFaseRequest struct {
	Nama   *string  `json:"nama,omitempty"`
	Cerita *string  `json:"cerita,omitempty"`
	Gambar []string `json:"gambar,omitempty"`
}

// CreateProject opens a new seasonal project for the farmer, seeded with the
// default season phases.
func CreateProject(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projects service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProjectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.Create(r.Context(), caller, projectsvc.CreateParams{
			NamaProyek:  payload.NamaProyek,
			Deskripsi:   payload.Deskripsi,
			LokasiLahan: payload.LokasiLahan,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, project)
	}
}

// ProjectDetail is the public project page: project, farmer, phases, products.
func ProjectDetail(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projects service unavailable"))
			return
		}

		projectID, err := pathUUID(chi.URLParam(r, "id"), "project id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Detail(r.Context(), projectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// UpdateProject applies a sparse owner-only project merge.
func UpdateProject(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projects service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		projectID, err := pathUUID(chi.URLParam(r, "id"), "project id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProjectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.Update(r.Context(), caller, projectID, projectsvc.UpdateParams{
			NamaProyek:  payload.NamaProyek,
			Deskripsi:   payload.Deskripsi,
			LokasiLahan: payload.LokasiLahan,
			Status:      payload.Status,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}

// DeleteProject removes an owned project.
func DeleteProject(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projects service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		projectID, err := pathUUID(chi.URLParam(r, "id"), "project id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), caller, projectID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GetProjectFase returns one season phase scoped to its project.
func GetProjectFase(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projects service unavailable"))
			return
		}

		projectID, err := pathUUID(chi.URLParam(r, "id"), "project id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		faseID, err := pathUUID(chi.URLParam(r, "faseId"), "fase id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fase, err := svc.GetFase(r.Context(), projectID, faseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fase)
	}
}

// UpdateProjectFase edits one season phase's story and media.
func UpdateProjectFase(svc projectsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "projects service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		projectID, err := pathUUID(chi.URLParam(r, "id"), "project id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		faseID, err := pathUUID(chi.URLParam(r, "faseId"), "fase id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateFaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fase, err := svc.UpdateFase(r.Context(), caller, projectID, faseID, projectsvc.UpdateFaseParams{
			Nama:   payload.Nama,
			Cerita: payload.Cerita,
			Gambar: payload.Gambar,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fase)
	}
}
