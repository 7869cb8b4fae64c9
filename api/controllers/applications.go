package controllers

import (
	"net/http"

	"github.com/tandur-id/tandur-backend/api/responses"
	"github.com/tandur-id/tandur-backend/api/validators"
	appsvc "github.com/tandur-id/tandur-backend/internal/applications"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"github.com/tandur-id/tandur-backend/pkg/logger"
)

type petaniApplicationRequest struct {
	Nama              string   `json:"nama" validate:"required"`
	Username          string   `json:"username" validate:"required"`
	Bio               string   `json:"bio" validate:"required"`
	Lokasi            string   `json:"lokasi" validate:"required"`
	LinkWhatsapp      string   `json:"linkWhatsapp" validate:"required,wa_link"`
	AlasanMenjadi     string   `json:"alasanMenjadi" validate:"required"`
	PengalamanBertani string   `json:"pengalamanBertani" validate:"required"`
	JenisKomoditas    string   `json:"jenisKomoditas" validate:"required"`
	LuasLahan         string   `json:"luasLahan" validate:"required"`
	LokasiLahan       string   `json:"lokasiLahan" validate:"required"`
	FotoProfil        string   `json:"fotoProfil,omitempty"`
	FotoKTP           string   `json:"fotoKtp" validate:"required"`
	SertifikatLahan   []string `json:"sertifikatLahan,omitempty"`
}

// SubmitPetaniApplication accepts one farmer application per account.
func SubmitPetaniApplication(svc appsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "applications service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload petaniApplicationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := svc.Submit(r.Context(), caller, appsvc.Submission{
			Nama:              payload.Nama,
			Username:          payload.Username,
			Bio:               payload.Bio,
			Lokasi:            payload.Lokasi,
			LinkWhatsapp:      payload.LinkWhatsapp,
			AlasanMenjadi:     payload.AlasanMenjadi,
			PengalamanBertani: payload.PengalamanBertani,
			JenisKomoditas:    payload.JenisKomoditas,
			LuasLahan:         payload.LuasLahan,
			LokasiLahan:       payload.LokasiLahan,
			FotoProfil:        payload.FotoProfil,
			FotoKTP:           payload.FotoKTP,
			SertifikatLahan:   payload.SertifikatLahan,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"id": id})
	}
}

// PetaniApplicationStatus returns the caller's own application, if any.
func PetaniApplicationStatus(svc appsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "applications service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.OwnStatus(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
