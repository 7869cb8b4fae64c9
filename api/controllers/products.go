package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tandur-id/tandur-backend/api/responses"
	"github.com/tandur-id/tandur-backend/api/validators"
	productsvc "github.com/tandur-id/tandur-backend/internal/products"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"github.com/tandur-id/tandur-backend/pkg/logger"
)

type createProductRequest struct {
	ProyekTaniID  string  `json:"proyekTaniId" validate:"required"`
	NamaProduk    string  `json:"namaProduk" validate:"required"`
	Deskripsi     string  `json:"deskripsi" validate:"required"`
	FotoURL       *string `json:"fotoUrl,omitempty"`
	Harga         int64   `json:"harga" validate:"min=0"`
	Unit          string  `json:"unit" validate:"required"`
	StokTersedia  int     `json:"stokTersedia" validate:"min=0"`
	Status        string  `json:"status,omitempty"`
	EstimasiPanen *string `json:"estimasiPanen,omitempty"`
}

type updateProductRequest struct {
	NamaProduk    *string `json:"namaProduk,omitempty"`
	Deskripsi     *string `json:"deskripsi,omitempty"`
	FotoURL       *string `json:"fotoUrl,omitempty"`
	Harga         *int64  `json:"harga,omitempty"`
	Unit          *string `json:"unit,omitempty"`
	StokTersedia  *int    `json:"stokTersedia,omitempty"`
	Status        *string `json:"status,omitempty"`
	EstimasiPanen *string `json:"estimasiPanen,omitempty"`
}

// ListProducts is the public marketplace listing with type and category
// filters.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		query := r.URL.Query()
		limit, _ := strconv.Atoi(query.Get("limit"))

		products, err := svc.List(r.Context(), productsvc.ListParams{
			Type:     query.Get("type"),
			Category: query.Get("category"),
			Limit:    limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// CreateProduct adds a product under one of the farmer's own projects.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		projectID, err := uuid.Parse(payload.ProyekTaniID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid project id"))
			return
		}

		estimasi, err := parseDate(payload.EstimasiPanen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), caller, productsvc.CreateParams{
			ProyekTaniID:  projectID,
			NamaProduk:    payload.NamaProduk,
			Deskripsi:     payload.Deskripsi,
			FotoURL:       payload.FotoURL,
			Harga:         payload.Harga,
			Unit:          payload.Unit,
			StokTersedia:  payload.StokTersedia,
			Status:        payload.Status,
			EstimasiPanen: estimasi,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateProduct applies a sparse owner-only product merge.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(chi.URLParam(r, "id"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		estimasi, err := parseDate(payload.EstimasiPanen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), caller, productID, productsvc.UpdateParams{
			NamaProduk:    payload.NamaProduk,
			Deskripsi:     payload.Deskripsi,
			FotoURL:       payload.FotoURL,
			Harga:         payload.Harga,
			Unit:          payload.Unit,
			StokTersedia:  payload.StokTersedia,
			Status:        payload.Status,
			EstimasiPanen: estimasi,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct removes an owned product.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(chi.URLParam(r, "id"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), caller, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		// date-only values are also accepted
		parsed, err = time.Parse("2006-01-02", *raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date")
		}
	}
	return &parsed, nil
}
