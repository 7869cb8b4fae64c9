package controllers

import (
	"net/http"

	"github.com/tandur-id/tandur-backend/api/responses"
	"github.com/tandur-id/tandur-backend/api/validators"
	chatsvc "github.com/tandur-id/tandur-backend/internal/chatbot"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"github.com/tandur-id/tandur-backend/pkg/logger"
)

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

// Chat answers a visitor question with live platform context.
func Chat(svc chatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chatbot service unavailable"))
			return
		}

		var payload chatRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		answer, err := svc.Ask(r.Context(), payload.Message)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, answer)
	}
}
