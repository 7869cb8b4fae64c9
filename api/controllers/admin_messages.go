package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tandur-id/tandur-backend/api/responses"
	"github.com/tandur-id/tandur-backend/api/validators"
	cssvc "github.com/tandur-id/tandur-backend/internal/cschat"
	usersvc "github.com/tandur-id/tandur-backend/internal/users"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
	"github.com/tandur-id/tandur-backend/pkg/logger"
)

type adminReplyRequest struct {
	MessageID string `json:"messageId" validate:"required"`
	Reply     string `json:"reply" validate:"required"`
}

// AdminListMessages returns every support message, newest first, with sender
// identity.
func AdminListMessages(svc cssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cs chat service unavailable"))
			return
		}

		messages, err := svc.AdminList(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, messages)
	}
}

// AdminReplyMessage answers one support message. The reply is attributed to
// the signed-in admin's email.
func AdminReplyMessage(svc cssvc.Service, users usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || users == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cs chat service unavailable"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		admin, err := users.Profile(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminReplyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		messageID, err := uuid.Parse(payload.MessageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid message id"))
			return
		}

		replied, err := svc.AdminReply(r.Context(), admin.Email, messageID, payload.Reply)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, replied)
	}
}

// AdminMarkMessageRead flags a support message as read.
func AdminMarkMessageRead(svc cssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cs chat service unavailable"))
			return
		}

		messageID, err := pathUUID(chi.URLParam(r, "id"), "message id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.AdminMarkRead(r.Context(), messageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}
