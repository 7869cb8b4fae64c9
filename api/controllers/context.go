package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tandur-id/tandur-backend/api/middleware"
	pkgerrors "github.com/tandur-id/tandur-backend/pkg/errors"
)

// callerID extracts the authenticated caller from the request context.
func callerID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

// optionalCallerID returns uuid.Nil for guests.
func optionalCallerID(r *http.Request) uuid.UUID {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// pathUUID parses a chi URL parameter as a UUID.
func pathUUID(raw, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return id, nil
}
