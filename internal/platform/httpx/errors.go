// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/trainhub/trainhub/internal/shared"
)

// RespondError maps domain errors to HTTP responses.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrConflict):
		Error(w, http.StatusBadRequest, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrAuthentication):
		Error(w, http.StatusUnauthorized, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrPermission):
		Error(w, http.StatusForbidden, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, shared.UserSafeMessage(err))
	default:
		if logger != nil {
			logger.Error("unhandled error", slog.Any("error", err))
		}
		Error(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
	}
}
