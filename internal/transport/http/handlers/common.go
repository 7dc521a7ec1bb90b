package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/praneeth552/Jobfinder/internal/domain/model"
	userssvc "github.com/praneeth552/Jobfinder/internal/services/users"
	httperrors "github.com/praneeth552/Jobfinder/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func writeUnavailable(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{Code: code, Message: message})
}

// currentUser returns the reconciled user loaded by the auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	user, ok := userssvc.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return model.User{}, false
	}
	return user, true
}
