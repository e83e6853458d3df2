package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"inksight/pkg/models"
)

// errorBody is the JSON error envelope every non-2xx response carries.
type errorBody struct {
	Detail string `json:"detail"`
}

// statusForKind maps an error classification onto its HTTP status code.
// This is the only place in the repository that knows both vocabularies.
func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.KindAuthMissing, models.KindAuthInvalid:
		return http.StatusUnauthorized
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindForbidden:
		return http.StatusForbidden
	case models.KindBadRequest, models.KindPrecondition:
		return http.StatusBadRequest
	case models.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	detail := "internal server error"

	var apiErr *models.Error
	if errors.As(err, &apiErr) {
		status = statusForKind(apiErr.Kind)
		detail = apiErr.Error()
	}

	writeJSON(w, status, errorBody{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
