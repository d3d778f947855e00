package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"search-settings-service/services"
)

// maxBodyBytes caps every request body the handlers decode.
const maxBodyBytes = 1 << 20

// decodeBody decodes the JSON request body into v. An empty body yields
// io.EOF.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// writeDecodeError reports a body that could not be decoded.
func writeDecodeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	jsonResponse, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Error converting response to JSON: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(jsonResponse)
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrModelNotFound),
		errors.Is(err, services.ErrSettingsNotFound),
		errors.Is(err, services.ErrIndexNotFound),
		errors.Is(err, services.ErrNoSample):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidFilter),
		errors.Is(err, services.ErrInvalidIndexName):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
