package handlers

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"search-settings-service/models"
	"search-settings-service/services"
)

// PostIndexSettings detects and saves the settings of an index. The body is
// an optional attributes object; without it a sample document of the index
// is used.
func PostIndexSettings(svc *services.SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		indexName := mux.Vars(r)["index_name"]

		var attributes models.Attributes
		err := decodeBody(w, r, &attributes)
		if err != nil && err != io.EOF {
			writeDecodeError(w, err)
			return
		}

		settings, err := svc.DetectAndSave(r.Context(), indexName, attributes)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, settings)
	}
}

func GetIndexSettings(svc *services.SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		indexName := mux.Vars(r)["index_name"]

		settings, err := svc.Load(indexName)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}

func ApplyIndexSettings(svc *services.SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		indexName := mux.Vars(r)["index_name"]

		if err := svc.Apply(r.Context(), indexName); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Index settings applied successfully"})
	}
}

func GetIndexSettingsStatus(svc *services.SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		indexName := mux.Vars(r)["index_name"]

		status, err := svc.IndexStatus(r.Context(), indexName)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}
