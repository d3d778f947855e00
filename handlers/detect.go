package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"search-settings-service/models"
	"search-settings-service/services"
)

// DetectSettings infers settings from the attributes object in the body.
func DetectSettings(svc *services.SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var attributes models.Attributes
		err := decodeBody(w, r, &attributes)
		if err != nil {
			writeDecodeError(w, err)
			return
		}
		if attributes == nil {
			http.Error(w, "attributes object required", http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, svc.Detect(attributes))
	}
}

// GetModelSettings creates the settings of a known model.
func GetModelSettings(svc *services.SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		model := mux.Vars(r)["model"]

		settings, err := svc.Create(r.Context(), model)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}
