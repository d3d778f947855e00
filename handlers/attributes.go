package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"search-settings-service/services"
)

// GetIndexAttributesHandler lists the mapped attributes of an index.
func GetIndexAttributesHandler(svc *services.SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		indexName := vars["index_name"]

		attributes, err := svc.Attributes(r.Context(), indexName)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, attributes)
	}
}
