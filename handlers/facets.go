package handlers

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"search-settings-service/models"
	"search-settings-service/services"
)

func GetFacets(svc *services.SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		indexName := vars["index_name"]

		var req models.FacetListingRequest
		err := decodeBody(w, r, &req)
		if err != nil && err != io.EOF {
			writeDecodeError(w, err)
			return
		}

		res, err := svc.Facets(r.Context(), indexName, req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
