package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"search-settings-service/models"
	"search-settings-service/services"
)

func Search(svc *services.SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		indexName := vars["index_name"]

		var data models.SearchReq
		err := decodeBody(w, r, &data)
		if err != nil {
			writeDecodeError(w, err)
			return
		}
		data.IndexName = indexName
		res, err := svc.Search(r.Context(), data)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
