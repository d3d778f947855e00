package handlers

import (
	"net/http"

	"search-settings-service/services"
)

// GetStatus reports the sync state of every index with saved settings.
func GetStatus(svc *services.SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses, err := svc.Status(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statuses)
	}
}
