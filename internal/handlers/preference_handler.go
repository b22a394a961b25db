package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/Dias221467/Activity_Notifier/internal/services"
	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"github.com/Dias221467/Activity_Notifier/pkg/middleware"
	"github.com/gorilla/mux"
)

type PreferenceHandler struct {
	Service *services.PreferenceService
}

func NewPreferenceHandler(service *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{Service: service}
}

// GET /api/notification/preference/read/{userId}
func (h *PreferenceHandler) GetPreferenceHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID := mux.Vars(r)["userId"]
	if userID != claims.Email {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	pref, err := h.Service.GetPreference(r.Context(), userID, claims.MerchandisingTeams)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to get preference")
		http.Error(w, "Failed to get preference", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

// POST /api/notification/preference/save
func (h *PreferenceHandler) SavePreferenceHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload models.PreferencePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if payload.UserID == "" {
		payload.UserID = claims.Email
	}
	if payload.UserID != claims.Email {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	saved, err := h.Service.SavePreference(r.Context(), &payload)
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": verr.Error(), "fields": verr.Fields})
		return
	case err != nil:
		logger.Log.WithError(err).WithField("user_id", payload.UserID).Error("Failed to save preference")
		http.Error(w, "Failed to save preference", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
