package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/Dias221467/Activity_Notifier/internal/services"
	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"github.com/Dias221467/Activity_Notifier/pkg/middleware"
	"github.com/gorilla/mux"
)

const defaultHistoryLimit = 50

// ActivitySaver persists and fans out activities.
type ActivitySaver interface {
	SaveActivity(ctx context.Context, activity *models.Activity) (*models.Activity, error)
}

// ActivityHistory lists past activities of a resource.
type ActivityHistory interface {
	GetResourceActivities(ctx context.Context, resourceName, resourceID string, limit int) ([]models.Activity, error)
}

type ActivityHandler struct {
	Service ActivitySaver
	History ActivityHistory
}

func NewActivityHandler(service ActivitySaver, history ActivityHistory) *ActivityHandler {
	return &ActivityHandler{Service: service, History: history}
}

// POST /api/activity
func (h *ActivityHandler) SaveActivityHandler(w http.ResponseWriter, r *http.Request) {
	var activity models.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		logger.Log.WithError(err).Warn("Invalid activity payload")
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request payload"})
		return
	}
	defer r.Body.Close()

	if activity.ActivityBy == "" {
		if claims := middleware.GetUserFromContext(r.Context()); claims != nil {
			activity.ActivityBy = claims.Email
		}
	}

	saved, err := h.Service.SaveActivity(r.Context(), &activity)
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": verr.Error(), "fields": verr.Fields})
		return
	case err != nil:
		logger.Log.WithError(err).WithField("activity_type", activity.Type).Error("Failed to process activity")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Unable to process request", "activity": saved})
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// GET /api/activity/{resourceName}/{resourceId}?limit=
func (h *ActivityHandler) GetResourceActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	activities, err := h.History.GetResourceActivities(r.Context(), vars["resourceName"], vars["resourceId"], limit)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch activities")
		http.Error(w, "Failed to fetch activities", http.StatusInternalServerError)
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	writeJSON(w, http.StatusOK, activities)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
