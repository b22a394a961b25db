package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// PreferenceRepository reads and writes preference rows.
type PreferenceRepository interface {
	PreferenceStore
	SavePreference(ctx context.Context, pref *models.Preference) (*models.Preference, error)
}

// TeamCatalog lists the merchandising teams that exist.
type TeamCatalog interface {
	GetValidTeamIDs(ctx context.Context) ([]string, error)
}

// PreferenceService is the read/update surface of user notification preferences.
type PreferenceService struct {
	repo     PreferenceRepository
	teams    TeamCatalog
	validate *validator.Validate
}

func NewPreferenceService(repo PreferenceRepository, teams TeamCatalog) *PreferenceService {
	return &PreferenceService{repo: repo, teams: teams, validate: newValidator()}
}

// ValidTeams keeps the user teams that exist in the team catalogue.
func (s *PreferenceService) ValidTeams(ctx context.Context, userTeams []string) ([]string, error) {
	valid, err := s.teams.GetValidTeamIDs(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(valid))
	for _, id := range valid {
		known[id] = struct{}{}
	}
	filtered := make([]string, 0, len(userTeams))
	for _, id := range userTeams {
		if _, ok := known[id]; ok {
			filtered = append(filtered, id)
		}
	}
	return filtered, nil
}

// GetPreference returns the preference of userID with every team of the user
// present. Teams the row does not know yet are reported as enabled. A user
// without a row gets the default preference.
func (s *PreferenceService) GetPreference(ctx context.Context, userID string, userTeams []string) (*models.PreferencePayload, error) {
	teams, err := s.ValidTeams(ctx, userTeams)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to load merchandising teams")
		return nil, fmt.Errorf("failed to load merchandising teams: %w", err)
	}

	pref, err := s.repo.GetPreference(ctx, userID)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to get preference")
		return nil, err
	}

	if pref == nil {
		out := &models.PreferencePayload{
			UserID:              userID,
			InAppNotification:   true,
			EmailNotification:   false,
			EmailFrequency:      models.EmailFrequencyNever,
			MerchTeamPreference: make([]models.MerchTeamPreference, 0, len(teams)),
		}
		for _, id := range teams {
			out.MerchTeamPreference = append(out.MerchTeamPreference, models.MerchTeamPreference{TeamID: id, EnableNotification: true})
		}
		return out, nil
	}

	merged := append([]models.MerchTeamPreference(nil), pref.MerchTeamPreference...)
	for _, id := range teams {
		if _, ok := pref.TeamPreference(id); !ok {
			merged = append(merged, models.MerchTeamPreference{TeamID: id, EnableNotification: true})
		}
	}
	return toPayload(pref, merged), nil
}

// SavePreference creates or updates the row of payload.UserID. Incoming team
// flags overwrite stored ones, new teams are appended and stored teams absent
// from the payload are switched off.
func (s *PreferenceService) SavePreference(ctx context.Context, payload *models.PreferencePayload) (*models.PreferencePayload, error) {
	if err := s.validate.Struct(payload); err != nil {
		return nil, newValidationError(err)
	}
	log := logger.Log.WithFields(logrus.Fields{"user_id": payload.UserID, "teams": len(payload.MerchTeamPreference)})

	existing, err := s.repo.GetPreference(ctx, payload.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to get preference")
		return nil, err
	}

	pref := &models.Preference{UserID: payload.UserID}
	if existing != nil {
		pref = existing
	}
	pref.InAppNotification = payload.InAppNotification
	pref.EmailNotification = payload.EmailNotification
	pref.EmailFrequency = payload.EmailFrequency
	pref.MerchTeamPreference = mergeTeams(pref.MerchTeamPreference, payload.MerchTeamPreference)

	saved, err := s.repo.SavePreference(ctx, pref)
	if err != nil {
		log.WithError(err).Error("Failed to save preference")
		return nil, err
	}
	log.Debug("Preference saved")
	return toPayload(saved, saved.MerchTeamPreference), nil
}

func mergeTeams(stored, incoming []models.MerchTeamPreference) []models.MerchTeamPreference {
	flags := make(map[string]bool, len(incoming))
	for _, t := range incoming {
		flags[t.TeamID] = t.EnableNotification
	}

	merged := make([]models.MerchTeamPreference, 0, len(stored)+len(incoming))
	seen := make(map[string]struct{}, len(stored))
	for _, t := range stored {
		enabled, ok := flags[t.TeamID]
		t.EnableNotification = ok && enabled
		merged = append(merged, t)
		seen[t.TeamID] = struct{}{}
	}
	for _, t := range incoming {
		if _, ok := seen[t.TeamID]; ok {
			continue
		}
		seen[t.TeamID] = struct{}{}
		merged = append(merged, models.MerchTeamPreference{TeamID: t.TeamID, EnableNotification: t.EnableNotification})
	}
	return merged
}

func toPayload(pref *models.Preference, teams []models.MerchTeamPreference) *models.PreferencePayload {
	out := &models.PreferencePayload{
		UserID:              pref.UserID,
		InAppNotification:   pref.InAppNotification,
		EmailNotification:   pref.EmailNotification,
		EmailFrequency:      pref.EmailFrequency,
		MerchTeamPreference: make([]models.MerchTeamPreference, 0, len(teams)),
	}
	for _, t := range teams {
		out.MerchTeamPreference = append(out.MerchTeamPreference, models.MerchTeamPreference{TeamID: t.TeamID, EnableNotification: t.EnableNotification})
	}
	return out
}
