package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/Activity_Notifier/internal/models"
)

// PreferenceGate applies the per merchandising team opt-out.
type PreferenceGate struct {
	store PreferenceStore
}

func NewPreferenceGate(store PreferenceStore) *PreferenceGate {
	return &PreferenceGate{store: store}
}

// Load fetches the preference of userID once per candidate. The same row is
// reused for the team check and the email flag. A missing row is nil.
func (g *PreferenceGate) Load(ctx context.Context, userID string) (*models.Preference, error) {
	pref, err := g.store.GetPreference(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get preference of %s: %w", userID, err)
	}
	return pref, nil
}

// Enabled reports whether notifications for merchTeamID are switched on.
// Without a team there is nothing to gate. A user with no row, or no entry for
// the team, is opted out.
func Enabled(pref *models.Preference, merchTeamID string) bool {
	if merchTeamID == "" {
		return true
	}
	if pref == nil {
		return false
	}
	team, ok := pref.TeamPreference(merchTeamID)
	return ok && team.EnableNotification
}

// WantsEmail reports whether the user opted into email notifications.
func WantsEmail(pref *models.Preference) bool {
	return pref != nil && pref.EmailNotification
}
