package services

import (
	"context"
	"testing"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTeams struct {
	ids []string
	err error
}

func (f fakeTeams) GetValidTeamIDs(context.Context) ([]string, error) {
	return f.ids, f.err
}

func teamsOf(p *models.PreferencePayload) map[string]bool {
	out := map[string]bool{}
	for _, t := range p.MerchTeamPreference {
		out[t.TeamID] = t.EnableNotification
	}
	return out
}

func TestGetPreferenceDefault(t *testing.T) {
	svc := NewPreferenceService(newFakePreferenceStore(), fakeTeams{ids: []string{"T1", "T2"}})

	got, err := svc.GetPreference(context.Background(), "u@x.io", []string{"T1", "GONE"})
	require.NoError(t, err)

	assert.Equal(t, "u@x.io", got.UserID)
	assert.True(t, got.InAppNotification)
	assert.False(t, got.EmailNotification)
	assert.Equal(t, models.EmailFrequencyNever, got.EmailFrequency)
	assert.Equal(t, map[string]bool{"T1": true}, teamsOf(got))
}

func TestGetPreferenceAddsUnknownTeamsEnabled(t *testing.T) {
	store := newFakePreferenceStore()
	store.prefs["u@x.io"] = &models.Preference{
		UserID:              "u@x.io",
		EmailNotification:   true,
		MerchTeamPreference: []models.MerchTeamPreference{{TeamID: "T1", EnableNotification: false}},
	}
	svc := NewPreferenceService(store, fakeTeams{ids: []string{"T1", "T2"}})

	got, err := svc.GetPreference(context.Background(), "u@x.io", []string{"T1", "T2"})
	require.NoError(t, err)

	assert.True(t, got.EmailNotification)
	assert.Equal(t, map[string]bool{"T1": false, "T2": true}, teamsOf(got))
}

func TestGetPreferenceErrors(t *testing.T) {
	svc := NewPreferenceService(newFakePreferenceStore(), fakeTeams{err: errBoom})
	_, err := svc.GetPreference(context.Background(), "u@x.io", nil)
	assert.ErrorIs(t, err, errBoom)

	store := newFakePreferenceStore()
	store.failFor = map[string]bool{"u@x.io": true}
	svc = NewPreferenceService(store, fakeTeams{})
	_, err = svc.GetPreference(context.Background(), "u@x.io", nil)
	assert.ErrorIs(t, err, errBoom)
}

func TestSavePreferenceMergesTeams(t *testing.T) {
	store := newFakePreferenceStore()
	store.prefs["u@x.io"] = &models.Preference{
		UserID: "u@x.io",
		MerchTeamPreference: []models.MerchTeamPreference{
			{TeamID: "T1", EnableNotification: true},
			{TeamID: "T2", EnableNotification: true},
		},
	}
	svc := NewPreferenceService(store, fakeTeams{})

	got, err := svc.SavePreference(context.Background(), &models.PreferencePayload{
		UserID:            "u@x.io",
		InAppNotification: true,
		EmailNotification: true,
		EmailFrequency:    models.EmailFrequencyDaily,
		MerchTeamPreference: []models.MerchTeamPreference{
			{TeamID: "T1", EnableNotification: true},
			{TeamID: "T3", EnableNotification: false},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"T1": true, "T2": false, "T3": false}, teamsOf(got))
	assert.Equal(t, models.EmailFrequencyDaily, got.EmailFrequency)
	assert.True(t, store.prefs["u@x.io"].EmailNotification)
}

func TestSavePreferenceCreatesRow(t *testing.T) {
	store := newFakePreferenceStore()
	svc := NewPreferenceService(store, fakeTeams{})

	got, err := svc.SavePreference(context.Background(), &models.PreferencePayload{
		UserID:              "new@x.io",
		MerchTeamPreference: []models.MerchTeamPreference{{TeamID: "T1", EnableNotification: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"T1": true}, teamsOf(got))
	require.Contains(t, store.prefs, "new@x.io")
}

func TestSavePreferenceValidation(t *testing.T) {
	store := newFakePreferenceStore()
	svc := NewPreferenceService(store, fakeTeams{})

	_, err := svc.SavePreference(context.Background(), &models.PreferencePayload{EmailFrequency: 7})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "userId")
	assert.Contains(t, verr.Fields, "emailFrequency")

	_, err = svc.SavePreference(context.Background(), &models.PreferencePayload{
		UserID:              "u@x.io",
		MerchTeamPreference: []models.MerchTeamPreference{{TeamID: ""}},
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "teamId")
	assert.Empty(t, store.prefs)
}

func TestSavePreferenceStoreFailure(t *testing.T) {
	store := newFakePreferenceStore()
	store.saveErr = errBoom
	svc := NewPreferenceService(store, fakeTeams{})

	_, err := svc.SavePreference(context.Background(), &models.PreferencePayload{UserID: "u@x.io"})
	assert.ErrorIs(t, err, errBoom)
}
