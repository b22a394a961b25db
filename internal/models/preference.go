package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmailFrequency controls how often digest mails are sent.
type EmailFrequency int

const (
	EmailFrequencyNever EmailFrequency = iota
	EmailFrequencyImmediate
	EmailFrequencyDaily
	EmailFrequencyWeekly
)

// MerchTeamPreference is the opt-out flag of one user for one merchandising team.
type MerchTeamPreference struct {
	TeamID             string    `bson:"team_id" json:"teamId" validate:"required"`
	EnableNotification bool      `bson:"enable_notification" json:"enableNotification"`
	CreatedAt          time.Time `bson:"created_at,omitempty" json:"-"`
	UpdatedAt          time.Time `bson:"updated_at,omitempty" json:"-"`
}

// Preference holds the notification settings of a user. One row per user.
type Preference struct {
	ID                  primitive.ObjectID    `bson:"_id,omitempty" json:"-"`
	UserID              string                `bson:"user_id" json:"userId"`
	InAppNotification   bool                  `bson:"in_app_notification" json:"inAppNotification"`
	EmailNotification   bool                  `bson:"email_notification" json:"emailNotification"`
	EmailFrequency      EmailFrequency        `bson:"email_frequency" json:"emailFrequency"`
	MerchTeamPreference []MerchTeamPreference `bson:"merch_team_preference" json:"merchTeamPreference"`
}

// TeamPreference returns the entry for teamID, if any.
func (p *Preference) TeamPreference(teamID string) (MerchTeamPreference, bool) {
	for _, t := range p.MerchTeamPreference {
		if t.TeamID == teamID {
			return t, true
		}
	}
	return MerchTeamPreference{}, false
}

// PreferencePayload is the body accepted by the preference save endpoint.
type PreferencePayload struct {
	UserID              string                `json:"userId" validate:"required"`
	InAppNotification   bool                  `json:"inAppNotification"`
	EmailNotification   bool                  `json:"emailNotification"`
	EmailFrequency      EmailFrequency        `json:"emailFrequency" validate:"min=0,max=3"`
	MerchTeamPreference []MerchTeamPreference `json:"merchTeamPreference" validate:"dive"`
}
