package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PreferenceRepository struct {
	collection *mongo.Collection
}

func NewPreferenceRepository(db *mongo.Database) *PreferenceRepository {
	return &PreferenceRepository{
		collection: db.Collection("preferences"),
	}
}

// GetPreference returns the preference row of userID, or nil when none exists.
func (r *PreferenceRepository) GetPreference(ctx context.Context, userID string) (*models.Preference, error) {
	var pref models.Preference
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&pref)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preference: %w", err)
	}
	return &pref, nil
}

// SavePreference upserts the preference row keyed by user id.
func (r *PreferenceRepository) SavePreference(ctx context.Context, pref *models.Preference) (*models.Preference, error) {
	now := time.Now()
	for i := range pref.MerchTeamPreference {
		if pref.MerchTeamPreference[i].CreatedAt.IsZero() {
			pref.MerchTeamPreference[i].CreatedAt = now
		}
		pref.MerchTeamPreference[i].UpdatedAt = now
	}

	update := bson.M{"$set": bson.M{
		"in_app_notification":   pref.InAppNotification,
		"email_notification":    pref.EmailNotification,
		"email_frequency":       pref.EmailFrequency,
		"merch_team_preference": pref.MerchTeamPreference,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.Preference
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": pref.UserID}, update, opts).Decode(&saved)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", pref.UserID).Error("Failed to save preference")
		return nil, fmt.Errorf("failed to save preference: %w", err)
	}
	return &saved, nil
}
