package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ActivityRepository struct {
	collection *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{
		collection: db.Collection("activities"),
	}
}

// SaveActivity inserts the activity and returns it with its assigned id.
func (r *ActivityRepository) SaveActivity(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	saved := *activity
	saved.ID = primitive.NewObjectID()
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, &saved)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert activity")
		return nil, fmt.Errorf("failed to insert activity: %w", err)
	}
	return &saved, nil
}

// GetResourceActivities fetches the latest activities recorded on a resource.
func (r *ActivityRepository) GetResourceActivities(ctx context.Context, resourceName, resourceID string, limit int) ([]models.Activity, error) {
	filter := bson.M{"resource_name": resourceName, "resource_id": resourceID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %v", err)
	}
	defer cursor.Close(ctx)

	var activities []models.Activity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %v", err)
	}
	return activities, nil
}
