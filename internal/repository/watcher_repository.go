package repository

import (
	"context"
	"fmt"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// WatcherRepository reads the watchers registered on resources. Watchers are
// written by the resource services, so this repository is read-only.
type WatcherRepository struct {
	collection *mongo.Collection
}

func NewWatcherRepository(db *mongo.Database) *WatcherRepository {
	return &WatcherRepository{
		collection: db.Collection("watchers"),
	}
}

// GetWatchers returns the watchers of a resource, narrowed to the target
// resource when one is given.
func (r *WatcherRepository) GetWatchers(ctx context.Context, resourceName, resourceID, targetResourceName, targetResourceID string) ([]models.Watcher, error) {
	filter := bson.M{
		"resource_name": resourceName,
		"resource_id":   resourceID,
	}
	if targetResourceName != "" && targetResourceID != "" {
		filter["target_resource_name"] = targetResourceName
		filter["target_resource_id"] = targetResourceID
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch watchers: %w", err)
	}
	defer cursor.Close(ctx)

	watchers := []models.Watcher{}
	if err := cursor.All(ctx, &watchers); err != nil {
		return nil, fmt.Errorf("failed to decode watchers: %w", err)
	}
	return watchers, nil
}
