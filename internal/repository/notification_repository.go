package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotificationNotFound is returned when no notification matches the id and owner.
var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
}

func NewNotificationRepository(db *mongo.Database, ttl time.Duration) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
		ttl:        ttl,
	}
}

// Insert stores a notification and returns it with its id and expiry set.
func (r *NotificationRepository) Insert(ctx context.Context, notif *models.Notification) (*models.Notification, error) {
	saved := *notif
	saved.ID = primitive.NewObjectID()
	saved.CreatedAt = time.Now()
	saved.ExpiresAt = saved.CreatedAt.Add(r.ttl)

	_, err := r.collection.InsertOne(ctx, &saved)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert notification")
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &saved, nil
}

// GetUserNotifications returns the unexpired notifications of a user, newest first.
func (r *NotificationRepository) GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	filter := bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$gt": time.Now()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %v", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %v", err)
	}
	return notifications, nil
}

// MarkAsRead sets Read on a notification owned by userID.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id primitive.ObjectID, userID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %v", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// DeleteNotification deletes a notification owned by userID.
func (r *NotificationRepository) DeleteNotification(ctx context.Context, id primitive.ObjectID, userID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %v", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// DeleteExpiredNotifications removes notifications past their expiry.
func (r *NotificationRepository) DeleteExpiredNotifications(ctx context.Context) (int64, error) {
	filter := bson.M{"expires_at": bson.M{"$lte": time.Now()}}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %v", err)
	}
	logger.Log.Infof("Deleted %d expired notifications", result.DeletedCount)
	return result.DeletedCount, nil
}
