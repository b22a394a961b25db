package services

import (
	"context"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InboxStore is the recipient side of the notification collection.
type InboxStore interface {
	GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id primitive.ObjectID, userID string) error
	DeleteNotification(ctx context.Context, id primitive.ObjectID, userID string) error
	DeleteExpiredNotifications(ctx context.Context) (int64, error)
}

type NotificationService struct {
	repo InboxStore
}

func NewNotificationService(repo InboxStore) *NotificationService {
	return &NotificationService{repo: repo}
}

// GetUserNotifications returns the unexpired notifications of a user
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

// MarkNotificationAsRead sets the "read" status of a notification to true
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, notifID primitive.ObjectID, userID string) error {
	return s.repo.MarkAsRead(ctx, notifID, userID)
}

// DeleteNotification deletes a specific notification
func (s *NotificationService) DeleteNotification(ctx context.Context, notifID primitive.ObjectID, userID string) error {
	return s.repo.DeleteNotification(ctx, notifID, userID)
}

// DeleteExpiredNotifications is called by the housekeeping cron
func (s *NotificationService) DeleteExpiredNotifications(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredNotifications(ctx)
}
