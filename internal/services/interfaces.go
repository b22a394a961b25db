package services

import (
	"context"

	"github.com/Dias221467/Activity_Notifier/internal/models"
)

// ActivityStore persists activities.
type ActivityStore interface {
	SaveActivity(ctx context.Context, activity *models.Activity) (*models.Activity, error)
}

// WatcherStore lists the watchers registered on a resource.
type WatcherStore interface {
	GetWatchers(ctx context.Context, resourceName, resourceID, targetResourceName, targetResourceID string) ([]models.Watcher, error)
}

// NotificationStore persists notification records.
type NotificationStore interface {
	Insert(ctx context.Context, notif *models.Notification) (*models.Notification, error)
}

// PreferenceStore reads user notification preferences. A missing row is
// returned as nil with no error.
type PreferenceStore interface {
	GetPreference(ctx context.Context, userID string) (*models.Preference, error)
}

// ResourceFetcher fetches resource documents from the resource service.
type ResourceFetcher interface {
	Fetch(ctx context.Context, path string) (map[string]any, error)
	FetchProductByID(ctx context.Context, productID string) (map[string]any, error)
}

// Directory is the auth/directory service.
type Directory interface {
	FetchUserDetails(ctx context.Context, userType string) ([]models.UserDetail, error)
	FetchUserDepartmentEmailIDs(ctx context.Context, productType string, departments []string, merchID string) (map[string][]string, error)
}

// RealtimeBus pushes events to connected users.
type RealtimeBus interface {
	SendEvent(userID, eventType string, payload any) error
	GetUsersOfRoom(ctx context.Context, room string) ([]string, error)
}

// Mailer sends a rendered notification email.
type Mailer interface {
	SendEmail(ctx context.Context, recipient string, isJobStatusEmail bool, subject string, payload map[string]any, templateName string) error
}

// TypeRegistry resolves activity type policies.
type TypeRegistry interface {
	Lookup(activityType string) (models.ActivityTypeMeta, error)
	Has(activityType string) bool
}
