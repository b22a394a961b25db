package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/Activity_Notifier/internal/models"
)

// Recipient is an accepted candidate together with their display name.
type Recipient struct {
	UserID string
	Name   string
}

// NotificationWriter creates the persisted notification of one recipient.
type NotificationWriter struct {
	store NotificationStore
}

func NewNotificationWriter(store NotificationStore) *NotificationWriter {
	return &NotificationWriter{store: store}
}

// Write stores the notification of a product activity. It returns nil without
// error when the view has no product identity.
func (w *NotificationWriter) Write(ctx context.Context, to Recipient, activity *models.Activity, view *EnrichedView) (*models.Notification, error) {
	product := view.Product
	if product.PID() == "" {
		return nil, nil
	}

	notif := &models.Notification{
		UserID:                 to.UserID,
		SenderName:             activity.ActivityByName,
		UserName:               to.Name,
		Message:                activity.Message,
		MessageID:              activity.Type,
		ProductName:            product.Name,
		ProductRevisionVersion: product.RevisionVersion.String(),
		ReferenceID:            product.PID(),
		ReferenceType:          models.ProductResourceName,
		CreatedBy:              activity.ActivityBy,
		SelectionID:            product.SelectionID(),
		Theme:                  FormatTheme(product.Metadata),
		IAN:                    product.IAN.String(),
		Thumbnail:              product.Thumbnail200(),
		Activity:               activity,
	}

	saved, err := w.store.Insert(ctx, notif)
	if err != nil {
		return nil, fmt.Errorf("failed to write notification for %s: %w", to.UserID, err)
	}
	return saved, nil
}

// WriteImport stores the notification of an import job. jobID may be empty.
func (w *NotificationWriter) WriteImport(ctx context.Context, to Recipient, activity *models.Activity, jobID string) (*models.Notification, error) {
	notif := &models.Notification{
		UserID:        to.UserID,
		UserName:      to.Name,
		SenderName:    activity.ActivityByName,
		Message:       activity.Message,
		MessageID:     activity.Type,
		CreatedBy:     activity.ActivityBy,
		ReferenceType: models.ImportProductReferenceType,
		ReferenceID:   jobID,
		ProductName:   models.ImportProductName,
		Activity:      activity,
	}

	saved, err := w.store.Insert(ctx, notif)
	if err != nil {
		return nil, fmt.Errorf("failed to write import notification for %s: %w", to.UserID, err)
	}
	return saved, nil
}

// FormatTheme renders "<week> - <theme>". A week id of "0" renders empty.
func FormatTheme(meta *models.ProductMetadata) string {
	if meta == nil {
		return ""
	}
	hasWeek := meta.ThemeWeek != nil
	hasTheme := meta.Theme != ""

	week := ""
	if hasWeek && meta.ThemeWeek.WID != "0" {
		week = meta.ThemeWeek.WID.String()
	}

	switch {
	case hasWeek && hasTheme:
		return week + " - " + meta.Theme
	case hasWeek:
		return week + " - "
	case hasTheme:
		return " - " + meta.Theme
	}
	return ""
}
