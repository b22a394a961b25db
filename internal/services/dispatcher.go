package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Dias221467/Activity_Notifier/internal/metrics"
	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"github.com/sirupsen/logrus"
)

const importEmailSubject = "[PCP]-[Import Products]"

// Dispatcher delivers an accepted notification over the realtime bus and by
// email, and runs the page room broadcasts.
type Dispatcher struct {
	bus      RealtimeBus
	mailer   Mailer
	isMailOn bool
	baseURL  string

	mails sync.WaitGroup
}

func NewDispatcher(bus RealtimeBus, mailer Mailer, isMailOn bool, baseURL string) *Dispatcher {
	return &Dispatcher{bus: bus, mailer: mailer, isMailOn: isMailOn, baseURL: baseURL}
}

// Dispatch emits the realtime event to recipient and, when the type, the
// global toggle and the user preference all allow it, sends the email in the
// background. Only the event outcome is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, recipient string, activity *models.Activity, meta models.ActivityTypeMeta, payload map[string]any, pref *models.Preference) error {
	if err := d.bus.SendEvent(recipient, activity.Type, payload); err != nil {
		return fmt.Errorf("failed to send event to %s: %w", recipient, err)
	}

	if !meta.Email || !d.isMailOn || !WantsEmail(pref) || d.mailer == nil {
		return nil
	}

	mailPayload := copyMap(payload)
	subject, isJob := EmailSubject(mailPayload, d.baseURL)
	mailCtx := context.WithoutCancel(ctx)

	d.mails.Add(1)
	go func() {
		defer d.mails.Done()
		log := logger.Log.WithFields(logrus.Fields{"recipient": recipient, "activity_type": activity.Type})
		if err := d.mailer.SendEmail(mailCtx, recipient, isJob, subject, mailPayload, meta.EmailTemplate); err != nil {
			metrics.EmailsSent.WithLabelValues("failed").Inc()
			log.WithError(err).Warn("Failed to send notification email")
			return
		}
		metrics.EmailsSent.WithLabelValues("sent").Inc()
		log.Debug("Notification email sent")
	}()
	return nil
}

// Wait blocks until every background email has been handed off.
func (d *Dispatcher) Wait() {
	d.mails.Wait()
}

// NotifyPage pushes the raw resource to everyone on the activity's origin
// page except the actor. It returns how many users were reached.
func (d *Dispatcher) NotifyPage(ctx context.Context, activity *models.Activity, resource map[string]any) (int, error) {
	users, err := d.bus.GetUsersOfRoom(ctx, activity.Origin)
	if err != nil {
		return 0, fmt.Errorf("failed to list room %s: %w", activity.Origin, err)
	}

	sent := 0
	for _, user := range users {
		if user == activity.ActivityBy {
			continue
		}
		payload := copyMap(resource)
		payload["message"] = activity.Message
		payload["notificationFor"] = activity.Origin
		if err := d.bus.SendEvent(user, activity.Type, payload); err != nil {
			logger.Log.WithError(err).WithField("recipient", user).Warn("Failed to notify page")
			continue
		}
		sent++
	}
	return sent, nil
}

// RefreshPage asks everyone on the origin page except the actor to reload.
// Buyers are left out for edits and lock releases.
func (d *Dispatcher) RefreshPage(ctx context.Context, activity *models.Activity, users models.UserDirectory) (int, error) {
	members, err := d.bus.GetUsersOfRoom(ctx, activity.Origin)
	if err != nil {
		return 0, fmt.Errorf("failed to list room %s: %w", activity.Origin, err)
	}

	hideFromBuyers := activity.Type == models.ActivityEditProduct || activity.Type == models.ActivityProductLockRelease
	sent := 0
	for _, user := range members {
		if user == activity.ActivityBy {
			continue
		}
		if hideFromBuyers && users.IsBuyer(user) {
			continue
		}
		if err := d.bus.SendEvent(user, models.EventPageRefresh, map[string]any{"notificationFor": activity.Origin}); err != nil {
			logger.Log.WithError(err).WithField("recipient", user).Warn("Failed to refresh page")
			continue
		}
		sent++
	}
	return sent, nil
}

// EmailSubject builds the subject line of payload. Processed import jobs also
// get a productCatalogUrl link written into payload.
func EmailSubject(payload map[string]any, baseURL string) (subject string, isJobStatus bool) {
	status, _ := payload["status"].(string)
	switch status {
	case models.JobStatusProcessed:
		payload["productCatalogUrl"] = baseURL + "/pcp-products#reference_" + stringOf(payload["jobId"])
		return importEmailSubject, true
	case models.JobStatusFailed, models.JobStatusIncomplete:
		return importEmailSubject, true
	}

	product, _ := models.DecodeProduct(payload)
	ref := firstNonEmpty(product.IAN.String(), product.PID(), "-")
	sid := "-"
	if product.Selection != nil && product.Selection.SID != "" && product.Selection.SID != "0" {
		sid = product.Selection.SID.String()
	}
	return fmt.Sprintf("[PCP] - [%s / %s ] - %s", ref, sid, product.Name), false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
