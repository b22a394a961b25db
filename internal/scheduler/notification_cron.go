package scheduler

import (
	"context"
	"time"

	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ExpiredNotificationPurger deletes notifications past their expiry.
type ExpiredNotificationPurger interface {
	DeleteExpiredNotifications(ctx context.Context) (int64, error)
}

const purgeTimeout = 5 * time.Minute

// StartNotificationCronJobs schedules the housekeeping jobs and starts the
// cron. The caller stops it on shutdown.
func StartNotificationCronJobs(purger ExpiredNotificationPurger, spec string) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc(spec, func() { PurgeExpired(context.Background(), purger) }); err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}

// PurgeExpired runs one purge. Failures are logged and retried on the next tick.
func PurgeExpired(ctx context.Context, purger ExpiredNotificationPurger) {
	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	deleted, err := purger.DeleteExpiredNotifications(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("DeleteExpiredNotifications failed")
		return
	}
	logger.Log.WithField("deleted", deleted).Info("Expired notifications purged")
}
