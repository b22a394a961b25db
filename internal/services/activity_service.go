package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/Dias221467/Activity_Notifier/internal/metrics"
	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Suppression reasons recorded in FanOutReport and metrics.
const (
	ReasonSelf       = "self"
	ReasonPermission = "permission"
	ReasonNotified   = "already_notified"
	ReasonPreference = "preference"
)

// FanOutReport summarizes one fan-out run.
type FanOutReport struct {
	RunID      string
	Candidates int
	Notified   []string
	Suppressed map[string]string
	Failed     map[string]error
	PageUsers  int
}

func newFanOutReport() *FanOutReport {
	return &FanOutReport{
		RunID:      uuid.NewString(),
		Suppressed: map[string]string{},
		Failed:     map[string]error{},
	}
}

// ActivityService saves activities and fans them out to their audience.
type ActivityService struct {
	activities  ActivityStore
	registry    TypeRegistry
	directory   Directory
	enricher    *ResourceEnricher
	resolver    *WatcherResolver
	gate        *PreferenceGate
	writer      *NotificationWriter
	dispatcher  *Dispatcher
	validate    *validator.Validate
	concurrency int
	timeout     time.Duration
}

// ActivityServiceDeps groups the collaborators of ActivityService.
type ActivityServiceDeps struct {
	Activities    ActivityStore
	Watchers      WatcherStore
	Notifications NotificationStore
	Preferences   PreferenceStore
	Resources     ResourceFetcher
	Directory     Directory
	Registry      TypeRegistry
	Dispatcher    *Dispatcher
	Concurrency   int
	// Timeout bounds the fan-out after the save. Zero means two minutes.
	Timeout time.Duration
}

func NewActivityService(deps ActivityServiceDeps) *ActivityService {
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ActivityService{
		activities:  deps.Activities,
		registry:    deps.Registry,
		directory:   deps.Directory,
		enricher:    NewResourceEnricher(deps.Resources),
		resolver:    NewWatcherResolver(deps.Watchers, deps.Directory),
		gate:        NewPreferenceGate(deps.Preferences),
		writer:      NewNotificationWriter(deps.Notifications),
		dispatcher:  deps.Dispatcher,
		validate:    newValidator(),
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// newValidator reports field errors under their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// SaveActivity validates, persists and fans out activity. On a fan-out
// failure the saved activity is returned together with a *ProcessingError.
func (s *ActivityService) SaveActivity(ctx context.Context, activity *models.Activity) (*models.Activity, error) {
	saved, _, err := s.SaveActivityWithReport(ctx, activity)
	return saved, err
}

// SaveActivityWithReport is SaveActivity that also returns what the fan-out did.
func (s *ActivityService) SaveActivityWithReport(ctx context.Context, activity *models.Activity) (*models.Activity, *FanOutReport, error) {
	if err := s.Validate(activity); err != nil {
		return nil, nil, err
	}

	saved, err := s.activities.SaveActivity(ctx, activity)
	if err != nil {
		return nil, nil, &ProcessingError{Phase: "save", Err: err}
	}
	metrics.ActivitiesSaved.WithLabelValues(saved.Type).Inc()

	// the save is committed; the audience is served even if the caller goes away
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	report := newFanOutReport()
	log := logger.Log.WithFields(logrus.Fields{
		"activity_type": saved.Type,
		"activity_id":   saved.ID.Hex(),
		"run_id":        report.RunID,
	})

	meta, err := s.registry.Lookup(saved.Type)
	if err != nil {
		log.WithError(err).Error("Activity type has no configuration")
		return saved, report, &ProcessingError{Phase: "configuration", Err: &ConfigurationError{ActivityType: saved.Type, Err: err}}
	}
	if !meta.Notify {
		log.Debug("Activity type does not notify")
		return saved, report, nil
	}

	start := time.Now()
	defer func() {
		metrics.FanOutDuration.WithLabelValues(saved.Type).Observe(time.Since(start).Seconds())
	}()

	if err := s.fanOut(ctx, saved, meta, report, log); err != nil {
		log.WithError(err).Error("Failed to process activity")
		return saved, report, err
	}

	log.WithFields(logrus.Fields{
		"candidates": report.Candidates,
		"notified":   len(report.Notified),
		"suppressed": len(report.Suppressed),
		"failed":     len(report.Failed),
	}).Info("Activity fan-out complete")
	return saved, report, nil
}

// Validate checks activity before anything is written.
func (s *ActivityService) Validate(activity *models.Activity) error {
	if err := s.validate.Struct(activity); err != nil {
		return newValidationError(err)
	}
	if !s.registry.Has(activity.Type) {
		return &ValidationError{Fields: map[string]string{"type": "unknown activity type " + activity.Type}}
	}
	meta, _ := s.registry.Lookup(activity.Type)
	if meta.Notify && meta.Mode == models.ModeIndividual && activity.Notify == "" {
		return &ValidationError{Fields: map[string]string{"notify": "required"}}
	}
	return nil
}

func (s *ActivityService) fanOut(ctx context.Context, activity *models.Activity, meta models.ActivityTypeMeta, report *FanOutReport, log *logrus.Entry) error {
	view, err := s.enricher.Enrich(ctx, activity, meta)
	if err != nil {
		return &ProcessingError{Phase: "enrich", Err: err}
	}

	// one directory snapshot for the whole run
	details, err := s.directory.FetchUserDetails(ctx, "")
	if err != nil {
		return &ProcessingError{Phase: "user-details", Err: err}
	}
	users := models.NewUserDirectory(details)

	candidates, err := s.resolver.Resolve(ctx, activity, meta, view)
	if err != nil {
		return &ProcessingError{Phase: "watchers", Err: err}
	}
	report.Candidates = len(candidates)

	tags, err := activity.ParseMetadata()
	if err != nil {
		log.WithError(err).Warn("Ignoring unreadable activity metadata")
	}
	input := PermissionInput{Activity: activity, Meta: meta, View: view, Users: users, Tags: tags}

	var (
		mu   sync.Mutex
		errs []error
	)
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, candidate := range candidates {
		candidate := candidate
		g.Go(func() error {
			reason, err := s.notifyCandidate(ctx, candidate, input)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed[candidate] = err
				errs = append(errs, err)
				metrics.CandidateFailures.WithLabelValues(activity.Type).Inc()
				log.WithError(err).WithField("recipient", candidate).Warn("Failed to notify candidate")
			case reason != "":
				report.Suppressed[candidate] = reason
				metrics.RecipientsSuppressed.WithLabelValues(activity.Type, reason).Inc()
			default:
				report.Notified = append(report.Notified, candidate)
			}
			return nil
		})
	}
	_ = g.Wait()

	if joined := errors.Join(errs...); joined != nil {
		log.WithError(joined).Error("Some candidates were not notified")
	}

	s.broadcastPage(ctx, activity, meta, view, users, report, log)
	return nil
}

// notifyCandidate runs filter, gate, write and dispatch for one candidate.
// A non-empty reason means the candidate was suppressed.
func (s *ActivityService) notifyCandidate(ctx context.Context, candidate string, in PermissionInput) (string, error) {
	activity := in.Activity
	if candidate == activity.ActivityBy {
		return ReasonSelf, nil
	}

	decision := Decide(candidate, in)
	if !decision.Allow {
		return ReasonPermission, nil
	}
	if decision.TreatAsNotified {
		return ReasonNotified, nil
	}

	pref, err := s.gate.Load(ctx, candidate)
	if err != nil {
		return "", err
	}
	if !Enabled(pref, in.View.Product.MerchTeamID()) {
		return ReasonPreference, nil
	}

	to := Recipient{UserID: candidate, Name: in.Users.Name(candidate)}
	var notif *models.Notification
	if models.IsImportActivity(activity.Type) {
		jobID := ""
		if in.View.Import != nil {
			jobID = in.View.Import.JobID
		}
		notif, err = s.writer.WriteImport(ctx, to, activity, jobID)
	} else {
		notif, err = s.writer.Write(ctx, to, activity, in.View)
	}
	if err != nil {
		return "", err
	}

	payload := in.View.Payload()
	payload["message"] = activity.Message
	payload["activityBy"] = activity.ActivityBy
	payload["activityByName"] = activity.ActivityByName
	if notif != nil {
		payload["notificationId"] = notif.ID.Hex()
		metrics.NotificationsCreated.WithLabelValues(activity.Type).Inc()
	}

	if err := s.dispatcher.Dispatch(ctx, candidate, activity, in.Meta, payload, pref); err != nil {
		return "", err
	}
	return "", nil
}

// broadcastPage runs the room broadcasts. In INDIVIDUAL mode the page is only
// notified when the recipient was accepted, and never refreshed.
func (s *ActivityService) broadcastPage(ctx context.Context, activity *models.Activity, meta models.ActivityTypeMeta, view *EnrichedView, users models.UserDirectory, report *FanOutReport, log *logrus.Entry) {
	if meta.Mode == models.ModeIndividual {
		if !meta.NotifyPageOnly || len(report.Notified) == 0 {
			return
		}
		n, err := s.dispatcher.NotifyPage(ctx, activity, view.Resource)
		if err != nil {
			log.WithError(err).Warn("Failed to notify page")
		}
		report.PageUsers += n
		return
	}

	if meta.NotifyPageOnly {
		n, err := s.dispatcher.NotifyPage(ctx, activity, view.Resource)
		if err != nil {
			log.WithError(err).Warn("Failed to notify page")
		}
		report.PageUsers += n
	}
	if meta.NotifyPageRefresh {
		n, err := s.dispatcher.RefreshPage(ctx, activity, users)
		if err != nil {
			log.WithError(err).Warn("Failed to refresh page")
		}
		report.PageUsers += n
	}
}

// String renders the report for logs.
func (r *FanOutReport) String() string {
	return fmt.Sprintf("run=%s candidates=%d notified=%d suppressed=%d failed=%d",
		r.RunID, r.Candidates, len(r.Notified), len(r.Suppressed), len(r.Failed))
}
