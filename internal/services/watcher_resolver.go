package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"github.com/sirupsen/logrus"
)

// WatcherResolver computes the raw candidate set of an activity.
type WatcherResolver struct {
	watchers  WatcherStore
	directory Directory
}

func NewWatcherResolver(watchers WatcherStore, directory Directory) *WatcherResolver {
	return &WatcherResolver{watchers: watchers, directory: directory}
}

// Resolve returns the candidates of activity in watcher order, without
// duplicates. INDIVIDUAL types resolve to the explicit notify recipient.
func (r *WatcherResolver) Resolve(ctx context.Context, activity *models.Activity, meta models.ActivityTypeMeta, view *EnrichedView) ([]string, error) {
	if meta.Mode == models.ModeIndividual {
		if activity.Notify == "" {
			return nil, nil
		}
		return []string{activity.Notify}, nil
	}

	watchers, err := r.watchers.GetWatchers(ctx, activity.ResourceName, activity.ResourceID,
		activity.TargetResourceName, activity.TargetResourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get watchers: %w", err)
	}

	if len(activity.Departments) > 0 {
		watchers = r.ByDepartment(ctx, view.Product, activity.Departments, watchers)
	} else {
		watchers = FilterByGroup(watchers, meta.NotifyGroup)
	}

	return uniqueRecipients(watchers), nil
}

// FilterByGroup keeps watchers in at least one of groups. No groups keeps all.
func FilterByGroup(watchers []models.Watcher, groups []models.WatcherGroup) []models.Watcher {
	if len(groups) == 0 {
		return watchers
	}
	filtered := make([]models.Watcher, 0, len(watchers))
	for _, w := range watchers {
		if w.InAnyGroup(groups) {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// ByDepartment re-scopes watchers to the members of departments.
//
// With ALL_MERCHANDISER and a merchandising team on the product, every
// merchandiser of the team is added once as a synthetic watcher before the
// restriction. A product without a team is returned unchanged. An empty
// directory answer never restricts the list.
func (r *WatcherResolver) ByDepartment(ctx context.Context, product models.Product, departments []string, watchers []models.Watcher) []models.Watcher {
	category := models.CategoryHardgoods
	if product.IsTextile() {
		category = models.CategoryTextile
	}
	log := logger.Log.WithFields(logrus.Fields{"departments": departments, "category": category})

	if contains(departments, models.DepartmentAllMerchandiser) {
		merchID := product.MerchTeamID()
		if merchID == "" {
			log.Info("No merchandising team on product, keeping watchers as is")
			return watchers
		}

		emailIDs := r.departmentEmailIDs(ctx, category, departments, merchID)
		managed := addSyntheticWatchers(watchers, emailIDs[models.DepartmentMerchandiser])
		managed = filterByEmailIDs(managed, emailIDs)
		log.WithFields(logrus.Fields{"merch_id": merchID, "watchers": len(managed)}).Info("Notifying all merchandisers once")
		return managed
	}

	emailIDs := r.departmentEmailIDs(ctx, category, departments, "")
	return filterByEmailIDs(watchers, emailIDs)
}

// departmentEmailIDs treats a directory failure as an empty answer.
func (r *WatcherResolver) departmentEmailIDs(ctx context.Context, category string, departments []string, merchID string) map[string][]string {
	emailIDs, err := r.directory.FetchUserDepartmentEmailIDs(ctx, category, departments, merchID)
	if err != nil {
		logger.Log.WithError(err).Warn("Department lookup failed, skipping department restriction")
		return map[string][]string{}
	}
	return emailIDs
}

func addSyntheticWatchers(watchers []models.Watcher, emails []string) []models.Watcher {
	present := make(map[string]struct{}, len(watchers))
	for _, w := range watchers {
		present[w.NotificationID] = struct{}{}
	}
	out := append([]models.Watcher(nil), watchers...)
	for _, email := range emails {
		if _, ok := present[email]; ok {
			continue
		}
		present[email] = struct{}{}
		out = append(out, models.Watcher{NotificationID: email})
	}
	return out
}

func filterByEmailIDs(watchers []models.Watcher, emailIDs map[string][]string) []models.Watcher {
	allowed := make(map[string]struct{})
	for _, emails := range emailIDs {
		for _, e := range emails {
			allowed[e] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return watchers
	}
	filtered := make([]models.Watcher, 0, len(watchers))
	for _, w := range watchers {
		if _, ok := allowed[w.NotificationID]; ok {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

func uniqueRecipients(watchers []models.Watcher) []string {
	seen := make(map[string]struct{}, len(watchers))
	out := make([]string, 0, len(watchers))
	for _, w := range watchers {
		if w.NotificationID == "" {
			continue
		}
		if _, ok := seen[w.NotificationID]; ok {
			continue
		}
		seen[w.NotificationID] = struct{}{}
		out = append(out, w.NotificationID)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
