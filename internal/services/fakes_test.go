package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/Dias221467/Activity_Notifier/internal/registry"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errBoom = errors.New("boom")

type fakeActivityStore struct {
	mu        sync.Mutex
	saved     []*models.Activity
	err       error
	afterSave func()
}

func (f *fakeActivityStore) SaveActivity(_ context.Context, a *models.Activity) (*models.Activity, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := *a
	out.ID = primitive.NewObjectID()
	f.saved = append(f.saved, &out)
	if f.afterSave != nil {
		f.afterSave()
	}
	return &out, nil
}

type fakeWatcherStore struct {
	watchers []models.Watcher
	err      error
	calls    int
}

func (f *fakeWatcherStore) GetWatchers(_ context.Context, _, _, _, _ string) ([]models.Watcher, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Watcher(nil), f.watchers...), nil
}

type fakeNotificationStore struct {
	mu       sync.Mutex
	inserted []*models.Notification
	failFor  map[string]bool
}

func (f *fakeNotificationStore) Insert(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[n.UserID] {
		return nil, errBoom
	}
	out := *n
	out.ID = primitive.NewObjectID()
	f.inserted = append(f.inserted, &out)
	return &out, nil
}

func (f *fakeNotificationStore) forUser(userID string) []*models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for _, n := range f.inserted {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakePreferenceStore struct {
	mu      sync.Mutex
	prefs   map[string]*models.Preference
	failFor map[string]bool
	calls   map[string]int
	saveErr error
}

func newFakePreferenceStore() *fakePreferenceStore {
	return &fakePreferenceStore{prefs: map[string]*models.Preference{}, calls: map[string]int{}}
}

func (f *fakePreferenceStore) GetPreference(_ context.Context, userID string) (*models.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[userID]++
	if f.failFor[userID] {
		return nil, errBoom
	}
	p, ok := f.prefs[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.MerchTeamPreference = append([]models.MerchTeamPreference(nil), p.MerchTeamPreference...)
	return &cp, nil
}

func (f *fakePreferenceStore) SavePreference(_ context.Context, p *models.Preference) (*models.Preference, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.prefs[p.UserID] = &cp
	return &cp, nil
}

// optIn stores an enabled preference of user for team.
func (f *fakePreferenceStore) optIn(user, team string, email bool) {
	f.prefs[user] = &models.Preference{
		UserID:              user,
		EmailNotification:   email,
		MerchTeamPreference: []models.MerchTeamPreference{{TeamID: team, EnableNotification: true}},
	}
}

type fakeResources struct {
	mu    sync.Mutex
	docs  map[string]map[string]any
	fail  map[string]bool
	paths []string
}

func (f *fakeResources) Fetch(ctx context.Context, path string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	if f.fail[path] {
		return nil, errBoom
	}
	if doc, ok := f.docs[path]; ok {
		return doc, nil
	}
	return map[string]any{}, nil
}

func (f *fakeResources) FetchProductByID(ctx context.Context, id string) (map[string]any, error) {
	return f.Fetch(ctx, "/api/product/"+id+"?notification=true")
}

type deptCall struct {
	category    string
	departments []string
	merchID     string
}

type fakeDirectory struct {
	users     []models.UserDetail
	usersErr  error
	depts     map[string][]string
	deptsErr  error
	deptCalls []deptCall
}

func (f *fakeDirectory) FetchUserDetails(context.Context, string) ([]models.UserDetail, error) {
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return append([]models.UserDetail(nil), f.users...), nil
}

func (f *fakeDirectory) FetchUserDepartmentEmailIDs(_ context.Context, category string, departments []string, merchID string) (map[string][]string, error) {
	f.deptCalls = append(f.deptCalls, deptCall{category, departments, merchID})
	if f.deptsErr != nil {
		return nil, f.deptsErr
	}
	if f.depts == nil {
		return map[string][]string{}, nil
	}
	return f.depts, nil
}

type sentEvent struct {
	user    string
	event   string
	payload map[string]any
}

type fakeBus struct {
	mu      sync.Mutex
	events  []sentEvent
	rooms   map[string][]string
	failFor map[string]bool
	roomErr error
}

func (f *fakeBus) SendEvent(userID, eventType string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[userID] {
		return errBoom
	}
	p, _ := payload.(map[string]any)
	f.events = append(f.events, sentEvent{userID, eventType, p})
	return nil
}

func (f *fakeBus) GetUsersOfRoom(_ context.Context, room string) ([]string, error) {
	if f.roomErr != nil {
		return nil, f.roomErr
	}
	return f.rooms[room], nil
}

func (f *fakeBus) eventsFor(user string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEvent
	for _, e := range f.events {
		if e.user == user {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeBus) eventsOfType(event string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEvent
	for _, e := range f.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

type sentMail struct {
	recipient string
	isJob     bool
	subject   string
	payload   map[string]any
	template  string
}

type fakeMailer struct {
	mu    sync.Mutex
	mails []sentMail
	err   error
}

func (f *fakeMailer) SendEmail(_ context.Context, recipient string, isJob bool, subject string, payload map[string]any, template string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.mails = append(f.mails, sentMail{recipient, isJob, subject, payload, template})
	return nil
}

func (f *fakeMailer) sent() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.mails...)
}

// harness wires an ActivityService over fakes and the embedded registry.
type harness struct {
	activities    *fakeActivityStore
	watchers      *fakeWatcherStore
	notifications *fakeNotificationStore
	prefs         *fakePreferenceStore
	resources     *fakeResources
	directory     *fakeDirectory
	bus           *fakeBus
	mailer        *fakeMailer
	dispatcher    *Dispatcher
	service       *ActivityService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)

	h := &harness{
		activities:    &fakeActivityStore{},
		watchers:      &fakeWatcherStore{},
		notifications: &fakeNotificationStore{},
		prefs:         newFakePreferenceStore(),
		resources:     &fakeResources{docs: map[string]map[string]any{}},
		directory:     &fakeDirectory{},
		bus:           &fakeBus{rooms: map[string][]string{}},
		mailer:        &fakeMailer{},
	}
	h.dispatcher = NewDispatcher(h.bus, h.mailer, true, "https://pcp.example.com")
	h.service = NewActivityService(ActivityServiceDeps{
		Activities:    h.activities,
		Watchers:      h.watchers,
		Notifications: h.notifications,
		Preferences:   h.prefs,
		Resources:     h.resources,
		Directory:     h.directory,
		Registry:      reg,
		Dispatcher:    h.dispatcher,
		Concurrency:   4,
	})
	return h
}

// productDoc builds a product resource document.
func productDoc(status, productType, team string) map[string]any {
	return map[string]any{
		"name":            "Linen Shirt",
		"revisionVersion": 3,
		"ian":             "100200",
		"status":          map[string]any{"status": status},
		"type":            map[string]any{"type": productType},
		"createdBy":       "creator@x.io",
		"merchandise":     map[string]any{"teamId": team},
		"productIdentifier": map[string]any{
			"pid": 555,
			"buyers": []any{
				map[string]any{"emailId": "primary@x.io", "isPrimaryBuyer": true},
				map[string]any{"emailId": "buyer@x.io", "isPrimaryBuyer": false},
			},
		},
		"selection": map[string]any{"sid": "77"},
		"metadata": map[string]any{
			"theme":     "Spring",
			"themeWeek": map[string]any{"wid": "5"},
		},
		"images": []any{
			map[string]any{"url": "full.png", "thumbnails": []any{
				map[string]any{"size": 100, "url": "t100.png"},
				map[string]any{"size": 200, "url": "t200.png"},
			}},
		},
	}
}

func watcher(id string, groups ...models.WatcherGroup) models.Watcher {
	w := models.Watcher{NotificationID: id}
	for _, g := range groups {
		w.Groups = append(w.Groups, models.WatcherGroupEntry{Group: g})
	}
	return w
}
