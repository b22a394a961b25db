package services

import (
	"context"
	"testing"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIndividual(t *testing.T) {
	store := &fakeWatcherStore{watchers: []models.Watcher{watcher("w@x.io")}}
	r := NewWatcherResolver(store, &fakeDirectory{})

	got, err := r.Resolve(context.Background(), &models.Activity{Notify: "n@x.io"}, singleMeta, &EnrichedView{})
	require.NoError(t, err)
	assert.Equal(t, []string{"n@x.io"}, got)
	assert.Zero(t, store.calls)
}

func TestResolveGroupFiltersByNotifyGroup(t *testing.T) {
	store := &fakeWatcherStore{watchers: []models.Watcher{
		watcher("creator@x.io", models.GroupCreator),
		watcher("quality@x.io", models.GroupQuality),
		watcher("buyer@x.io", models.GroupBuyer, models.GroupCommenter),
		watcher("creator@x.io", models.GroupCommenter),
	}}
	r := NewWatcherResolver(store, &fakeDirectory{})
	meta := models.ActivityTypeMeta{Notify: true, Mode: models.ModeGroup, NotifyGroup: []models.WatcherGroup{models.GroupCreator, models.GroupBuyer}}

	got, err := r.Resolve(context.Background(), &models.Activity{}, meta, &EnrichedView{})
	require.NoError(t, err)
	assert.Equal(t, []string{"creator@x.io", "buyer@x.io"}, got)

	meta.NotifyGroup = nil
	got, err = r.Resolve(context.Background(), &models.Activity{}, meta, &EnrichedView{})
	require.NoError(t, err)
	assert.Equal(t, []string{"creator@x.io", "quality@x.io", "buyer@x.io"}, got)
}

func TestResolveWatcherStoreFailure(t *testing.T) {
	r := NewWatcherResolver(&fakeWatcherStore{err: errBoom}, &fakeDirectory{})
	_, err := r.Resolve(context.Background(), &models.Activity{}, groupMeta, &EnrichedView{})
	assert.ErrorIs(t, err, errBoom)
}

func productOf(t *testing.T, productType, team string) models.Product {
	t.Helper()
	p, err := models.DecodeProduct(productDoc("CONFIRMED", productType, team))
	require.NoError(t, err)
	return p
}

func TestByDepartmentAllMerchandiserWithoutTeamIsPassThrough(t *testing.T) {
	dir := &fakeDirectory{depts: map[string][]string{"MERCHANDISER": {"m@x.io"}}}
	r := NewWatcherResolver(nil, dir)
	watchers := []models.Watcher{watcher("a@x.io"), watcher("b@x.io")}

	got := r.ByDepartment(context.Background(), productOf(t, "TEXTILE", ""), []string{models.DepartmentAllMerchandiser}, watchers)

	assert.Equal(t, watchers, got)
	assert.Empty(t, dir.deptCalls)
}

func TestByDepartmentAllMerchandiserBroadensThenRestricts(t *testing.T) {
	dir := &fakeDirectory{depts: map[string][]string{
		"MERCHANDISER": {"m1@x.io", "a@x.io"},
		"QUALITY":      {"q@x.io"},
	}}
	r := NewWatcherResolver(nil, dir)
	watchers := []models.Watcher{watcher("a@x.io", models.GroupCreator), watcher("outsider@x.io"), watcher("q@x.io")}

	got := r.ByDepartment(context.Background(), productOf(t, "TEXTILE", "T1"),
		[]string{models.DepartmentAllMerchandiser, "QUALITY"}, watchers)

	ids := uniqueRecipients(got)
	assert.Equal(t, []string{"a@x.io", "q@x.io", "m1@x.io"}, ids)
	require.Len(t, dir.deptCalls, 1)
	assert.Equal(t, deptCall{"Textile", []string{models.DepartmentAllMerchandiser, "QUALITY"}, "T1"}, dir.deptCalls[0])
	// synthetic watchers carry no groups
	assert.Empty(t, got[len(got)-1].Groups)
}

func TestByDepartmentRestrictsWithoutTeam(t *testing.T) {
	dir := &fakeDirectory{depts: map[string][]string{"QUALITY": {"q@x.io"}}}
	r := NewWatcherResolver(nil, dir)
	watchers := []models.Watcher{watcher("a@x.io"), watcher("q@x.io")}

	got := r.ByDepartment(context.Background(), productOf(t, "HARDGOODS", "T1"), []string{"QUALITY"}, watchers)

	assert.Equal(t, []string{"q@x.io"}, uniqueRecipients(got))
	require.Len(t, dir.deptCalls, 1)
	assert.Equal(t, "Hardgoods", dir.deptCalls[0].category)
	assert.Equal(t, "", dir.deptCalls[0].merchID)
}

func TestByDepartmentEmptyAnswerKeepsWatchers(t *testing.T) {
	watchers := []models.Watcher{watcher("a@x.io"), watcher("b@x.io")}

	empty := NewWatcherResolver(nil, &fakeDirectory{depts: map[string][]string{"QUALITY": {}}})
	assert.Equal(t, watchers, empty.ByDepartment(context.Background(), productOf(t, "HARDGOODS", "T1"), []string{"QUALITY"}, watchers))

	failing := NewWatcherResolver(nil, &fakeDirectory{deptsErr: errBoom})
	assert.Equal(t, watchers, failing.ByDepartment(context.Background(), productOf(t, "HARDGOODS", "T1"), []string{"QUALITY"}, watchers))
}

func TestResolveUsesDepartmentsInsteadOfGroups(t *testing.T) {
	store := &fakeWatcherStore{watchers: []models.Watcher{
		watcher("creator@x.io", models.GroupCreator),
		watcher("q@x.io", models.GroupQuality),
	}}
	dir := &fakeDirectory{depts: map[string][]string{"QUALITY": {"q@x.io"}}}
	r := NewWatcherResolver(store, dir)
	meta := models.ActivityTypeMeta{Notify: true, Mode: models.ModeGroup, NotifyGroup: []models.WatcherGroup{models.GroupCreator}}
	view := &EnrichedView{Product: productOf(t, "HARDGOODS", "T1")}

	got, err := r.Resolve(context.Background(), &models.Activity{Departments: []string{"QUALITY"}}, meta, view)
	require.NoError(t, err)
	assert.Equal(t, []string{"q@x.io"}, got)
}
