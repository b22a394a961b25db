package services

import (
	"testing"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/stretchr/testify/assert"
)

func viewOf(t *testing.T, doc map[string]any) *EnrichedView {
	t.Helper()
	p, err := models.DecodeProduct(doc)
	if err != nil {
		t.Fatal(err)
	}
	return &EnrichedView{Resource: doc, document: doc, Product: p}
}

func users(details ...models.UserDetail) models.UserDirectory {
	return models.NewUserDirectory(details)
}

var (
	buyer      = models.UserDetail{Email: "buyer@x.io", IsBuyer: true}
	primary    = models.UserDetail{Email: "primary@x.io", IsBuyer: true}
	supplier   = models.UserDetail{Email: "supplier@x.io"}
	groupMeta  = models.ActivityTypeMeta{Notify: true, Mode: models.ModeGroup}
	singleMeta = models.ActivityTypeMeta{Notify: true, Mode: models.ModeIndividual}
)

func TestDecideBuyerStatusGate(t *testing.T) {
	tests := []struct {
		name         string
		activityType string
		status       string
		candidate    string
		allow        bool
	}{
		{"buyer denied on draft", models.ActivityUpdateStatus, "DRAFT", "buyer@x.io", false},
		{"buyer allowed on confirmed", models.ActivityUpdateStatus, "CONFIRMED", "buyer@x.io", true},
		{"buyer allowed on shipped", models.ActivityUpdateStatus, "SHIPPED", "buyer@x.io", true},
		{"non buyer allowed on draft", models.ActivityUpdateStatus, "DRAFT", "supplier@x.io", true},
		{"unknown user allowed on draft", models.ActivityUpdateStatus, "DRAFT", "ghost@x.io", true},
		{"invite buyer always reaches buyers", models.ActivityInviteBuyer, "DRAFT", "buyer@x.io", true},
		{"remove buyer always reaches buyers", models.ActivityRemoveBuyer, "DRAFT", "buyer@x.io", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := PermissionInput{
				Activity: &models.Activity{Type: tt.activityType},
				Meta:     groupMeta,
				View:     viewOf(t, productDoc(tt.status, "HARDGOODS", "T1")),
				Users:    users(buyer, supplier),
			}
			d := Decide(tt.candidate, in)
			assert.Equal(t, tt.allow, d.Allow)
			assert.False(t, d.TreatAsNotified)
		})
	}
}

func TestCanSeeComment(t *testing.T) {
	internalViewer := &models.UserDetail{Permissions: []string{models.PermissionViewComments}}
	buyerViewer := &models.UserDetail{IsBuyer: true, Permissions: []string{models.PermissionViewInternalBuyersComments, models.PermissionViewBuyerComments}}
	plainBuyer := &models.UserDetail{IsBuyer: true, Permissions: []string{models.PermissionViewComments}}

	tests := []struct {
		name        string
		user        *models.UserDetail
		commentType string
		want        bool
	}{
		{"non buyer with permission sees internal", internalViewer, models.CommentInternal, true},
		{"buyer never sees internal", plainBuyer, models.CommentInternal, false},
		{"external needs buyer comment permission", internalViewer, models.CommentExternal, false},
		{"buyer with permission sees external", buyerViewer, models.CommentExternal, true},
		{"buyer sees buyers internal", buyerViewer, models.CommentBuyersInternal, true},
		{"non buyer never sees buyers internal", internalViewer, models.CommentBuyersInternal, false},
		{"unknown user sees nothing", nil, models.CommentExternal, false},
		{"unknown comment type", internalViewer, "OTHER", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanSeeComment(tt.user, tt.commentType))
		})
	}
}

func TestDecideCommentMatrixOverridesBuyerStatus(t *testing.T) {
	viewer := models.UserDetail{Email: "buyer@x.io", IsBuyer: true, Permissions: []string{models.PermissionViewBuyerComments}}
	in := PermissionInput{
		Activity: &models.Activity{Type: models.ActivityCommentOnProduct, CommentActivityType: models.CommentExternal},
		Meta:     models.ActivityTypeMeta{Notify: true, Mode: models.ModeGroup, RequiredPermissionCheck: true},
		View:     viewOf(t, productDoc("DRAFT", "HARDGOODS", "T1")),
		Users:    users(viewer),
	}
	assert.True(t, Decide("buyer@x.io", in).Allow)

	in.Meta.RequiredPermissionCheck = false
	assert.False(t, Decide("buyer@x.io", in).Allow)
}

func TestDecideEditOfConfirmedTextile(t *testing.T) {
	in := PermissionInput{
		Activity: &models.Activity{Type: models.ActivityEditProduct},
		Meta:     groupMeta,
		View:     viewOf(t, productDoc("CONFIRMED", "TEXTILE", "T1")),
		Users:    users(buyer, supplier),
	}
	assert.False(t, Decide("buyer@x.io", in).Allow)
	assert.True(t, Decide("supplier@x.io", in).Allow)

	in.View = viewOf(t, productDoc("CONFIRMED", "HARDGOODS", "T1"))
	assert.True(t, Decide("buyer@x.io", in).Allow)
}

func TestDecideBuyerScopedActivities(t *testing.T) {
	view := viewOf(t, productDoc("CONFIRMED", "HARDGOODS", "T1"))
	for _, activityType := range []string{
		models.ActivityInviteBuyerByProductBuyer,
		models.ActivityRemoveBuyerByProductBuyer,
		models.ActivityInviteBuyerByProductSupplier,
		models.ActivityRemoveBuyerByProductSupplier,
	} {
		t.Run(activityType, func(t *testing.T) {
			in := PermissionInput{Activity: &models.Activity{Type: activityType}, Meta: groupMeta, View: view, Users: users(buyer, primary, supplier)}
			assert.Equal(t, Decision{Allow: false}, Decide("buyer@x.io", in))
			assert.True(t, Decide("supplier@x.io", in).Allow)
			// even a non-buyer on a hidden product is allowed
			in.View = viewOf(t, productDoc("DRAFT", "HARDGOODS", "T1"))
			assert.True(t, Decide("supplier@x.io", in).Allow)

			primaryAllowed := Decide("primary@x.io", in).Allow
			assert.Equal(t, activityType == models.ActivityRemoveBuyerByProductSupplier, primaryAllowed)
		})
	}
}

func TestDecideTagSuppression(t *testing.T) {
	metadata := `{"message":"look","userTags":[{"emailId":"tagged@x.io","name":"Tag"}]}`
	view := viewOf(t, productDoc("CONFIRMED", "HARDGOODS", "T1"))

	t.Run("tagged watcher is treated as notified", func(t *testing.T) {
		activity := &models.Activity{Type: models.ActivityCommentOnProduct, Metadata: metadata}
		tags, _ := activity.ParseMetadata()
		in := PermissionInput{Activity: activity, Meta: groupMeta, View: view, Users: users(), Tags: tags}

		d := Decide("tagged@x.io", in)
		assert.True(t, d.Allow)
		assert.True(t, d.TreatAsNotified)
		assert.False(t, d.Delivers())
		assert.True(t, Decide("other@x.io", in).Delivers())
	})

	t.Run("tagged user on product is denied", func(t *testing.T) {
		activity := &models.Activity{Type: models.ActivityTaggedUserOnProduct, Metadata: metadata}
		tags, _ := activity.ParseMetadata()
		in := PermissionInput{Activity: activity, Meta: groupMeta, View: view, Users: users(), Tags: tags}

		d := Decide("tagged@x.io", in)
		assert.False(t, d.Allow)
		assert.True(t, d.TreatAsNotified)
	})

	t.Run("individual tag activity reaches the tagged user", func(t *testing.T) {
		activity := &models.Activity{Type: models.ActivityTaggedUserOnComment, Notify: "tagged@x.io", Metadata: metadata}
		tags, _ := activity.ParseMetadata()
		in := PermissionInput{Activity: activity, Meta: singleMeta, View: view, Users: users(), Tags: tags}

		assert.True(t, Decide("tagged@x.io", in).Delivers())
	})
}

func TestDecideReplySubsumesCommentAuthor(t *testing.T) {
	doc := productDoc("CONFIRMED", "HARDGOODS", "T1")
	doc["comment"] = map[string]any{"createdBy": "author@x.io"}
	view := viewOf(t, doc)

	for _, activityType := range []string{models.ActivityReplyCommentOnProduct, models.ActivityInternalReplyCommentOnProduct} {
		in := PermissionInput{Activity: &models.Activity{Type: activityType}, Meta: groupMeta, View: view, Users: users()}
		assert.True(t, Decide("author@x.io", in).TreatAsNotified, activityType)
		assert.False(t, Decide("someone@x.io", in).TreatAsNotified, activityType)
	}

	detached := map[string]any{
		"comment": map[string]any{"createdBy": "author@x.io"},
		"reply":   map[string]any{"createdBy": "replier@x.io"},
	}
	in := PermissionInput{Activity: &models.Activity{Type: models.ActivityReplyOnComment}, Meta: singleMeta, View: viewOf(t, detached), Users: users()}
	assert.True(t, Decide("replier@x.io", in).TreatAsNotified)
	assert.False(t, Decide("author@x.io", in).TreatAsNotified)
}
