package services

import "github.com/Dias221467/Activity_Notifier/internal/models"

// Decision is the verdict of the permission filter for one candidate.
// TreatAsNotified marks candidates who receive a more specific notification
// through another path and must be skipped by the generic one.
type Decision struct {
	Allow           bool
	TreatAsNotified bool
}

// Delivers reports whether the generic notification goes to the candidate.
func (d Decision) Delivers() bool {
	return d.Allow && !d.TreatAsNotified
}

// PermissionInput is everything the filter looks at. It is shared read-only
// across candidates of one fan-out.
type PermissionInput struct {
	Activity *models.Activity
	Meta     models.ActivityTypeMeta
	View     *EnrichedView
	Users    models.UserDirectory
	Tags     models.ActivityMetadata
}

// Decide applies the visibility rules to candidate. Rules run in order and a
// later rule overrides an earlier one. Self-exclusion of the actor is not
// decided here.
func Decide(candidate string, in PermissionInput) Decision {
	d := Decision{Allow: true}
	activity := in.Activity
	product := in.View.Product
	user := in.Users.Lookup(candidate)
	isBuyer := user != nil && user.IsBuyer

	// buyers only follow products in buyer visible states
	if isBuyer && !product.IsBuyerVisible() {
		d.Allow = false
	}
	if isBuyer && (activity.Type == models.ActivityRemoveBuyer || activity.Type == models.ActivityInviteBuyer) {
		d.Allow = true
	}

	if in.Meta.RequiredPermissionCheck && activity.CommentActivityType != "" {
		d.Allow = CanSeeComment(user, activity.CommentActivityType)
	}

	if activity.Type == models.ActivityEditProduct && isBuyer &&
		string(product.Status) == models.StatusConfirmed && product.IsTextile() {
		d.Allow = false
	}

	if models.IsBuyerScopedActivity(activity.Type) {
		if isBuyer {
			d.Allow = false
			d.TreatAsNotified = false
		} else {
			d.Allow = true
		}
		if activity.Type == models.ActivityRemoveBuyerByProductSupplier && isBuyer &&
			candidate == in.View.PrimaryBuyerEmail() {
			d.Allow = true
		}
	}

	// Tagged users get their own notification. Only the group path sees the
	// tags of other users; an individual tag activity is addressed to the tagged user.
	if in.Meta.Mode == models.ModeGroup && activity.HasMetadata() {
		tagged := in.Tags.IsTagged(candidate)
		d.TreatAsNotified = tagged
		if tagged && activity.Type == models.ActivityTaggedUserOnProduct {
			d.Allow = false
		}
	}

	switch activity.Type {
	case models.ActivityReplyCommentOnProduct, models.ActivityInternalReplyCommentOnProduct:
		if in.View.Has("comment") && candidate == in.View.CreatedByOf("comment") {
			d.TreatAsNotified = true
		}
	case models.ActivityReplyOnComment:
		if in.Meta.Mode == models.ModeIndividual && in.View.Has("comment") && in.View.Has("reply") &&
			candidate == in.View.CreatedByOf("reply") {
			d.TreatAsNotified = true
		}
	}

	return d
}

// CanSeeComment evaluates the comment visibility matrix. Unknown users see nothing.
func CanSeeComment(user *models.UserDetail, commentType string) bool {
	if user == nil {
		return false
	}
	switch {
	case !user.IsBuyer && commentType == models.CommentInternal:
		return user.HasPermission(models.PermissionViewComments)
	case commentType == models.CommentExternal:
		return user.HasPermission(models.PermissionViewBuyerComments)
	case user.IsBuyer && commentType == models.CommentBuyersInternal:
		return user.HasPermission(models.PermissionViewInternalBuyersComments)
	}
	return false
}
