package models

// Activity types referenced by the fan-out rules.
const (
	ActivityUpdateStatus                  = "UPDATE_STATUS"
	ActivityEditProduct                   = "EDIT_PRODUCT"
	ActivityProductLockRelease            = "PRODUCT_LOCK_RELEASE"
	ActivityCommentOnProduct              = "COMMENT_ON_PRODUCT"
	ActivityInternalCommentOnProduct      = "INTERNAL_COMMENT_ON_PRODUCT"
	ActivityReplyCommentOnProduct         = "REPLY_COMMENT_ON_PRODUCT"
	ActivityInternalReplyCommentOnProduct = "INTERNAL_REPLY_COMMENT_ON_PRODUCT"
	ActivityReplyOnComment                = "REPLY_ON_COMMENT"
	ActivityTaggedUserOnComment           = "TAGGED_USER_ON_COMMENT"
	ActivityTaggedUserOnReply             = "TAGGED_USER_ON_REPLY"
	ActivityTaggedUserOnProduct           = "TAGGED_USER_ON_PRODUCT"
	ActivityInviteBuyer                   = "INVITE_BUYER"
	ActivityRemoveBuyer                   = "REMOVE_BUYER"
	ActivityInviteBuyerByProductBuyer     = "INVITE_BUYER_BY_PRODUCT_BUYER"
	ActivityRemoveBuyerByProductBuyer     = "REMOVE_BUYER_BY_PRODUCT_BUYER"
	ActivityInviteBuyerByProductSupplier  = "INVITE_BUYER_BY_PRODUCT_SUPPLIER"
	ActivityRemoveBuyerByProductSupplier  = "REMOVE_BUYER_BY_PRODUCT_SUPPLIER"
	ActivityImportProductDone             = "IMPORT_PRODUCT_DONE"
	ActivityImportProductFailed           = "IMPORT_PRODUCT_FAILED"
	ActivityImportProductIncomplete       = "IMPORT_PRODUCT_INCOMPLETE"
)

// Comment visibility classes carried in Activity.CommentActivityType.
const (
	CommentInternal       = "INTERNAL"
	CommentExternal       = "EXTERNAL"
	CommentBuyersInternal = "BUYERS_INTERNAL"
)

// Permissions checked by the comment visibility matrix.
const (
	PermissionViewComments               = "VIEW_COMMENTS"
	PermissionViewBuyerComments          = "VIEW_BUYER_COMMENTS"
	PermissionViewInternalBuyersComments = "VIEW_INTERNAL_BUYERS_COMMENTS"
)

// Product and job states.
const (
	ProductResourceName = "product"
	ProductTypeTextile  = "TEXTILE"
	StatusConfirmed     = "CONFIRMED"

	JobStatusProcessed  = "PROCESSED"
	JobStatusFailed     = "FAILED"
	JobStatusIncomplete = "INCOMPLETE"
)

// Departments.
const (
	DepartmentAllMerchandiser = "ALL_MERCHANDISER"
	DepartmentMerchandiser    = "MERCHANDISER"

	CategoryTextile   = "Textile"
	CategoryHardgoods = "Hardgoods"
)

// Import notification constants.
const (
	ImportProductReferenceType = "import"
	ImportProductName          = "Import Products"
)

// Realtime event types that are not activity types.
const EventPageRefresh = "PAGE_REFRESH"

// BuyerStatuses lists the product statuses a buyer may be notified about.
var BuyerStatuses = []string{"CONFIRMED", "TP_READY", "IN_PRODUCTION", "SHIPPED", "DELIVERED"}

// IsImportActivity reports whether t is one of the import job activity types.
func IsImportActivity(t string) bool {
	switch t {
	case ActivityImportProductDone, ActivityImportProductFailed, ActivityImportProductIncomplete:
		return true
	}
	return false
}

// IsCommentActivity reports whether t carries a comment text in its metadata.
func IsCommentActivity(t string) bool {
	switch t {
	case ActivityInternalCommentOnProduct, ActivityCommentOnProduct,
		ActivityTaggedUserOnComment, ActivityTaggedUserOnReply,
		ActivityReplyCommentOnProduct, ActivityInternalReplyCommentOnProduct:
		return true
	}
	return false
}

// IsBuyerScopedActivity reports whether t is an invite/remove initiated from the
// buyer or supplier side of a product.
func IsBuyerScopedActivity(t string) bool {
	switch t {
	case ActivityInviteBuyerByProductBuyer, ActivityRemoveBuyerByProductBuyer,
		ActivityInviteBuyerByProductSupplier, ActivityRemoveBuyerByProductSupplier:
		return true
	}
	return false
}
