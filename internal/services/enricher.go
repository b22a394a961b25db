package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Dias221467/Activity_Notifier/internal/gateway"
	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ViewKind names the shaping rule that produced an EnrichedView.
type ViewKind int

const (
	// ViewImportSummary replaces the import job with created/failed counts.
	ViewImportSummary ViewKind = iota + 1
	// ViewPrimaryProduct merges the primary product over the target.
	ViewPrimaryProduct
	// ViewTargetProduct nests the primary resource under its name inside the target product.
	ViewTargetProduct
	// ViewDetached nests both resources under their names, on top of the
	// product fetched by id when the activity carries one.
	ViewDetached
)

func (k ViewKind) String() string {
	switch k {
	case ViewImportSummary:
		return "import_summary"
	case ViewPrimaryProduct:
		return "primary_product"
	case ViewTargetProduct:
		return "target_product"
	case ViewDetached:
		return "detached"
	}
	return "unknown"
}

// ImportSummary is the outcome of an import job.
type ImportSummary struct {
	JobID               string
	Status              string
	CreatedProductCount int
	FailedProductCount  int
	FailedProducts      []map[string]any
}

// EnrichedView is the resource context of one activity, shared read-only by
// every candidate task of a fan-out.
type EnrichedView struct {
	Kind ViewKind

	// Resource is the raw primary resource as returned by the gateway.
	Resource map[string]any
	// Target is the raw target resource.
	Target map[string]any

	document map[string]any

	Product models.Product
	Import  *ImportSummary

	ActivityByName      string
	Avatar              string
	PreviousSavedStatus string
	CommentMessage      string
	CommentBoxType      string
}

// Payload returns a fresh copy of the shaped document with the activity
// extras attached. Callers may mutate it.
func (v *EnrichedView) Payload() map[string]any {
	out := make(map[string]any, len(v.document)+8)
	for k, val := range v.document {
		out[k] = val
	}
	if v.Import != nil {
		out["createdProductCount"] = v.Import.CreatedProductCount
		out["failedProductCount"] = v.Import.FailedProductCount
		out["failedProducts"] = v.Import.FailedProducts
	}
	out["activityByName"] = v.ActivityByName
	out["avatar"] = v.Avatar
	if v.PreviousSavedStatus != "" {
		out["previousSavedStatus"] = v.PreviousSavedStatus
	}
	if v.CommentMessage != "" {
		out["comment_message"] = v.CommentMessage
	}
	if v.CommentBoxType != "" {
		out["commentBoxType"] = v.CommentBoxType
	}
	return out
}

// CreatedByOf returns the createdBy of the resource nested under name, or an
// empty string when the view holds no such resource.
func (v *EnrichedView) CreatedByOf(name string) string {
	nested, ok := v.document[name].(map[string]any)
	if !ok {
		return ""
	}
	createdBy, _ := nested["createdBy"].(string)
	return createdBy
}

// Has reports whether a resource is nested under name.
func (v *EnrichedView) Has(name string) bool {
	nested, ok := v.document[name].(map[string]any)
	return ok && len(nested) > 0
}

// PrimaryBuyerEmail returns the primary buyer recorded on the raw primary resource.
func (v *EnrichedView) PrimaryBuyerEmail() string {
	p, err := models.DecodeProduct(v.Resource)
	if err != nil {
		return ""
	}
	return p.PrimaryBuyerEmail()
}

// ResourceEnricher fetches the resources an activity refers to and shapes them.
type ResourceEnricher struct {
	resources ResourceFetcher
}

func NewResourceEnricher(resources ResourceFetcher) *ResourceEnricher {
	return &ResourceEnricher{resources: resources}
}

// Enrich builds the view of activity. Any gateway failure is returned.
func (e *ResourceEnricher) Enrich(ctx context.Context, activity *models.Activity, meta models.ActivityTypeMeta) (*EnrichedView, error) {
	resource := map[string]any{}
	target := map[string]any{}

	if meta.ResourceURL != "" && activity.ResourceID != "" {
		fetched, err := e.resources.Fetch(ctx, gateway.BuildResourceURL(meta.ResourceURL, activity.ResourceID))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch resource: %w", err)
		}
		resource = fetched
	}
	if meta.TargetResourceURL != "" && activity.TargetResourceID != "" {
		fetched, err := e.resources.Fetch(ctx, gateway.BuildResourceURL(meta.TargetResourceURL, activity.TargetResourceID))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch target resource: %w", err)
		}
		target = fetched
	}

	view := &EnrichedView{Resource: resource, Target: target}

	switch {
	case models.IsImportActivity(activity.Type):
		view.Kind = ViewImportSummary
		view.document = copyMap(resource)
		view.Import = summarizeImport(resource)
	case activity.ResourceName == models.ProductResourceName:
		view.Kind = ViewPrimaryProduct
		view.document = mergeOver(target, resource)
	case activity.TargetResourceName == models.ProductResourceName:
		view.Kind = ViewTargetProduct
		view.document = mergeOver(map[string]any{activity.ResourceName: resource}, target)
	default:
		view.Kind = ViewDetached
		base := map[string]any{}
		if activity.ProductID != "" {
			product, err := e.resources.FetchProductByID(ctx, activity.ProductID)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch product %s: %w", activity.ProductID, err)
			}
			base = copyMap(product)
		}
		base[activity.ResourceName] = resource
		if activity.TargetResourceName != "" {
			base[activity.TargetResourceName] = target
		}
		view.document = base
	}

	product, err := models.DecodeProduct(view.document)
	if err != nil {
		logger.Log.WithError(err).WithField("activity_type", activity.Type).Warn("Resource is not a product document")
	}
	view.Product = product

	view.ActivityByName = activity.ActivityByName
	view.Avatar = Initials(activity.ActivityByName)

	if activity.Type == models.ActivityUpdateStatus {
		view.PreviousSavedStatus = PreviousStatus(activity.Message)
	}
	if models.IsCommentActivity(activity.Type) && activity.HasMetadata() {
		md, err := activity.ParseMetadata()
		if err != nil {
			logger.Log.WithError(err).Warn("Failed to parse activity metadata")
		} else {
			view.CommentMessage = md.Message
		}
	}
	view.CommentBoxType = activity.CommentActivityType

	logger.Log.WithFields(logrus.Fields{
		"activity_type": activity.Type,
		"view":          view.Kind.String(),
	}).Debug("Resource enriched")
	return view, nil
}

// Initials returns the first character of every space separated token of name.
func Initials(name string) string {
	var b strings.Builder
	for _, token := range strings.Fields(name) {
		for _, r := range token {
			b.WriteRune(r)
			break
		}
	}
	return b.String()
}

// PreviousStatus extracts the status between " from" and " to" of a status
// change message such as "Status changed from DRAFT to CONFIRMED". It returns
// an empty string for messages of any other shape.
func PreviousStatus(message string) string {
	idx := strings.Index(message, " from")
	if idx < 0 {
		return ""
	}
	rest := message[idx+len(" from"):]
	if next := strings.Index(rest, " from"); next >= 0 {
		rest = rest[:next]
	}
	if to := strings.Index(rest, " to"); to >= 0 {
		rest = rest[:to]
	}
	return strings.TrimSpace(rest)
}

func summarizeImport(job map[string]any) *ImportSummary {
	summary := &ImportSummary{FailedProducts: []map[string]any{}}
	summary.JobID = stringOf(job["jobId"])
	summary.Status, _ = job["status"].(string)

	tasks, _ := job["tasks"].([]any)
	for _, t := range tasks {
		task, _ := t.(map[string]any)
		if stringOf(task["productId"]) != "" {
			summary.CreatedProductCount++
			continue
		}
		summary.FailedProductCount++
		product, err := decodeTaskJSON(task["taskJson"])
		if err != nil {
			logger.Log.WithError(err).WithField("job_id", summary.JobID).Warn("Failed to decode failed import task")
			product = map[string]any{"taskJson": task["taskJson"]}
		}
		summary.FailedProducts = append(summary.FailedProducts, product)
	}
	return summary
}

// decodeTaskJSON decodes the product payload of an import task. The payload
// arrives as a serialized byte buffer ({"type":"Buffer","data":[...]}), a
// byte array, a base64 string, a JSON string or an already decoded object.
func decodeTaskJSON(raw any) (map[string]any, error) {
	var data []byte
	switch v := raw.(type) {
	case map[string]any:
		arr, isBuffer := v["data"].([]any)
		if !isBuffer {
			return v, nil
		}
		b, err := bytesOf(arr)
		if err != nil {
			return nil, err
		}
		data = b
	case []any:
		b, err := bytesOf(v)
		if err != nil {
			return nil, err
		}
		data = b
	case string:
		if decoded, err := base64.StdEncoding.DecodeString(v); err == nil && json.Valid(decoded) {
			data = decoded
		} else {
			data = []byte(v)
		}
	default:
		return nil, fmt.Errorf("unsupported task payload %T", raw)
	}

	var product map[string]any
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("invalid task payload: %w", err)
	}
	return product, nil
}

func bytesOf(arr []any) ([]byte, error) {
	out := make([]byte, len(arr))
	for i, x := range arr {
		n, ok := x.(float64)
		if !ok || n < 0 || n > 255 {
			return nil, fmt.Errorf("invalid byte at %d", i)
		}
		out[i] = byte(n)
	}
	return out, nil
}

func stringOf(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return fmt.Sprintf("%.0f", s)
	case json.Number:
		return s.String()
	}
	return ""
}

func copyMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// mergeOver returns base with every key of top written over it.
func mergeOver(base, top map[string]any) map[string]any {
	out := copyMap(base)
	for k, v := range top {
		out[k] = v
	}
	return out
}
