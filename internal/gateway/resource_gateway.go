package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/Dias221467/Activity_Notifier/pkg/httpclient"
	"github.com/Dias221467/Activity_Notifier/pkg/logger"
)

// ProductByIDPath is the resource path of a product looked up by id.
const ProductByIDPath = "/api/product/:id"

// notificationMarker tells the resource service the fetch is for a
// notification, so it skips side effects such as view tracking.
const notificationMarker = "?notification=true"

// envelope is the response shape shared by the sibling services.
type envelope[T any] struct {
	Data struct {
		Result T `json:"result"`
	} `json:"data"`
}

// ResourceGateway fetches resource documents from the resource service.
type ResourceGateway struct {
	client *httpclient.Client
}

func NewResourceGateway(client *httpclient.Client) *ResourceGateway {
	return &ResourceGateway{client: client}
}

// BuildResourceURL substitutes the escaped id into the template and appends
// the notification marker for product resources.
func BuildResourceURL(template, id string) string {
	path := strings.Replace(template, ":id", url.PathEscape(id), 1)
	if strings.Contains(template, models.ProductResourceName) {
		path += notificationMarker
	}
	return path
}

// Fetch returns data.result of the document at path. A null result is
// returned as an empty map.
func (g *ResourceGateway) Fetch(ctx context.Context, path string) (map[string]any, error) {
	var resp envelope[map[string]any]
	if err := g.client.GetJSON(ctx, path, &resp); err != nil {
		logger.Log.WithError(err).WithField("path", path).Error("Failed to fetch resource")
		return nil, fmt.Errorf("failed to fetch resource %s: %w", path, err)
	}
	if resp.Data.Result == nil {
		return map[string]any{}, nil
	}
	return resp.Data.Result, nil
}

// FetchProductByID fetches a product document by id.
func (g *ResourceGateway) FetchProductByID(ctx context.Context, productID string) (map[string]any, error) {
	return g.Fetch(ctx, BuildResourceURL(ProductByIDPath, productID))
}
