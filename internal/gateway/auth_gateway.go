package gateway

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Dias221467/Activity_Notifier/internal/models"
	"github.com/Dias221467/Activity_Notifier/pkg/httpclient"
	"github.com/Dias221467/Activity_Notifier/pkg/logger"
	"github.com/sirupsen/logrus"
)

const (
	userDetailsPath         = "/api/users/details"
	userDepartmentEmailPath = "/api/users/department/emails"
)

// AuthGateway talks to the auth/directory service.
type AuthGateway struct {
	client *httpclient.Client
}

func NewAuthGateway(client *httpclient.Client) *AuthGateway {
	return &AuthGateway{client: client}
}

// FetchUserDetails returns the directory entries, optionally narrowed to userType.
func (g *AuthGateway) FetchUserDetails(ctx context.Context, userType string) ([]models.UserDetail, error) {
	path := userDetailsPath
	if userType != "" {
		path += "?userType=" + url.QueryEscape(userType)
	}

	var resp envelope[[]models.UserDetail]
	if err := g.client.GetJSON(ctx, path, &resp); err != nil {
		logger.Log.WithError(err).Error("Failed to fetch user details")
		return nil, fmt.Errorf("failed to fetch user details: %w", err)
	}
	return resp.Data.Result, nil
}

type departmentEmailRequest struct {
	ProductType string   `json:"productType"`
	Departments []string `json:"departments"`
	MerchID     *string  `json:"merchId"`
}

// FetchUserDepartmentEmailIDs returns the email ids of each requested
// department, keyed by department. An empty merchID is sent as null.
func (g *AuthGateway) FetchUserDepartmentEmailIDs(ctx context.Context, productType string, departments []string, merchID string) (map[string][]string, error) {
	req := departmentEmailRequest{ProductType: productType, Departments: departments}
	if merchID != "" {
		req.MerchID = &merchID
	}

	var resp envelope[map[string][]string]
	if err := g.client.PostJSON(ctx, userDepartmentEmailPath, req, &resp); err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"product_type": productType,
			"departments":  departments,
		}).Error("Failed to fetch user department email ids")
		return nil, fmt.Errorf("failed to fetch department email ids: %w", err)
	}
	if resp.Data.Result == nil {
		return map[string][]string{}, nil
	}
	return resp.Data.Result, nil
}
