package comanda

import (
	"context"

	"github.com/appetiteclub/apt"
)

// PrivilegedRoles may cancel items, administer tables, and settle bills.
var PrivilegedRoles = []string{"cashier", "manager", "owner", "admin"}

// RoleChecker asks the authorization collaborator whether a user holds any of
// the given roles.
type RoleChecker interface {
	HasRole(ctx context.Context, userID string, roles []string) (bool, error)
}

// AuthzClient checks roles against the authz service.
type AuthzClient struct {
	client *apt.ServiceClient
	logger apt.Logger
}

func NewAuthzClient(client *apt.ServiceClient, logger apt.Logger) *AuthzClient {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &AuthzClient{client: client, logger: logger}
}

func (c *AuthzClient) HasRole(ctx context.Context, userID string, roles []string) (bool, error) {
	body := map[string]interface{}{
		"user_id": userID,
		"roles":   roles,
	}

	resp, err := c.client.Request(ctx, "POST", "/roles/check", body)
	if err != nil {
		return false, err
	}

	var result struct {
		Allowed bool `json:"allowed"`
	}
	if err := rehydrate(resp.Data, &result); err != nil {
		return false, err
	}
	return result.Allowed, nil
}

// AllowAllChecker grants every request. Used in development and tests where
// no authz service runs.
type AllowAllChecker struct{}

func (AllowAllChecker) HasRole(ctx context.Context, userID string, roles []string) (bool, error) {
	return true, nil
}
