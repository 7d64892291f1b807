package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jesses-code-adventures/biz/internal/models"
)

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	return getList[models.User](ctx, c, "/api/users", nil, "users")
}

func (c *Client) GetProfile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := c.call(ctx, http.MethodGet, "/api/profile", nil, nil, "profile", &p); err != nil {
		return nil, err
	}
	if p.ID == "" && p.Email == "" {
		return nil, fmt.Errorf("%w: GET /api/profile: profile without id or email", ErrMalformedResponse)
	}
	return &p, nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return getList[models.Customer](ctx, c, "/api/customers", nil, "customers")
}

func (c *Client) SearchCustomers(ctx context.Context, query string) ([]models.Customer, error) {
	return getList[models.Customer](ctx, c, "/api/customers/search", url.Values{"query": {query}}, "customers")
}

// ListAccounts returns the chart of accounts. Unlike the rest of the API it is
// not mounted under /api.
func (c *Client) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return getList[models.Account](ctx, c, "/accounts", nil, "accounts")
}

func (c *Client) ListProducts(ctx context.Context) ([]models.ProductService, error) {
	return getList[models.ProductService](ctx, c, "/api/products-services", nil, "products")
}
