package client

import (
	"context"
	"net/http"
	"net/url"

	"propertypal/internal/domain"
)

// MembersClient remote Members API
type MembersClient struct {
	api *APIClient
}

func NewMembersClient(api *APIClient) *MembersClient {
	return &MembersClient{api: api}
}

// List returns all members, or only those of propertyID when it is set.
func (c *MembersClient) List(ctx context.Context, propertyID string) ([]domain.Member, error) {
	path := "/members"
	if propertyID != "" {
		path += "?propertyId=" + url.QueryEscape(propertyID)
	}
	var out []domain.Member
	if err := c.api.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MembersClient) Create(ctx context.Context, in domain.MemberInput) (*domain.Member, error) {
	var out domain.Member
	if err := c.api.Do(ctx, http.MethodPost, "/members", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *MembersClient) Update(ctx context.Context, id string, patch domain.MemberPatch) (*domain.Member, error) {
	var out domain.Member
	if err := c.api.Do(ctx, http.MethodPut, "/members/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *MembersClient) Remove(ctx context.Context, id string) error {
	return c.api.Do(ctx, http.MethodDelete, "/members/"+url.PathEscape(id), nil, nil)
}
