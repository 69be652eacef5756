package client

import (
	"context"
	"net/http"
	"net/url"

	"propertypal/internal/domain"
)

// PaymentsClient remote Payments API
type PaymentsClient struct {
	api *APIClient
}

func NewPaymentsClient(api *APIClient) *PaymentsClient {
	return &PaymentsClient{api: api}
}

// List returns all payments, or only those of memberID when it is set.
func (c *PaymentsClient) List(ctx context.Context, memberID string) ([]domain.Payment, error) {
	path := "/payments"
	if memberID != "" {
		path += "?memberId=" + url.QueryEscape(memberID)
	}
	var out []domain.Payment
	if err := c.api.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PaymentsClient) Get(ctx context.Context, id string) (*domain.Payment, error) {
	var out domain.Payment
	if err := c.api.Do(ctx, http.MethodGet, "/payments/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *PaymentsClient) Create(ctx context.Context, in domain.PaymentInput) (*domain.Payment, error) {
	var out domain.Payment
	if err := c.api.Do(ctx, http.MethodPost, "/payments", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *PaymentsClient) Update(ctx context.Context, id string, patch domain.PaymentPatch) (*domain.Payment, error) {
	var out domain.Payment
	if err := c.api.Do(ctx, http.MethodPut, "/payments/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *PaymentsClient) Remove(ctx context.Context, id string) error {
	return c.api.Do(ctx, http.MethodDelete, "/payments/"+url.PathEscape(id), nil, nil)
}
