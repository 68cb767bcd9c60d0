// Package client talks to a running storefront API over HTTP.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Shubz284/biryani-house/internal/models"
	"github.com/Shubz284/biryani-house/internal/patterns"
)

// Config locates the API.
type Config struct {
	// BaseURL includes the API prefix, e.g. http://localhost:5000/api.
	BaseURL string
	Timeout time.Duration
	// Retries applies to reads only.
	Retries int
}

// Client is a typed storefront API client
type Client struct {
	reads   *resty.Client
	writes  *resty.Client
	circuit *patterns.CircuitBreakerWrapper
}

type errorBody struct {
	Error  string              `json:"error"`
	Issues []models.FieldIssue `json:"issues"`
}

// New creates a client for cfg.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = patterns.DefaultTimeout
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	return &Client{
		reads: resty.New().
			SetBaseURL(base).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json").
			SetRetryCount(cfg.Retries).
			SetRetryWaitTime(100 * time.Millisecond).
			SetRetryMaxWaitTime(time.Second).
			AddRetryCondition(retryableRead),
		writes: resty.New().
			SetBaseURL(base).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json").
			SetRetryCount(0), // a retried POST could place an order twice
		circuit: patterns.NewCircuitBreakerWithSettings("StorefrontAPI", "storefront-cli", patterns.BreakerSettings{
			IsFailure: countsAgainstServer,
		}),
	}
}

func retryableRead(r *resty.Response, err error) bool {
	if r == nil {
		return err != nil
	}
	return err != nil || r.StatusCode() == http.StatusServiceUnavailable || r.StatusCode() == http.StatusBadGateway
}

// countsAgainstServer keeps the caller's own mistakes from opening the circuit.
func countsAgainstServer(err error) bool {
	var verr *models.ValidationError
	return !errors.As(err, &verr) && !errors.Is(err, models.ErrNotFound)
}

// call runs one request through the circuit breaker and decodes failures.
func (c *Client) call(op string, send func() (*resty.Response, error)) error {
	_, err := c.circuit.Execute(func() (interface{}, error) {
		resp, err := send()
		if err != nil {
			return nil, fmt.Errorf("HTTP error: %w", err)
		}
		if resp.IsError() {
			return nil, decodeError(op, resp)
		}
		return nil, nil
	})
	return patterns.FormatError("StorefrontAPI", err)
}

func decodeError(op string, resp *resty.Response) error {
	body, _ := resp.Error().(*errorBody)
	msg := http.StatusText(resp.StatusCode())
	if body != nil && body.Error != "" {
		msg = body.Error
	}
	switch resp.StatusCode() {
	case http.StatusBadRequest:
		if body != nil && len(body.Issues) > 0 {
			return &models.ValidationError{Issues: body.Issues}
		}
		return models.Invalid("request", msg)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, models.ErrNotFound)
	case http.StatusServiceUnavailable:
		return &models.TransientError{Op: op, Err: errors.New(msg)}
	}
	return fmt.Errorf("%s: server returned %d: %s", op, resp.StatusCode(), msg)
}

// ListMenuItems fetches the menu.
func (c *Client) ListMenuItems(ctx context.Context, filter models.MenuFilter) ([]models.MenuItem, error) {
	var items []models.MenuItem
	req := c.reads.R().SetContext(ctx).SetResult(&items).SetError(&errorBody{})
	if filter.Category != nil {
		req.SetQueryParam("category", filter.Category.String())
	}
	if filter.IsFeatured != nil {
		req.SetQueryParam("is_featured", strconv.FormatBool(*filter.IsFeatured))
	}
	if filter.Available != nil {
		req.SetQueryParam("available", strconv.FormatBool(*filter.Available))
	}
	err := c.call("menu.list", func() (*resty.Response, error) { return req.Get("/menu-items") })
	return items, err
}

// GetMenuItem fetches one menu item.
func (c *Client) GetMenuItem(ctx context.Context, id string) (models.MenuItem, error) {
	var item models.MenuItem
	err := c.call("menu.get", func() (*resty.Response, error) {
		return c.reads.R().SetContext(ctx).
			SetPathParam("id", id).
			SetResult(&item).SetError(&errorBody{}).
			Get("/menu-items/{id}")
	})
	return item, err
}

// SubmitOrder places an order. It satisfies cart.Submitter.
func (c *Client) SubmitOrder(ctx context.Context, sub models.OrderSubmission) (models.Order, error) {
	var order models.Order
	err := c.call("order.create", func() (*resty.Response, error) {
		return c.writes.R().SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(sub).
			SetResult(&order).SetError(&errorBody{}).
			Post("/orders")
	})
	return order, err
}

// ListOrders fetches orders; empty arguments are left out of the query.
func (c *Client) ListOrders(ctx context.Context, status, phone, sort string) ([]models.OrderView, error) {
	var views []models.OrderView
	req := c.reads.R().SetContext(ctx).SetResult(&views).SetError(&errorBody{})
	for key, value := range map[string]string{"status": status, "customer_phone": phone, "sort": sort} {
		if value != "" {
			req.SetQueryParam(key, value)
		}
	}
	err := c.call("order.list", func() (*resty.Response, error) { return req.Get("/orders") })
	return views, err
}

// GetOrder fetches one order with its lines joined to the menu.
func (c *Client) GetOrder(ctx context.Context, id string) (models.OrderView, error) {
	var view models.OrderView
	err := c.call("order.get", func() (*resty.Response, error) {
		return c.reads.R().SetContext(ctx).
			SetPathParam("id", id).
			SetResult(&view).SetError(&errorBody{}).
			Get("/orders/{id}")
	})
	return view, err
}

// SetOrderStatus moves an order to status.
func (c *Client) SetOrderStatus(ctx context.Context, id, status string) (models.Order, error) {
	var order models.Order
	err := c.call("order.set_status", func() (*resty.Response, error) {
		return c.writes.R().SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetPathParam("id", id).
			SetBody(models.StatusUpdateRequest{Status: status}).
			SetResult(&order).SetError(&errorBody{}).
			Patch("/orders/{id}/status")
	})
	return order, err
}
