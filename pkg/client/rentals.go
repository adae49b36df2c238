package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"carrental/pkg/model"
)

// RentalsClient talks to the rentals service over HTTP.
type RentalsClient struct {
	httpClient *HttpClient
}

type Metadata struct {
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
	HasMore    bool  `json:"has_more"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rentals api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func NewRentalsClient(baseURL string, opts ...Option) *RentalsClient {
	return &RentalsClient{
		httpClient: NewHttpClient(baseURL, opts...),
	}
}

// WaitForReady blocks until the service reports ready, see HttpClient.WaitForReady.
func (c *RentalsClient) WaitForReady(ctx context.Context, maxWait time.Duration) error {
	return c.httpClient.WaitForReady(ctx, maxWait)
}

func (c *RentalsClient) Quote(ctx context.Context, req model.RentalWindowRequest) (*model.Quote, error) {
	var quote model.Quote
	if err := c.call(ctx, http.MethodPost, "/api/v1/rentals/quote", req, nil, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (c *RentalsClient) Availability(ctx context.Context, req model.AvailabilityRequest) ([]model.AvailableCar, error) {
	var cars []model.AvailableCar
	if err := c.call(ctx, http.MethodPost, "/api/v1/rentals/availability", req, nil, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

// Book creates a rental. A non-empty idempotencyKey makes retries safe.
func (c *RentalsClient) Book(ctx context.Context, req model.CreateRentalRequest, idempotencyKey string) (*model.Rental, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}

	var rental model.Rental
	if err := c.call(ctx, http.MethodPost, "/api/v1/rentals", req, headers, &rental); err != nil {
		return nil, err
	}
	return &rental, nil
}

func (c *RentalsClient) GetByID(ctx context.Context, id string) (*model.Rental, error) {
	var rental model.Rental
	if err := c.call(ctx, http.MethodGet, rentalPath(id, ""), nil, nil, &rental); err != nil {
		return nil, err
	}
	return &rental, nil
}

func (c *RentalsClient) ListByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.RentalView, *Metadata, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	path := "/api/v1/customers/" + url.PathEscape(customerID) + "/rentals?" + q.Encode()

	resp, err := c.httpClient.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, nil, err
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
		Metadata
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp: %s: %w", resp.ToString(), err)
	}

	var rentals []*model.RentalView
	if err := json.Unmarshal(wrapper.Data, &rentals); err != nil {
		return nil, nil, fmt.Errorf("could not decode rental list: %s: %w", resp.ToString(), err)
	}
	return rentals, &wrapper.Metadata, nil
}

func (c *RentalsClient) Cancel(ctx context.Context, id string) (*model.Rental, error) {
	return c.transition(ctx, http.MethodPost, rentalPath(id, "/cancel"), nil)
}

func (c *RentalsClient) Reschedule(ctx context.Context, id string, req model.RescheduleRequest) (*model.Rental, error) {
	return c.transition(ctx, http.MethodPatch, rentalPath(id, "/dates"), req)
}

func (c *RentalsClient) Pay(ctx context.Context, id string, req model.PaymentRequest) (*model.Rental, error) {
	return c.transition(ctx, http.MethodPost, rentalPath(id, "/payments"), req)
}

func (c *RentalsClient) Approve(ctx context.Context, id string) (*model.Rental, error) {
	return c.transition(ctx, http.MethodPost, rentalPath(id, "/approve"), nil)
}

func (c *RentalsClient) Submit(ctx context.Context, id string) (*model.Rental, error) {
	return c.transition(ctx, http.MethodPost, rentalPath(id, "/submit"), nil)
}

func (c *RentalsClient) RedeemableCash(ctx context.Context, customerID string) (*model.RedeemableCash, error) {
	var cash model.RedeemableCash
	path := "/api/v1/customers/" + url.PathEscape(customerID) + "/redeemable-cash"
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &cash); err != nil {
		return nil, err
	}
	return &cash, nil
}

func (c *RentalsClient) transition(ctx context.Context, method, path string, body any) (*model.Rental, error) {
	var rental model.Rental
	if err := c.call(ctx, method, path, body, nil, &rental); err != nil {
		return nil, err
	}
	return &rental, nil
}

func (c *RentalsClient) call(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	// the service wants a JSON body on every write, even an empty one
	if method != http.MethodGet && body == nil {
		body = struct{}{}
	}
	resp, err := c.httpClient.Do(ctx, method, path, body, headers)
	if err != nil {
		return err
	}
	if err := checkStatus(resp); err != nil {
		return err
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return fmt.Errorf("could not decode response wrapper: %s: %w", resp.ToString(), err)
	}
	if err := json.Unmarshal(wrapper.Data, out); err != nil {
		return fmt.Errorf("could not decode response data: %s: %w", resp.ToString(), err)
	}
	return nil
}

func checkStatus(resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := resp.DecodeJSON(&envelope); err != nil {
		envelope.Message = string(resp.Body)
	}
	if envelope.Message == "" {
		envelope.Message = envelope.Code
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       envelope.Code,
		Message:    envelope.Message,
	}
}

func rentalPath(id, suffix string) string {
	return "/api/v1/rentals/id/" + url.PathEscape(id) + suffix
}
