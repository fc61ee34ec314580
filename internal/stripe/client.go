// Package stripe is a minimal client for the two gateway calls the
// storefront needs: create a customer from a card token, then charge it.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

const defaultBaseURL = "https://api.stripe.com/v1"

const defaultTimeout = 10 * time.Second

type Client struct {
	httpClient *http.Client
	secretKey  string
	baseURL    string
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func NewClient(secretKey string, opts ...Option) port.PaymentGateway {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		secretKey:  secretKey,
		baseURL:    defaultBaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type customerResponse struct {
	ID string `json:"id"`
}

type chargeResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) CreateCustomer(ctx context.Context, email, cardToken string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("source", cardToken)

	var resp customerResponse
	if err := c.post(ctx, "/customers", form, &resp); err != nil {
		return "", fmt.Errorf("post /customers: %w", err)
	}

	return resp.ID, nil
}

func (c *Client) CreateCharge(ctx context.Context, charge port.ChargeRequest) (string, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(charge.AmountMinor, 10))
	form.Set("currency", charge.Currency)
	form.Set("description", charge.Description)
	form.Set("customer", charge.CustomerID)

	var resp chargeResponse
	if err := c.post(ctx, "/charges", form, &resp); err != nil {
		return "", fmt.Errorf("post /charges: %w", err)
	}

	return resp.ID, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.secretKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// transport failures and timeouts are retryable by the user,
		// never retried automatically to avoid duplicate charges
		return errors.Join(domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Join(domain.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("gateway status %d: %w", resp.StatusCode, domain.ErrGatewayUnavailable)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr errorResponse
		_ = json.Unmarshal(body, &apiErr)

		if apiErr.Error.Type == "card_error" {
			return fmt.Errorf("%s: %w", apiErr.Error.Message, domain.ErrPaymentDeclined)
		}

		return fmt.Errorf("gateway status %d %s: %w", resp.StatusCode, apiErr.Error.Message, domain.ErrGatewayUnavailable)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return nil
}
