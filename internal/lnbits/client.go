package lnbits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrUnauthorized means the API key was rejected. Callers must not
	// spin-retry on it.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTransient covers timeouts, connection failures and 5xx responses.
	// Safe to retry on the next tick.
	ErrTransient = errors.New("transient provider error")

	// ErrMalformed means the provider answered with an unexpected schema.
	// Treated like a transient failure by callers.
	ErrMalformed = errors.New("malformed provider response")

	ErrNotFound = errors.New("not found")
)

// Client is a read-only LNbits HTTP client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new LNbits client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: API error %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: API error %d", ErrTransient, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(data))
	}

	return data, nil
}

// GetWalletBalance returns the current wallet balance in msat
func (c *Client) GetWalletBalance(ctx context.Context) (int64, error) {
	data, err := c.doRequest(ctx, "/api/v1/wallet")
	if err != nil {
		return 0, err
	}

	var w Wallet
	if err := json.Unmarshal(data, &w); err != nil {
		return 0, fmt.Errorf("%w: unmarshal wallet: %v", ErrMalformed, err)
	}

	return w.Balance, nil
}

// ListPayments returns up to limit most recent payments, newest first,
// in provider order.
func (c *Client) ListPayments(ctx context.Context, limit int) ([]Payment, error) {
	path := fmt.Sprintf("/api/v1/payments?limit=%d&direction=desc&sortby=time", limit)
	data, err := c.doRequest(ctx, path)
	if err != nil {
		return nil, err
	}

	var payments []Payment
	if err := json.Unmarshal(data, &payments); err != nil {
		return nil, fmt.Errorf("%w: unmarshal payments: %v", ErrMalformed, err)
	}

	return payments, nil
}

// GetPayLinks returns the LNURLp extension pay links
func (c *Client) GetPayLinks(ctx context.Context) ([]PayLink, error) {
	data, err := c.doRequest(ctx, "/lnurlp/api/v1/links")
	if err != nil {
		return nil, err
	}

	var links []PayLink
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("%w: unmarshal pay links: %v", ErrMalformed, err)
	}

	return links, nil
}

// GetPayLink returns a single pay link by id
func (c *Client) GetPayLink(ctx context.Context, id string) (*PayLink, error) {
	links, err := c.GetPayLinks(ctx)
	if err != nil {
		return nil, err
	}

	for i := range links {
		if links[i].ID == id {
			return &links[i], nil
		}
	}

	return nil, fmt.Errorf("%w: pay link %s", ErrNotFound, id)
}
