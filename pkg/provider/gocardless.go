package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "https://bankaccountdata.gocardless.com/api/v2"

	defaultTimeout = 30 * time.Second
	// refresh slightly before the provider-reported expiry to avoid
	// racing the deadline mid-request
	tokenExpirySlack = 60 * time.Second
)

// tokenCache holds the current access token and its expiry. It is owned
// by the client instance; there is no package-level token state.
type tokenCache struct {
	access    string
	expiresAt time.Time
}

func (t *tokenCache) valid(now time.Time) bool {
	return t.access != "" && now.Before(t.expiresAt)
}

// GoCardlessClient talks to a GoCardless-style bank-data API
type GoCardlessClient struct {
	baseURL    string
	secretId   string
	secretKey  string
	httpClient *http.Client
	token      tokenCache
	now        func() time.Time
}

// NewGoCardlessClient creates a client for the given credentials. The
// first authenticated call obtains a token lazily.
func NewGoCardlessClient(baseURL, secretId, secretKey string) *GoCardlessClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GoCardlessClient{
		baseURL:   baseURL,
		secretId:  secretId,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		now: time.Now,
	}
}

// WithTransport replaces the underlying HTTP transport, e.g. to install
// the debug round tripper
func (c *GoCardlessClient) WithTransport(rt http.RoundTripper) *GoCardlessClient {
	c.httpClient.Transport = rt
	return c
}

type tokenResponse struct {
	Access        string `json:"access"`
	AccessExpires int    `json:"access_expires"`
}

// refreshIfExpired obtains a fresh access token when the cached one is
// missing or past its expiry
func (c *GoCardlessClient) refreshIfExpired(ctx context.Context) error {
	if c.token.valid(c.now()) {
		return nil
	}

	body, err := json.Marshal(map[string]string{
		"secret_id":  c.secretId,
		"secret_key": c.secretKey,
	})
	if err != nil {
		return fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/token/new/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}

	c.token = tokenCache{
		access:    token.Access,
		expiresAt: c.now().Add(time.Duration(token.AccessExpires)*time.Second - tokenExpirySlack),
	}
	log.Debug().Time("expiresAt", c.token.expiresAt).Msg("refreshed provider access token")
	return nil
}

// get performs an authenticated GET and decodes the JSON response into out
func (c *GoCardlessClient) get(ctx context.Context, path string, out any) error {
	if err := c.refreshIfExpired(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token.access)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		io.Copy(io.Discard, resp.Body)
		return &RateLimitedError{RetryAfter: retryAfter}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}

// GetAccountDetails fetches account metadata for one account
func (c *GoCardlessClient) GetAccountDetails(ctx context.Context, accountId string) (*AccountDetails, error) {
	details := &AccountDetails{}
	if err := c.get(ctx, "/accounts/"+accountId+"/details/", details); err != nil {
		return nil, err
	}
	return details, nil
}

// GetAccountBalances fetches the balance list for one account
func (c *GoCardlessClient) GetAccountBalances(ctx context.Context, accountId string) (*BalancesResponse, error) {
	balances := &BalancesResponse{}
	if err := c.get(ctx, "/accounts/"+accountId+"/balances/", balances); err != nil {
		return nil, err
	}
	return balances, nil
}

// GetAccountTransactions fetches booked and pending transactions for one account
func (c *GoCardlessClient) GetAccountTransactions(ctx context.Context, accountId string) (*TransactionsResponse, error) {
	transactions := &TransactionsResponse{}
	if err := c.get(ctx, "/accounts/"+accountId+"/transactions/", transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &APIError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}
