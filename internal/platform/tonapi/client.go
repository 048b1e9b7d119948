// Package tonapi reads on-chain wallet balances from TonAPI.
package tonapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const nanoDecimals = 9

// Client implements balance checks via TonAPI HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "https://tonapi.io"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
}

// Balance returns the native TON balance of address.
func (c *Client) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	var out struct {
		Balance json.Number `json:"balance"`
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/accounts/"+url.PathEscape(address), nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("tonapi http %d", resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return decimal.Zero, err
	}

	nano, err := decimal.NewFromString(out.Balance.String())
	if err != nil || nano.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid balance format %q", out.Balance)
	}
	return nano.Shift(-nanoDecimals), nil
}
