package price

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"kc-mini-app-backend/internal/common/cache"
	"kc-mini-app-backend/internal/common/logger"
	"kc-mini-app-backend/internal/metrics"
)

// Client looks up the spot price of one asset in one fiat currency via a
// CoinGecko compatible /simple/price endpoint.
type Client struct {
	baseURL    string
	asset      string
	currency   string
	httpClient *http.Client
	cache      *cache.CacheService
	ttl        time.Duration
}

type Config struct {
	BaseURL  string
	Asset    string
	Currency string
	CacheTTL time.Duration
}

// NewClient builds a client. cache may be nil, then every Quote hits the API.
func NewClient(cfg Config, c *cache.CacheService) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.coingecko.com/api/v3"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		asset:      cfg.Asset,
		currency:   strings.ToLower(cfg.Currency),
		httpClient: &http.Client{Timeout: 8 * time.Second},
		cache:      c,
		ttl:        cfg.CacheTTL,
	}
}

func (c *Client) cacheKey() string {
	return fmt.Sprintf("price:%s:%s", c.asset, c.currency)
}

// Quote returns the price of one unit of the asset, served from cache when fresh.
func (c *Client) Quote(ctx context.Context) (decimal.Decimal, error) {
	if c.cache != nil {
		var cached string
		err := c.cache.Get(ctx, c.cacheKey(), &cached)
		if err == nil {
			if p, perr := decimal.NewFromString(cached); perr == nil {
				return p, nil
			}
		} else if !stderrors.Is(err, cache.ErrMiss) {
			logger.Warn().Err(err).Msg("Price cache read failed")
		}
	}
	return c.Refresh(ctx)
}

// Refresh fetches the price and overwrites the cached value.
func (c *Client) Refresh(ctx context.Context) (decimal.Decimal, error) {
	p, err := c.fetch(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, c.cacheKey(), p.String(), c.ttl); err != nil {
			logger.Warn().Err(err).Msg("Price cache write failed")
		}
	}
	metrics.SetPriceQuote(p.InexactFloat64())
	return p, nil
}

func (c *Client) fetch(ctx context.Context) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("ids", c.asset)
	q.Set("vs_currencies", c.currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("price api http %d", resp.StatusCode)
	}

	var out map[string]map[string]json.Number
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return decimal.Zero, fmt.Errorf("decode price response: %w", err)
	}

	raw, ok := out[c.asset][c.currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("price for %s/%s missing in response", c.asset, c.currency)
	}
	p, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	if !p.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive price %s", p)
	}
	return p, nil
}
