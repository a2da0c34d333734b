package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrRateUnavailable covers every "no rate right now" outcome: unknown
// symbol, timeout, non-2xx response, malformed payload. None of them are
// process-fatal and none are retried here.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// providerIDs maps trade symbols to the quote provider's asset identifiers.
var providerIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"USDT": "tether",
}

type Client struct {
	baseURL    string
	fiatCode   string
	httpClient *http.Client
}

func NewClient(baseURL, fiatCurrency string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		fiatCode:   strings.ToLower(fiatCurrency),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Rate fetches how many fiat units one unit of the asset is worth. Every
// settlement call re-fetches; there is no cache and no retry.
func (c *Client) Rate(ctx context.Context, symbol string) (decimal.Decimal, error) {
	assetID, ok := providerIDs[strings.ToUpper(symbol)]
	if !ok {
		return decimal.Zero, ErrRateUnavailable
	}
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		c.baseURL, url.QueryEscape(assetID), url.QueryEscape(c.fiatCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, ErrRateUnavailable
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, ErrRateUnavailable
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decimal.Zero, ErrRateUnavailable
	}

	var payload map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, ErrRateUnavailable
	}
	rate, ok := payload[assetID][c.fiatCode]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, ErrRateUnavailable
	}
	return rate, nil
}
