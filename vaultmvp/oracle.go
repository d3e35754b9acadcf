package vaultmvp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceScale is the fixed-point scale shared with the on-chain program: all
// USD prices are integers carrying six decimals (micro-USD).
const PriceScale = 1_000_000

// OracleClient fetches live USD prices from the price feed. One outbound
// call per invocation; no retry, no caching, every call is a fresh quote.
type OracleClient struct {
	FeedURL    string
	HTTPClient *http.Client
}

// NewOracleClient returns a client for the given feed endpoint. A nil http
// client falls back to http.DefaultClient, so callers that want timeouts
// inject their own.
func NewOracleClient(feedURL string, httpClient *http.Client) *OracleClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OracleClient{FeedURL: feedURL, HTTPClient: httpClient}
}

type feedQuote struct {
	UsdPrice decimal.Decimal `json:"usdPrice"`
}

// FetchPrices requests USD quotes for the given asset identifiers and
// returns them scaled to micro-USD integers. Any identifier absent from the
// response is an ErrMissingPrice; prices are never defaulted to zero.
func (o *OracleClient) FetchPrices(ctx context.Context, assetIDs []string) (map[string]uint64, error) {
	reqURL := fmt.Sprintf("%s?ids=%s", o.FeedURL, url.QueryEscape(strings.Join(assetIDs, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracle, err)
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracle, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: feed returned %s: %s", ErrOracle, resp.Status, strings.TrimSpace(string(body)))
	}

	var quotes map[string]feedQuote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("%w: decoding feed response: %v", ErrOracle, err)
	}

	prices := make(map[string]uint64, len(assetIDs))
	for _, id := range assetIDs {
		quote, ok := quotes[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingPrice, id)
		}
		scaled, err := ScalePrice(quote.UsdPrice)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrOracle, id, err)
		}
		prices[id] = scaled
	}
	return prices, nil
}

// ScalePrice converts a decimal USD price to a micro-USD integer, rounding
// half-up at the sixth decimal (1.2345675 becomes 1234568). The scaled
// integer is the only representation the valuation engine accepts.
func ScalePrice(price decimal.Decimal) (uint64, error) {
	if price.IsNegative() {
		return 0, fmt.Errorf("negative price %s", price)
	}
	scaled := price.Shift(6).Round(0)
	if !scaled.IsInteger() || !scaled.BigInt().IsUint64() {
		return 0, fmt.Errorf("price %s out of range", price)
	}
	return scaled.BigInt().Uint64(), nil
}
