package vaultmvp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFeedServer serves quotes with usdPrice as a bare JSON number, the
// shape the live feed responds with.
func newFeedServer(t *testing.T, quotes map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		resp := make(map[string]map[string]json.RawMessage)
		for _, id := range ids {
			if price, ok := quotes[id]; ok {
				resp[id] = map[string]json.RawMessage{"usdPrice": json.RawMessage(price)}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestFetchPrices(t *testing.T) {
	server := newFeedServer(t, map[string]string{
		"mintA": "100",
		"mintB": "1.234567",
		"mintC": "0.000001",
	})
	defer server.Close()

	oracle := NewOracleClient(server.URL, server.Client())
	prices, err := oracle.FetchPrices(context.Background(), []string{"mintA", "mintB", "mintC"})
	require.NoError(t, err)

	assert.Equal(t, uint64(100_000_000), prices["mintA"])
	assert.Equal(t, uint64(1_234_567), prices["mintB"])
	assert.Equal(t, uint64(1), prices["mintC"])
}

func TestFetchPricesQuotedNumbers(t *testing.T) {
	// Some feed deployments quote the number; the decimal parser accepts
	// both shapes.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"mintA": {"usdPrice": "2.5"}}`))
	}))
	defer server.Close()

	oracle := NewOracleClient(server.URL, server.Client())
	prices, err := oracle.FetchPrices(context.Background(), []string{"mintA"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2_500_000), prices["mintA"])
}

func TestFetchPricesMissingAsset(t *testing.T) {
	server := newFeedServer(t, map[string]string{"mintA": "100"})
	defer server.Close()

	oracle := NewOracleClient(server.URL, server.Client())
	_, err := oracle.FetchPrices(context.Background(), []string{"mintA", "mintB"})
	assert.ErrorIs(t, err, ErrMissingPrice)
	assert.Contains(t, err.Error(), "mintB")
}

func TestFetchPricesFeedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	oracle := NewOracleClient(server.URL, server.Client())
	_, err := oracle.FetchPrices(context.Background(), []string{"mintA"})
	assert.ErrorIs(t, err, ErrOracle)
}

func TestFetchPricesMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	oracle := NewOracleClient(server.URL, server.Client())
	_, err := oracle.FetchPrices(context.Background(), []string{"mintA"})
	assert.ErrorIs(t, err, ErrOracle)
}

func TestScalePrice(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"0", 0},
		{"1", 1_000_000},
		{"1.234567", 1_234_567},
		{"1.2345675", 1_234_568}, // half-up at the sixth decimal
		{"1.2345674", 1_234_567},
		{"0.0000001", 0},
		{"0.0000005", 1},
		{"64023.50", 64_023_500_000},
	}
	for _, tc := range cases {
		got, err := ScalePrice(decimal.RequireFromString(tc.in))
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestScalePriceRejectsNegative(t *testing.T) {
	_, err := ScalePrice(decimal.RequireFromString("-1"))
	assert.Error(t, err)
}
