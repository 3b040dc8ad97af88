package ftx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ftxwidget/pkg/config"
	"ftxwidget/pkg/models"
	"ftxwidget/pkg/widget"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChartResolution is the candle width in seconds (four hours).
const ChartResolution = 14400

var hundred = decimal.NewFromInt(100)

var _ widget.Exchange = (*Client)(nil)

// GetAccountBalances returns total balances per coin. Missing or rejected
// credentials are reported through authInvalid rather than an error.
func (c *Client) GetAccountBalances(ctx context.Context) (map[string]decimal.Decimal, bool, error) {
	var result []models.Balance
	err := c.do(ctx, http.MethodGet, "/wallet/balances", nil, nil, true, &result)
	switch {
	case errors.Is(err, config.ErrNoCredentials):
		c.log.Debug("no credentials, skipping balances")
		return nil, true, nil
	case errors.Is(err, ErrUnauthorized):
		c.log.WithError(err).Warn("credentials rejected")
		return nil, true, nil
	case err != nil:
		return nil, false, err
	}

	balances := make(map[string]decimal.Decimal, len(result))
	for _, b := range result {
		balances[b.Coin] = b.Total
	}
	return balances, false, nil
}

type futureResult struct {
	Name         string          `json:"name"`
	Underlying   string          `json:"underlying"`
	Type         string          `json:"type"`
	Perpetual    bool            `json:"perpetual"`
	Last         decimal.Decimal `json:"last"`
	Mark         decimal.Decimal `json:"mark"`
	Change24h    decimal.Decimal `json:"change24h"`
	VolumeUsd24h decimal.Decimal `json:"volumeUsd24h"`
}

// GetFuturesData lists perpetual futures with the 24h change as a percent.
func (c *Client) GetFuturesData(ctx context.Context) ([]models.FuturesTicker, error) {
	var result []futureResult
	if err := c.do(ctx, http.MethodGet, "/futures", nil, nil, false, &result); err != nil {
		return nil, err
	}

	tickers := make([]models.FuturesTicker, 0, len(result))
	for _, f := range result {
		if !f.Perpetual && f.Type != "perpetual" {
			continue
		}
		tickers = append(tickers, models.FuturesTicker{
			Name:             f.Name,
			Underlying:       f.Underlying,
			Perpetual:        true,
			Last:             f.Last,
			Mark:             f.Mark,
			PercentChangeDay: f.Change24h.Mul(hundred),
			VolumeDay:        f.VolumeUsd24h,
		})
	}
	return tickers, nil
}

// GetChartData returns four-hour candles for market between the given
// unix times.
func (c *Client) GetChartData(ctx context.Context, market string, startTime, endTime int64) ([]models.Candle, error) {
	query := url.Values{}
	query.Set("resolution", strconv.Itoa(ChartResolution))
	query.Set("start_time", strconv.FormatInt(startTime, 10))
	query.Set("end_time", strconv.FormatInt(endTime, 10))

	var candles []models.Candle
	path := "/markets/" + url.PathEscape(market) + "/candles"
	if err := c.do(ctx, http.MethodGet, path, query, nil, false, &candles); err != nil {
		return nil, err
	}
	return candles, nil
}

type quoteRequest struct {
	FromCoin string      `json:"fromCoin"`
	ToCoin   string      `json:"toCoin"`
	Size     json.Number `json:"size"`
}

// GetConvertQuote requests a quote and returns its id.
func (c *Client) GetConvertQuote(ctx context.Context, from, to string, quantity decimal.Decimal) (string, error) {
	body := quoteRequest{FromCoin: from, ToCoin: to, Size: json.Number(quantity.String())}
	var result struct {
		QuoteID json.Number `json:"quoteId"`
	}
	if err := c.do(ctx, http.MethodPost, "/otc/quotes", nil, body, true, &result); err != nil {
		return "", err
	}
	return result.QuoteID.String(), nil
}

type quoteInfoResult struct {
	ID        json.Number     `json:"id"`
	BaseCoin  string          `json:"baseCoin"`
	QuoteCoin string          `json:"quoteCoin"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Cost      decimal.Decimal `json:"cost"`
	Proceeds  decimal.Decimal `json:"proceeds"`
	Expiry    float64         `json:"expiry"`
	Expired   bool            `json:"expired"`
	Filled    bool            `json:"filled"`
}

// GetConvertQuoteInfo fetches price, cost and proceeds for a quote.
func (c *Client) GetConvertQuoteInfo(ctx context.Context, quoteID string) (models.QuoteInfo, error) {
	var r quoteInfoResult
	if err := c.do(ctx, http.MethodGet, "/otc/quotes/"+url.PathEscape(quoteID), nil, nil, true, &r); err != nil {
		return models.QuoteInfo{}, err
	}
	info := models.QuoteInfo{
		ID:        r.ID.String(),
		BaseCoin:  r.BaseCoin,
		QuoteCoin: r.QuoteCoin,
		Side:      r.Side,
		Price:     r.Price,
		Cost:      r.Cost,
		Proceeds:  r.Proceeds,
		Expired:   r.Expired,
		Filled:    r.Filled,
	}
	if r.Expiry > 0 {
		sec, frac := math.Modf(r.Expiry)
		info.Expiry = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}
	return info, nil
}

// ExecuteConvertQuote accepts a quote. It reports false with the API error
// when the exchange refuses.
func (c *Client) ExecuteConvertQuote(ctx context.Context, quoteID string) (bool, error) {
	path := "/otc/quotes/" + url.PathEscape(quoteID) + "/accept"
	if err := c.do(ctx, http.MethodPost, path, nil, struct{}{}, true, nil); err != nil {
		return false, err
	}
	return true, nil
}

// GetClientURL builds the OAuth authorize URL the user opens to connect
// an account.
func (c *Client) GetClientURL(ctx context.Context) (string, error) {
	if c.oauth.ClientID == "" {
		return "", fmt.Errorf("oauth client_id is not configured")
	}
	base := c.oauth.AuthorizeURL
	if base == "" {
		base = config.Default().OAuth.AuthorizeURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid authorize url: %w", err)
	}
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", c.oauth.ClientID)
	if c.oauth.RedirectURL != "" {
		q.Set("redirect_uri", c.oauth.RedirectURL)
	}
	q.Set("state", uuid.NewString())
	u.RawQuery = q.Encode()
	return u.String(), nil
}
