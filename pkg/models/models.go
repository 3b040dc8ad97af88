package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance holds a single coin balance on the exchange.
type Balance struct {
	Coin     string          `json:"coin"`
	Free     decimal.Decimal `json:"free"`
	Total    decimal.Decimal `json:"total"`
	USDValue decimal.Decimal `json:"usdValue"`
}

// FuturesTicker is a market summary as returned by the exchange.
// Name carries the venue suffix (e.g. "BTC-PERP").
type FuturesTicker struct {
	Name             string          `json:"name"`
	Underlying       string          `json:"underlying"`
	Perpetual        bool            `json:"perpetual"`
	Last             decimal.Decimal `json:"last"`
	Mark             decimal.Decimal `json:"mark"`
	PercentChangeDay decimal.Decimal `json:"percentChangeDay"`
	VolumeDay        decimal.Decimal `json:"volumeUsd24h"`
}

// Candle is one OHLC sample of a market's price history.
type Candle struct {
	StartTime time.Time       `json:"startTime"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

// QuoteInfo is the detail of a conversion quote.
type QuoteInfo struct {
	ID        string          `json:"id"`
	BaseCoin  string          `json:"baseCoin"`
	QuoteCoin string          `json:"quoteCoin"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Cost      decimal.Decimal `json:"cost"`
	Proceeds  decimal.Decimal `json:"proceeds"`
	Expiry    time.Time       `json:"expiry"`
	Expired   bool            `json:"expired"`
	Filled    bool            `json:"filled"`
}

// ProbeResult holds the result of a single exchange probe.
type ProbeResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok" or "error"
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CheckReport holds the results of the configuration check.
type CheckReport struct {
	ConfigPath      string        `json:"config_path"`
	ValidStructure  bool          `json:"valid_structure"`
	StructureErrors []string      `json:"structure_errors,omitempty"`
	BaseURL         string        `json:"base_url"`
	HasCredentials  bool          `json:"has_credentials"`
	Authenticated   bool          `json:"authenticated"`
	MarketCount     int           `json:"market_count"`
	Probes          []ProbeResult `json:"probes,omitempty"`
}
