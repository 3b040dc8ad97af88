package widget

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// View is the top-level screen of the widget.
type View int

const (
	ViewOptIn View = iota
	ViewMarkets
	ViewConvert
	ViewSummary
)

var viewNames = map[View]string{
	ViewOptIn:   "optIn",
	ViewMarkets: "markets",
	ViewConvert: "convert",
	ViewSummary: "summary",
}

func (v View) String() string {
	if name, ok := viewNames[v]; ok {
		return name
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// ParseView converts a view name back into a View.
func ParseView(name string) (View, error) {
	for v, n := range viewNames {
		if n == name {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown view %q", name)
}

func (v View) MarshalText() ([]byte, error) {
	if _, ok := viewNames[v]; !ok {
		return nil, fmt.Errorf("unknown view %d", int(v))
	}
	return []byte(v.String()), nil
}

func (v *View) UnmarshalText(text []byte) error {
	parsed, err := ParseView(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarketTicker is the normalized market summary for one currency.
type MarketTicker struct {
	Symbol           string          `json:"symbol"`
	Price            decimal.Decimal `json:"price"`
	PercentChangeDay decimal.Decimal `json:"percentChangeDay"`
	VolumeDay        decimal.Decimal `json:"volumeDay"`
}

// ChartPoint is one sample of an asset's price history.
type ChartPoint struct {
	Close decimal.Decimal `json:"c"`
	High  decimal.Decimal `json:"h"`
	Low   decimal.Decimal `json:"l"`
}

type ChartStatus int

const (
	ChartPending ChartStatus = iota
	ChartReady
	ChartFailed
)

func (s ChartStatus) String() string {
	switch s {
	case ChartReady:
		return "ready"
	case ChartFailed:
		return "error"
	default:
		return "pending"
	}
}

func (s ChartStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ChartData is either pending, a set of points, or the error marker.
type ChartData struct {
	Status ChartStatus  `json:"status"`
	Points []ChartPoint `json:"points,omitempty"`
}

// AssetDetail is the expanded single-currency view. Epoch identifies the
// request that opened it so late chart responses can be matched.
type AssetDetail struct {
	Epoch        uint64        `json:"epoch"`
	CurrencyName string        `json:"currencyName"`
	MarketData   *MarketTicker `json:"marketData,omitempty"`
	Chart        ChartData     `json:"chart"`
}

// Quote is a priced, time-limited conversion offer.
type Quote struct {
	QuoteID  string          `json:"quoteId"`
	Price    decimal.Decimal `json:"price"`
	Cost     decimal.Decimal `json:"cost"`
	Proceeds decimal.Decimal `json:"proceeds"`
}

// Conversion tracks a preview/confirm/submit cycle.
type Conversion struct {
	Epoch        uint64          `json:"epoch"`
	From         string          `json:"from"`
	To           string          `json:"to"`
	Quantity     decimal.Decimal `json:"quantity"`
	Quote        *Quote          `json:"quote,omitempty"`
	IsSubmitting bool            `json:"isSubmitting"`
	Complete     bool            `json:"complete"`
}

// State is an immutable snapshot of the widget. The reducer returns a new
// value for every transition; published snapshots must not be modified.
type State struct {
	HasInitialized       bool                       `json:"hasInitialized"`
	IsConnected          bool                       `json:"isConnected"`
	Balances             map[string]decimal.Decimal `json:"balances"`
	BalanceTotal         *decimal.Decimal           `json:"balanceTotal"`
	MarketData           []MarketTicker             `json:"marketData"`
	CurrencyNames        []string                   `json:"currencyNames"`
	CurrentView          View                       `json:"currentView"`
	AssetDetail          *AssetDetail               `json:"assetDetail,omitempty"`
	ConversionInProgress *Conversion                `json:"conversionInProgress,omitempty"`
	LastEpoch            uint64                     `json:"lastEpoch"`
}

// NewState returns the state a freshly mounted widget starts from.
func NewState() *State {
	return &State{
		Balances:      map[string]decimal.Decimal{},
		MarketData:    []MarketTicker{},
		CurrencyNames: []string{},
		CurrentView:   ViewOptIn,
	}
}

// Lookup finds the market entry for symbol.
func (s *State) Lookup(symbol string) *MarketTicker {
	for i := range s.MarketData {
		if s.MarketData[i].Symbol == symbol {
			t := s.MarketData[i]
			return &t
		}
	}
	return nil
}

func (s *State) clone() *State {
	next := *s
	return &next
}
