package widget

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Action is a state transition trigger. The set is closed: only types in
// this package implement it.
type Action interface {
	Type() string
	isAction()
}

// Initialize requests the first load of balances and market data.
type Initialize struct{}

// Initialized carries the result of the first load.
type Initialized struct {
	IsConnected bool                       `json:"isConnected"`
	Balances    map[string]decimal.Decimal `json:"balances"`
	MarketData  []MarketTicker             `json:"marketData"`
}

// OpenView switches the top-level view.
type OpenView struct {
	View View `json:"view"`
}

// StartConnect begins the out-of-band account connection.
type StartConnect struct{}

// ShowAssetDetail opens the detail view for a currency.
type ShowAssetDetail struct {
	Symbol string `json:"symbol"`
}

// HideAssetDetail closes the detail view.
type HideAssetDetail struct{}

// AssetChartDataUpdated delivers price history for an asset detail.
// A zero Epoch matches any detail with the same currency name.
type AssetChartDataUpdated struct {
	Epoch        uint64       `json:"epoch,omitempty"`
	CurrencyName string       `json:"currencyName"`
	Points       []ChartPoint `json:"chartData"`
}

// PreviewConversion starts a conversion and requests a quote.
type PreviewConversion struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ConversionQuoteAvailable attaches a quote to the conversion in progress.
// A zero Epoch matches any conversion.
type ConversionQuoteAvailable struct {
	Epoch uint64 `json:"epoch,omitempty"`
	Quote Quote  `json:"quote"`
}

// SubmitConversion executes the quoted conversion.
type SubmitConversion struct{}

// ConversionWasSuccessful marks the conversion as executed.
// A zero Epoch matches any conversion.
type ConversionWasSuccessful struct {
	Epoch uint64 `json:"epoch,omitempty"`
}

// CancelConversion discards the conversion in progress. A non-zero Epoch
// only cancels the conversion it was issued for. Expired marks a cancel
// issued by the quote countdown; it does not apply once a submit started.
type CancelConversion struct {
	Epoch   uint64 `json:"epoch,omitempty"`
	Expired bool   `json:"expired,omitempty"`
}

// CloseConversion dismisses a conversion, typically after success.
type CloseConversion struct{}

func (Initialize) Type() string               { return "initialize" }
func (Initialized) Type() string              { return "initialized" }
func (OpenView) Type() string                 { return "openView" }
func (StartConnect) Type() string             { return "startConnectToFtx" }
func (ShowAssetDetail) Type() string          { return "showAssetDetail" }
func (HideAssetDetail) Type() string          { return "hideAssetDetail" }
func (AssetChartDataUpdated) Type() string    { return "assetChartDataUpdated" }
func (PreviewConversion) Type() string        { return "previewConversion" }
func (ConversionQuoteAvailable) Type() string { return "conversionQuoteAvailable" }
func (SubmitConversion) Type() string         { return "submitConversion" }
func (ConversionWasSuccessful) Type() string  { return "conversionWasSuccessful" }
func (CancelConversion) Type() string         { return "cancelConversion" }
func (CloseConversion) Type() string          { return "closeConversion" }

func (Initialize) isAction()               {}
func (Initialized) isAction()              {}
func (OpenView) isAction()                 {}
func (StartConnect) isAction()             {}
func (ShowAssetDetail) isAction()          {}
func (HideAssetDetail) isAction()          {}
func (AssetChartDataUpdated) isAction()    {}
func (PreviewConversion) isAction()        {}
func (ConversionQuoteAvailable) isAction() {}
func (SubmitConversion) isAction()         {}
func (ConversionWasSuccessful) isAction()  {}
func (CancelConversion) isAction()         {}
func (CloseConversion) isAction()          {}

var actionFactories = map[string]func() Action{
	"initialize":               func() Action { return &Initialize{} },
	"initialized":              func() Action { return &Initialized{} },
	"openView":                 func() Action { return &OpenView{} },
	"startConnectToFtx":        func() Action { return &StartConnect{} },
	"showAssetDetail":          func() Action { return &ShowAssetDetail{} },
	"hideAssetDetail":          func() Action { return &HideAssetDetail{} },
	"assetChartDataUpdated":    func() Action { return &AssetChartDataUpdated{} },
	"previewConversion":        func() Action { return &PreviewConversion{} },
	"conversionQuoteAvailable": func() Action { return &ConversionQuoteAvailable{} },
	"submitConversion":         func() Action { return &SubmitConversion{} },
	"conversionWasSuccessful":  func() Action { return &ConversionWasSuccessful{} },
	"cancelConversion":         func() Action { return &CancelConversion{} },
	"closeConversion":          func() Action { return &CloseConversion{} },
}

// DecodeAction builds an action from its type name and JSON payload.
// An empty payload leaves the action at its zero value.
func DecodeAction(actionType string, payload json.RawMessage) (Action, error) {
	factory, ok := actionFactories[actionType]
	if !ok {
		return nil, fmt.Errorf("unknown action %q", actionType)
	}
	ptr := factory()
	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, ptr); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", actionType, err)
		}
	}
	return deref(ptr), nil
}

func deref(a Action) Action {
	switch a := a.(type) {
	case *Initialize:
		return *a
	case *Initialized:
		return *a
	case *OpenView:
		return *a
	case *StartConnect:
		return *a
	case *ShowAssetDetail:
		return *a
	case *HideAssetDetail:
		return *a
	case *AssetChartDataUpdated:
		return *a
	case *PreviewConversion:
		return *a
	case *ConversionQuoteAvailable:
		return *a
	case *SubmitConversion:
		return *a
	case *ConversionWasSuccessful:
		return *a
	case *CancelConversion:
		return *a
	case *CloseConversion:
		return *a
	}
	return a
}
