package widget

import (
	"ftxwidget/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Reducer folds actions into state. It holds only a logger for ignored
// transitions; Reduce itself performs no I/O.
type Reducer struct {
	log *logrus.Entry
}

// NewReducer returns a reducer that reports ignored actions to log.
func NewReducer(log *logrus.Entry) Reducer {
	if log == nil {
		log = logrus.NewEntry(logger.Discard())
	}
	return Reducer{log: log}
}

var defaultReducer = NewReducer(nil)

// Reduce applies action to state with a silent reducer.
func Reduce(state *State, action Action) *State {
	return defaultReducer.Reduce(state, action)
}

// Reduce returns the state after action. When the action does not apply,
// the same pointer is returned.
func (r Reducer) Reduce(state *State, action Action) *State {
	if state == nil {
		state = NewState()
	}

	switch a := deref(action).(type) {
	case Initialize, StartConnect:
		return state

	case Initialized:
		next := state.clone()
		marketData := a.MarketData
		if marketData == nil {
			marketData = state.MarketData
		}
		balances := make(map[string]decimal.Decimal, len(a.Balances))
		for k, v := range a.Balances {
			balances[k] = v
		}
		names := make([]string, 0, len(marketData))
		for _, m := range marketData {
			names = append(names, m.Symbol)
		}
		next.HasInitialized = true
		next.IsConnected = a.IsConnected
		next.Balances = balances
		next.MarketData = marketData
		next.CurrencyNames = names
		next.BalanceTotal = ComputeBalanceTotal(balances, marketData)
		if a.IsConnected {
			next.CurrentView = ViewMarkets
		} else {
			next.CurrentView = ViewOptIn
		}
		return next

	case OpenView:
		next := state.clone()
		next.CurrentView = a.View
		next.AssetDetail = nil
		next.ConversionInProgress = nil
		return next

	case ShowAssetDetail:
		next := state.clone()
		next.LastEpoch++
		next.AssetDetail = &AssetDetail{
			Epoch:        next.LastEpoch,
			CurrencyName: a.Symbol,
			MarketData:   state.Lookup(a.Symbol),
		}
		return next

	case HideAssetDetail:
		if state.AssetDetail == nil {
			return state
		}
		next := state.clone()
		next.AssetDetail = nil
		return next

	case AssetChartDataUpdated:
		detail := state.AssetDetail
		if detail == nil || detail.CurrencyName != a.CurrencyName || (a.Epoch != 0 && a.Epoch != detail.Epoch) {
			r.log.WithField("currency", a.CurrencyName).Debug("dropping stale chart data")
			return state
		}
		updated := *detail
		if len(a.Points) == 0 {
			updated.Chart = ChartData{Status: ChartFailed}
		} else {
			updated.Chart = ChartData{Status: ChartReady, Points: a.Points}
		}
		next := state.clone()
		next.AssetDetail = &updated
		return next

	case PreviewConversion:
		next := state.clone()
		next.LastEpoch++
		next.ConversionInProgress = &Conversion{
			Epoch:    next.LastEpoch,
			From:     a.From,
			To:       a.To,
			Quantity: a.Quantity,
		}
		return next

	case ConversionQuoteAvailable:
		conv := state.ConversionInProgress
		if conv == nil {
			r.log.Warn("conversion quote arrived when no conversion is in progress")
			return state
		}
		if a.Epoch != 0 && a.Epoch != conv.Epoch {
			r.log.WithField("epoch", a.Epoch).Warn("conversion quote belongs to an earlier conversion")
			return state
		}
		quote := a.Quote
		updated := *conv
		updated.Quote = &quote
		next := state.clone()
		next.ConversionInProgress = &updated
		return next

	case SubmitConversion:
		conv := state.ConversionInProgress
		switch {
		case conv == nil:
			r.log.Warn("conversion submitted when no conversion is in progress")
			return state
		case conv.Quote == nil, conv.IsSubmitting, conv.Complete:
			r.log.WithField("epoch", conv.Epoch).Warn("conversion is not awaiting confirmation, ignoring submit")
			return state
		}
		updated := *conv
		updated.IsSubmitting = true
		next := state.clone()
		next.ConversionInProgress = &updated
		return next

	case ConversionWasSuccessful:
		conv := state.ConversionInProgress
		if conv == nil {
			r.log.Warn("conversion succeeded when no conversion is in progress")
			return state
		}
		if a.Epoch != 0 && a.Epoch != conv.Epoch {
			r.log.WithField("epoch", a.Epoch).Warn("success reported for an earlier conversion")
			return state
		}
		updated := *conv
		updated.IsSubmitting = false
		updated.Complete = true
		next := state.clone()
		next.ConversionInProgress = &updated
		return next

	case CancelConversion:
		conv := state.ConversionInProgress
		if conv == nil || (a.Epoch != 0 && a.Epoch != conv.Epoch) {
			return state
		}
		if a.Expired && (conv.IsSubmitting || conv.Complete) {
			r.log.WithField("epoch", conv.Epoch).Debug("quote expired after submit, keeping conversion")
			return state
		}
		next := state.clone()
		next.ConversionInProgress = nil
		return next

	case CloseConversion:
		if state.ConversionInProgress == nil {
			return state
		}
		next := state.clone()
		next.ConversionInProgress = nil
		return next
	}

	r.log.WithField("action", action).Warn("unhandled action")
	return state
}
