package widget

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ftxwidget/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	venueSuffix   = "-PERP"
	chartHistory  = 7 * 24 * time.Hour
	percentPlaces = 2
)

// Effects performs the I/O behind asynchronous actions and reports the
// outcome by dispatching follow-up actions.
type Effects struct {
	exchange  Exchange
	navigator Navigator
	now       func() time.Time
	log       *logrus.Entry

	initializing atomic.Bool

	submitMu      sync.Mutex
	lastSubmitted uint64
}

// NewEffects creates the effect handler. navigator may be nil, in which
// case connect URLs are only logged.
func NewEffects(exchange Exchange, navigator Navigator, log *logrus.Entry) *Effects {
	if log == nil {
		log = logrus.NewEntry(logger.Discard())
	}
	return &Effects{
		exchange:  exchange,
		navigator: navigator,
		now:       time.Now,
		log:       log,
	}
}

// SetClock overrides the time source (useful for testing).
func (e *Effects) SetClock(now func() time.Time) {
	e.now = now
}

// HasEffect reports whether action triggers any I/O.
func (e *Effects) HasEffect(action Action) bool {
	switch deref(action).(type) {
	case Initialize, StartConnect, ShowAssetDetail, PreviewConversion, SubmitConversion:
		return true
	}
	return false
}

// Handle runs the effect for action. state is the snapshot produced by
// reducing action; dispatch feeds results back to the store.
func (e *Effects) Handle(ctx context.Context, action Action, state *State, dispatch Dispatch) {
	switch a := deref(action).(type) {
	case Initialize:
		e.initialize(ctx, state, dispatch)
	case StartConnect:
		e.startConnect(ctx)
	case ShowAssetDetail:
		e.showAssetDetail(ctx, a, state, dispatch)
	case PreviewConversion:
		e.previewConversion(ctx, a, state, dispatch)
	case SubmitConversion:
		e.submitConversion(ctx, state, dispatch)
	}
}

func (e *Effects) initialize(ctx context.Context, state *State, dispatch Dispatch) {
	if state.HasInitialized {
		return
	}
	if !e.initializing.CompareAndSwap(false, true) {
		e.log.Debug("initialize already in flight")
		return
	}
	defer e.initializing.Store(false)

	var (
		balances    map[string]decimal.Decimal
		authInvalid bool
		marketData  []MarketTicker
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balances, authInvalid, err = e.exchange.GetAccountBalances(gctx)
		if err != nil {
			e.log.WithError(err).Error("failed to fetch account balances")
			balances, authInvalid = nil, true
		}
		return nil
	})
	g.Go(func() error {
		futures, err := e.exchange.GetFuturesData(gctx)
		if err != nil {
			e.log.WithError(err).Error("failed to fetch market data")
			return nil
		}
		marketData = make([]MarketTicker, 0, len(futures))
		for _, f := range futures {
			price := f.Last
			if price.IsZero() {
				price = f.Mark
			}
			marketData = append(marketData, MarketTicker{
				Symbol:           strings.Replace(f.Name, venueSuffix, "", 1),
				Price:            price,
				PercentChangeDay: f.PercentChangeDay.Round(percentPlaces),
				VolumeDay:        f.VolumeDay,
			})
		}
		return nil
	})
	_ = g.Wait()

	if ctx.Err() != nil {
		return
	}
	if marketData == nil {
		marketData = []MarketTicker{}
	}
	if balances == nil {
		balances = map[string]decimal.Decimal{}
	}
	e.log.WithFields(logrus.Fields{
		"markets":   len(marketData),
		"balances":  len(balances),
		"connected": !authInvalid,
	}).Info("widget initialized")
	dispatch(Initialized{
		IsConnected: !authInvalid,
		Balances:    balances,
		MarketData:  marketData,
	})
}

func (e *Effects) startConnect(ctx context.Context) {
	url, err := e.exchange.GetClientURL(ctx)
	if err != nil {
		e.log.WithError(err).Error("failed to get connect URL")
		return
	}
	if e.navigator == nil {
		e.log.WithField("url", url).Info("open this URL to connect your account")
		return
	}
	if err := e.navigator.Navigate(url); err != nil {
		e.log.WithError(err).Error("failed to open connect URL")
	}
}

func (e *Effects) showAssetDetail(ctx context.Context, a ShowAssetDetail, state *State, dispatch Dispatch) {
	var epoch uint64
	if state.AssetDetail != nil && state.AssetDetail.CurrencyName == a.Symbol {
		epoch = state.AssetDetail.Epoch
	}

	now := e.now()
	start := now.Add(-chartHistory).Unix()
	market := strings.ToUpper(a.Symbol) + venueSuffix

	candles, err := e.exchange.GetChartData(ctx, market, start, now.Unix())
	if err != nil {
		e.log.WithError(err).WithField("market", market).Error("failed to fetch chart data")
		candles = nil
	}
	if ctx.Err() != nil {
		return
	}

	points := make([]ChartPoint, 0, len(candles))
	for _, c := range candles {
		points = append(points, ChartPoint{Close: c.Close, High: c.High, Low: c.Low})
	}
	dispatch(AssetChartDataUpdated{
		Epoch:        epoch,
		CurrencyName: a.Symbol,
		Points:       points,
	})
}

func (e *Effects) previewConversion(ctx context.Context, a PreviewConversion, state *State, dispatch Dispatch) {
	var epoch uint64
	if state.ConversionInProgress != nil {
		epoch = state.ConversionInProgress.Epoch
	}
	log := e.log.WithFields(logrus.Fields{"from": a.From, "to": a.To, "quantity": a.Quantity.String()})

	quoteID, err := e.exchange.GetConvertQuote(ctx, a.From, a.To, a.Quantity)
	if err != nil || quoteID == "" {
		if err != nil {
			log = log.WithError(err)
		}
		log.Error("did not get a quote id, stopping conversion")
		dispatch(CancelConversion{Epoch: epoch})
		return
	}

	info, err := e.exchange.GetConvertQuoteInfo(ctx, quoteID)
	if err != nil || info.Price.IsZero() || info.Proceeds.IsZero() {
		if err != nil {
			log = log.WithError(err)
		}
		log.WithField("quote_id", quoteID).Error("did not get valid quote info")
		dispatch(CancelConversion{Epoch: epoch})
		return
	}

	dispatch(ConversionQuoteAvailable{
		Epoch: epoch,
		Quote: Quote{
			QuoteID:  quoteID,
			Price:    info.Price,
			Cost:     info.Cost,
			Proceeds: info.Proceeds,
		},
	})
}

func (e *Effects) submitConversion(ctx context.Context, state *State, dispatch Dispatch) {
	conv := state.ConversionInProgress
	if conv == nil || conv.Quote == nil || conv.Quote.QuoteID == "" {
		e.log.Error("no valid quote id to submit")
		var epoch uint64
		if conv != nil {
			epoch = conv.Epoch
		}
		dispatch(CancelConversion{Epoch: epoch})
		return
	}
	if conv.Complete || !e.claimSubmit(conv.Epoch) {
		e.log.WithField("epoch", conv.Epoch).Warn("conversion already submitted")
		return
	}

	ok, err := e.exchange.ExecuteConvertQuote(ctx, conv.Quote.QuoteID)
	if err != nil || !ok {
		entry := e.log.WithField("quote_id", conv.Quote.QuoteID)
		if err != nil {
			entry = entry.WithError(err)
		}
		entry.Error("conversion was not executed")
		dispatch(CancelConversion{Epoch: conv.Epoch})
		return
	}
	dispatch(ConversionWasSuccessful{Epoch: conv.Epoch})
}

// claimSubmit reserves epoch for execution. Epochs only grow, so each
// conversion executes at most once.
func (e *Effects) claimSubmit(epoch uint64) bool {
	e.submitMu.Lock()
	defer e.submitMu.Unlock()
	if epoch != 0 && epoch <= e.lastSubmitted {
		return false
	}
	e.lastSubmitted = epoch
	return true
}
