package widget

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleMarkets() []MarketTicker {
	return []MarketTicker{
		{Symbol: "BTC", Price: d("30000"), PercentChangeDay: d("1.25"), VolumeDay: d("1000000")},
		{Symbol: "ETH", Price: d("2000"), PercentChangeDay: d("-0.5"), VolumeDay: d("500000")},
		{Symbol: "SOL", Price: d("40"), PercentChangeDay: d("3.1"), VolumeDay: d("20000")},
	}
}

func initializedState(t *testing.T) *State {
	t.Helper()
	s := Reduce(NewState(), Initialized{
		IsConnected: true,
		Balances:    map[string]decimal.Decimal{"USD": d("50"), "BTC": d("0.01")},
		MarketData:  sampleMarkets(),
	})
	require.True(t, s.HasInitialized)
	return s
}

func TestNewState(t *testing.T) {
	s := NewState()
	assert.False(t, s.HasInitialized)
	assert.Equal(t, ViewOptIn, s.CurrentView)
	assert.Empty(t, s.Balances)
	assert.Nil(t, s.BalanceTotal)
	assert.Nil(t, s.AssetDetail)
	assert.Nil(t, s.ConversionInProgress)
}

func TestInitialized(t *testing.T) {
	s := initializedState(t)

	assert.True(t, s.IsConnected)
	assert.Equal(t, ViewMarkets, s.CurrentView)
	assert.Equal(t, []string{"BTC", "ETH", "SOL"}, s.CurrencyNames)
	require.NotNil(t, s.BalanceTotal)
	assert.True(t, d("350").Equal(*s.BalanceTotal), "got %s", s.BalanceTotal)
}

func TestInitialized_NotConnected(t *testing.T) {
	s := Reduce(NewState(), Initialized{IsConnected: false, MarketData: sampleMarkets()})
	assert.True(t, s.HasInitialized)
	assert.False(t, s.IsConnected)
	assert.Equal(t, ViewOptIn, s.CurrentView)
	assert.Nil(t, s.BalanceTotal)
}

func TestInitialized_CurrencyNamesPreserveOrder(t *testing.T) {
	payloads := [][]MarketTicker{
		{},
		{{Symbol: "ZEC"}, {Symbol: "ADA"}, {Symbol: "BTC"}},
		sampleMarkets(),
	}
	for _, markets := range payloads {
		s := Reduce(NewState(), Initialized{MarketData: markets})
		want := make([]string, 0, len(markets))
		for _, m := range markets {
			want = append(want, m.Symbol)
		}
		assert.Equal(t, want, s.CurrencyNames)
	}
}

func TestInitialized_DoesNotAliasPayload(t *testing.T) {
	balances := map[string]decimal.Decimal{"USD": d("1")}
	s := Reduce(NewState(), Initialized{Balances: balances})
	balances["USD"] = d("999")
	assert.True(t, d("1").Equal(s.Balances["USD"]))
}

func TestOpenView_ClearsTransientState(t *testing.T) {
	s := initializedState(t)
	s = Reduce(s, ShowAssetDetail{Symbol: "BTC"})
	s = Reduce(s, PreviewConversion{From: "USD", To: "BTC", Quantity: d("100")})
	require.NotNil(t, s.AssetDetail)
	require.NotNil(t, s.ConversionInProgress)

	for _, v := range []View{ViewOptIn, ViewMarkets, ViewConvert, ViewSummary} {
		next := Reduce(s, OpenView{View: v})
		assert.Equal(t, v, next.CurrentView)
		assert.Nil(t, next.AssetDetail)
		assert.Nil(t, next.ConversionInProgress)
	}
}

func TestShowAssetDetail(t *testing.T) {
	s := initializedState(t)
	s = Reduce(s, ShowAssetDetail{Symbol: "ETH"})

	require.NotNil(t, s.AssetDetail)
	assert.Equal(t, "ETH", s.AssetDetail.CurrencyName)
	require.NotNil(t, s.AssetDetail.MarketData)
	assert.True(t, d("2000").Equal(s.AssetDetail.MarketData.Price))
	assert.Equal(t, ChartPending, s.AssetDetail.Chart.Status)
	assert.Equal(t, s.LastEpoch, s.AssetDetail.Epoch)

	// Re-opening clears previous chart data
	s = Reduce(s, AssetChartDataUpdated{CurrencyName: "ETH", Points: []ChartPoint{{Close: d("1")}}})
	require.Equal(t, ChartReady, s.AssetDetail.Chart.Status)
	s = Reduce(s, ShowAssetDetail{Symbol: "ETH"})
	assert.Equal(t, ChartPending, s.AssetDetail.Chart.Status)
	assert.Empty(t, s.AssetDetail.Chart.Points)
}

func TestShowAssetDetail_UnknownSymbol(t *testing.T) {
	s := Reduce(initializedState(t), ShowAssetDetail{Symbol: "DOGE"})
	require.NotNil(t, s.AssetDetail)
	assert.Nil(t, s.AssetDetail.MarketData)
}

func TestHideAssetDetail(t *testing.T) {
	s := initializedState(t)
	assert.Same(t, s, Reduce(s, HideAssetDetail{}))

	s = Reduce(s, ShowAssetDetail{Symbol: "BTC"})
	s = Reduce(s, HideAssetDetail{})
	assert.Nil(t, s.AssetDetail)
}

func TestAssetChartDataUpdated(t *testing.T) {
	s := Reduce(initializedState(t), ShowAssetDetail{Symbol: "BTC"})
	points := []ChartPoint{{Close: d("1"), High: d("2"), Low: d("0.5")}}

	next := Reduce(s, AssetChartDataUpdated{Epoch: s.AssetDetail.Epoch, CurrencyName: "BTC", Points: points})
	require.NotNil(t, next.AssetDetail)
	assert.Equal(t, ChartReady, next.AssetDetail.Chart.Status)
	assert.Equal(t, points, next.AssetDetail.Chart.Points)
	// previous snapshot untouched
	assert.Equal(t, ChartPending, s.AssetDetail.Chart.Status)
}

func TestAssetChartDataUpdated_EmptyIsError(t *testing.T) {
	s := Reduce(initializedState(t), ShowAssetDetail{Symbol: "BTC"})

	for _, points := range [][]ChartPoint{nil, {}} {
		next := Reduce(s, AssetChartDataUpdated{CurrencyName: "BTC", Points: points})
		assert.Equal(t, ChartFailed, next.AssetDetail.Chart.Status)
		assert.Nil(t, next.AssetDetail.Chart.Points)
	}
}

func TestAssetChartDataUpdated_Stale(t *testing.T) {
	s := initializedState(t)
	points := []ChartPoint{{Close: d("1")}}

	// No detail open
	assert.Same(t, s, Reduce(s, AssetChartDataUpdated{CurrencyName: "BTC", Points: points}))

	// Different currency
	s = Reduce(s, ShowAssetDetail{Symbol: "ETH"})
	assert.Same(t, s, Reduce(s, AssetChartDataUpdated{CurrencyName: "BTC", Points: points}))

	// Same currency, earlier request
	first := Reduce(s, ShowAssetDetail{Symbol: "BTC"})
	second := Reduce(first, ShowAssetDetail{Symbol: "BTC"})
	stale := AssetChartDataUpdated{Epoch: first.AssetDetail.Epoch, CurrencyName: "BTC", Points: points}
	assert.Same(t, second, Reduce(second, stale))
}

func TestConversionRoundTrip(t *testing.T) {
	s := initializedState(t)
	s = Reduce(s, PreviewConversion{From: "USD", To: "BTC", Quantity: d("100")})
	require.NotNil(t, s.ConversionInProgress)
	assert.Nil(t, s.ConversionInProgress.Quote)
	assert.False(t, s.ConversionInProgress.IsSubmitting)
	assert.False(t, s.ConversionInProgress.Complete)

	quote := Quote{QuoteID: "q1", Price: d("30000"), Cost: d("100"), Proceeds: d("0.0033")}
	s = Reduce(s, ConversionQuoteAvailable{Epoch: s.ConversionInProgress.Epoch, Quote: quote})
	require.NotNil(t, s.ConversionInProgress.Quote)
	assert.Equal(t, "q1", s.ConversionInProgress.Quote.QuoteID)

	s = Reduce(s, SubmitConversion{})
	assert.True(t, s.ConversionInProgress.IsSubmitting)

	s = Reduce(s, ConversionWasSuccessful{})
	assert.False(t, s.ConversionInProgress.IsSubmitting)
	assert.True(t, s.ConversionInProgress.Complete)

	s = Reduce(s, CloseConversion{})
	assert.Nil(t, s.ConversionInProgress)
}

func TestConversionActions_WithoutConversionAreNoops(t *testing.T) {
	s := initializedState(t)
	actions := []Action{
		ConversionQuoteAvailable{Quote: Quote{QuoteID: "q"}},
		SubmitConversion{},
		ConversionWasSuccessful{},
		CancelConversion{},
		CloseConversion{},
	}
	for _, a := range actions {
		assert.Same(t, s, Reduce(s, a), a.Type())
	}
}

func TestConversion_EpochGuards(t *testing.T) {
	s := initializedState(t)
	first := Reduce(s, PreviewConversion{From: "USD", To: "BTC", Quantity: d("1")})
	oldEpoch := first.ConversionInProgress.Epoch
	second := Reduce(Reduce(first, CancelConversion{}), PreviewConversion{From: "USD", To: "ETH", Quantity: d("2")})
	require.NotEqual(t, oldEpoch, second.ConversionInProgress.Epoch)

	assert.Same(t, second, Reduce(second, ConversionQuoteAvailable{Epoch: oldEpoch, Quote: Quote{QuoteID: "old"}}))
	assert.Same(t, second, Reduce(second, CancelConversion{Epoch: oldEpoch}))
	assert.Same(t, second, Reduce(second, ConversionWasSuccessful{Epoch: oldEpoch}))

	cancelled := Reduce(second, CancelConversion{Epoch: second.ConversionInProgress.Epoch})
	assert.Nil(t, cancelled.ConversionInProgress)
}

func TestSubmitConversion_OnlyFromConfirmableQuote(t *testing.T) {
	pending := Reduce(initializedState(t), PreviewConversion{From: "USD", To: "BTC", Quantity: d("1")})
	assert.Same(t, pending, Reduce(pending, SubmitConversion{}), "no quote yet")

	quoted := Reduce(pending, ConversionQuoteAvailable{Quote: Quote{QuoteID: "q1", Price: d("1"), Proceeds: d("1")}})
	submitting := Reduce(quoted, SubmitConversion{})
	require.True(t, submitting.ConversionInProgress.IsSubmitting)
	assert.Same(t, submitting, Reduce(submitting, SubmitConversion{}), "already submitting")

	complete := Reduce(submitting, ConversionWasSuccessful{})
	assert.Same(t, complete, Reduce(complete, SubmitConversion{}), "already complete")
}

func TestCancelConversion_ExpiredKeepsSubmittedConversion(t *testing.T) {
	s := Reduce(initializedState(t), PreviewConversion{From: "USD", To: "BTC", Quantity: d("1")})
	s = Reduce(s, ConversionQuoteAvailable{Quote: Quote{QuoteID: "q1", Price: d("1"), Proceeds: d("1")}})
	epoch := s.ConversionInProgress.Epoch

	assert.Nil(t, Reduce(s, CancelConversion{Epoch: epoch, Expired: true}).ConversionInProgress)

	submitting := Reduce(s, SubmitConversion{})
	assert.Same(t, submitting, Reduce(submitting, CancelConversion{Epoch: epoch, Expired: true}))

	complete := Reduce(submitting, ConversionWasSuccessful{Epoch: epoch})
	assert.Same(t, complete, Reduce(complete, CancelConversion{Epoch: epoch, Expired: true}))

	// a refused submit still cancels
	assert.Nil(t, Reduce(submitting, CancelConversion{Epoch: epoch}).ConversionInProgress)
}

func TestEffectOnlyActionsKeepState(t *testing.T) {
	s := initializedState(t)
	assert.Same(t, s, Reduce(s, Initialize{}))
	assert.Same(t, s, Reduce(s, StartConnect{}))
}

func TestReduce_PointerActions(t *testing.T) {
	s := Reduce(initializedState(t), &OpenView{View: ViewSummary})
	assert.Equal(t, ViewSummary, s.CurrentView)
}

func TestReduce_NilState(t *testing.T) {
	s := Reduce(nil, OpenView{View: ViewConvert})
	assert.Equal(t, ViewConvert, s.CurrentView)
}
