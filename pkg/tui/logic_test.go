package tui

import (
	"strings"
	"testing"
	"time"

	"ftxwidget/pkg/config"
	"ftxwidget/pkg/store"
	"ftxwidget/pkg/widget"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatched chan widget.Action

func (d dispatched) dispatch(a widget.Action) { d <- a }

// run executes cmd and any batched children in the background so dispatched
// actions reach the channel without waiting on tick commands.
func run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		if batch, ok := cmd().(tea.BatchMsg); ok {
			for _, c := range batch {
				run(c)
			}
		}
	}()
}

func (d dispatched) next(t *testing.T) widget.Action {
	t.Helper()
	select {
	case a := <-d:
		return a
	case <-time.After(time.Second):
		t.Fatal("no action dispatched")
		return nil
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func connectedState() *widget.State {
	total := d("350")
	s := widget.NewState()
	s.HasInitialized = true
	s.IsConnected = true
	s.CurrentView = widget.ViewMarkets
	s.Balances = map[string]decimal.Decimal{"USD": d("50"), "BTC": d("0.01"), "XYZ": d("3"), "ETH": d("0")}
	s.BalanceTotal = &total
	s.MarketData = []widget.MarketTicker{
		{Symbol: "BTC", Price: d("30000"), PercentChangeDay: d("1.25"), VolumeDay: d("1000000")},
		{Symbol: "ETH", Price: d("2000"), PercentChangeDay: d("-0.5"), VolumeDay: d("500000")},
	}
	s.CurrencyNames = []string{"BTC", "ETH"}
	return s
}

func newTestModel(s *widget.State) (model, dispatched) {
	ch := make(dispatched, 16)
	cfg := config.Default().Widget
	cfg.HideBalances = false
	return initialModel(ch.dispatch, nil, s, cfg), ch
}

func key(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m model, keys ...string) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	var next tea.Model = m
	for _, k := range keys {
		next, cmd = next.(model).Update(key(k))
	}
	return next.(model), cmd
}

func fillForm(m *model, from, to, qty string) {
	m.convertInputs[fieldFrom].SetValue(from)
	m.convertInputs[fieldTo].SetValue(to)
	m.convertInputs[fieldQuantity].SetValue(qty)
}

func TestBuildPreview(t *testing.T) {
	tests := []struct {
		name           string
		from, to, qty  string
		noTotal        bool
		wantErr        error
		wantFrom, want string
	}{
		{name: "valid", from: " usd", to: "btc ", qty: "25", wantFrom: "USD", want: "BTC"},
		{name: "no total", from: "USD", to: "BTC", qty: "1", noTotal: true, wantErr: errNoTotal},
		{name: "missing coin", from: "USD", qty: "1", wantErr: errMissingCoin},
		{name: "same coin", from: "btc", to: "BTC", qty: "0.001", wantErr: errSameCoin},
		{name: "bad quantity", from: "USD", to: "BTC", qty: "lots", wantErr: errBadQuantity},
		{name: "zero quantity", from: "USD", to: "BTC", qty: "0", wantErr: errBadQuantity},
		{name: "over available", from: "USD", to: "BTC", qty: "50.01", wantErr: errOverAvailable},
		{name: "unknown balance passes", from: "SOL", to: "USD", qty: "5", wantFrom: "SOL", want: "USD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := connectedState()
			if tt.noTotal {
				s.BalanceTotal = nil
			}
			m, _ := newTestModel(s)
			fillForm(&m, tt.from, tt.to, tt.qty)

			p, err := m.buildPreview()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, p.From)
			assert.Equal(t, tt.want, p.To)
			assert.True(t, d(tt.qty).Equal(p.Quantity))
		})
	}
}

func TestAvailableBalance(t *testing.T) {
	s := connectedState()
	s.Balances = map[string]decimal.Decimal{"usd": d("12")}
	m, _ := newTestModel(s)

	amount, ok := m.availableBalance(" USD ")
	assert.True(t, ok)
	assert.Equal(t, "12", amount.String())

	_, ok = m.availableBalance("BTC")
	assert.False(t, ok)
}

func TestBalanceRows(t *testing.T) {
	m, _ := newTestModel(connectedState())

	rows := m.balanceRows()
	require.Len(t, rows, 3)
	assert.Equal(t, "BTC", rows[0].Coin)
	assert.Equal(t, "300", rows[0].Value.String())
	assert.Equal(t, "USD", rows[1].Coin)
	assert.Equal(t, "XYZ", rows[2].Coin)
	assert.Nil(t, rows[2].Value)
}

func TestKeys_SwitchViews(t *testing.T) {
	m, ch := newTestModel(connectedState())

	_, cmd := press(t, m, "3")
	run(cmd)
	assert.Equal(t, widget.OpenView{View: widget.ViewSummary}, ch.next(t))

	_, cmd = press(t, m, "2")
	run(cmd)
	assert.Equal(t, widget.OpenView{View: widget.ViewConvert}, ch.next(t))
}

func TestKeys_IgnoredBeforeInitialize(t *testing.T) {
	m, ch := newTestModel(widget.NewState())

	_, cmd := press(t, m, "enter")
	assert.Nil(t, cmd)
	assert.Empty(t, ch)
}

func TestKeys_Quit(t *testing.T) {
	m, _ := newTestModel(connectedState())

	_, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestKeys_OptInConnects(t *testing.T) {
	s := connectedState()
	s.IsConnected = false
	s.CurrentView = widget.ViewOptIn
	m, ch := newTestModel(s)

	m, cmd := press(t, m, "enter")
	run(cmd)
	assert.Equal(t, widget.StartConnect{}, ch.next(t))
	assert.NotEmpty(t, m.statusMessage)
}

func TestKeys_MarketsOpenDetail(t *testing.T) {
	m, ch := newTestModel(connectedState())

	m, cmd := press(t, m, "down", "down", "enter")
	assert.Equal(t, 1, m.marketIdx)
	run(cmd)
	assert.Equal(t, widget.ShowAssetDetail{Symbol: "ETH"}, ch.next(t))

	s := connectedState()
	s.AssetDetail = &widget.AssetDetail{Epoch: 1, CurrencyName: "ETH"}
	m.state = s
	_, cmd = press(t, m, "esc")
	run(cmd)
	assert.Equal(t, widget.HideAssetDetail{}, ch.next(t))
}

func TestConvertForm_SubmitsPreview(t *testing.T) {
	s := connectedState()
	s.CurrentView = widget.ViewConvert
	m, ch := newTestModel(s)

	m, _ = press(t, m, "enter")
	assert.True(t, m.typing)

	m, cmd := press(t, m, "u", "s", "d", "tab", "b", "t", "c", "tab", "1", "0", "enter")
	assert.False(t, m.typing)
	assert.Empty(t, m.formError)

	run(cmd)
	a := ch.next(t)
	p, ok := a.(widget.PreviewConversion)
	require.True(t, ok, "got %T", a)
	assert.Equal(t, "USD", p.From)
	assert.Equal(t, "BTC", p.To)
	assert.Equal(t, "10", p.Quantity.String())
}

func TestConvertForm_ShowsError(t *testing.T) {
	s := connectedState()
	s.CurrentView = widget.ViewConvert
	m, ch := newTestModel(s)
	m.typing = true
	m.focusIdx = fieldQuantity
	fillForm(&m, "USD", "USD", "1")

	m, cmd := press(t, m, "enter")
	assert.Nil(t, cmd)
	assert.Equal(t, errSameCoin.Error(), m.formError)
	assert.True(t, m.typing)
	assert.Empty(t, ch)
}

func quotedState() *widget.State {
	s := connectedState()
	s.CurrentView = widget.ViewConvert
	s.LastEpoch = 4
	s.ConversionInProgress = &widget.Conversion{
		Epoch:    4,
		From:     "USD",
		To:       "BTC",
		Quantity: d("25"),
		Quote:    &widget.Quote{QuoteID: "q1", Price: d("30000"), Cost: d("25"), Proceeds: d("0.00083")},
	}
	return s
}

func TestConvert_ConfirmAndCancel(t *testing.T) {
	m, ch := newTestModel(quotedState())

	_, cmd := press(t, m, "y")
	run(cmd)
	assert.Equal(t, widget.SubmitConversion{}, ch.next(t))

	_, cmd = press(t, m, "esc")
	run(cmd)
	assert.Equal(t, widget.CancelConversion{Epoch: 4}, ch.next(t))
}

func TestCountdown_ExpiryCancels(t *testing.T) {
	m, ch := newTestModel(quotedState())
	require.Equal(t, widget.QuoteLifetime, m.countdown.Remaining())

	var next tea.Model = m
	var cmd tea.Cmd
	for i := 0; i < widget.QuoteLifetime; i++ {
		next, _ = next.(model).Update(countdownTickMsg(time.Now()))
	}
	m = next.(model)
	assert.Equal(t, 0, m.countdown.Remaining())
	assert.Empty(t, m.statusMessage)
	assert.Contains(t, m.View(), "Confirm (0s)")

	next, cmd = m.Update(countdownTickMsg(time.Now()))
	m = next.(model)
	assert.Equal(t, "Quote expired", m.statusMessage)

	run(cmd)
	assert.Equal(t, widget.CancelConversion{Epoch: 4, Expired: true}, ch.next(t))
}

func TestStoreEvent_UpdatesState(t *testing.T) {
	m, _ := newTestModel(widget.NewState())
	m.marketIdx = 5

	next, _ := m.Update(store.Event{Type: store.EventStateChanged, Action: "initialized", State: connectedState()})
	m = next.(model)
	assert.True(t, m.state.HasInitialized)
	assert.Equal(t, 1, m.marketIdx)

	next, _ = m.Update(store.Event{Type: store.EventStateChanged, Action: "cancelConversion", State: m.state})
	assert.Equal(t, "Conversion cancelled", next.(model).statusMessage)
}

func TestView(t *testing.T) {
	m, _ := newTestModel(quotedState())
	out := m.View()
	assert.Contains(t, out, "Confirm (60s)")
	assert.Contains(t, out, "Confirm conversion")

	m.hideBalances = true
	m.state = connectedState()
	m.state.CurrentView = widget.ViewSummary
	out = m.View()
	assert.Contains(t, out, "****")
	assert.False(t, strings.Contains(out, "$350.00"))

	m.hideBalances = false
	out = m.View()
	assert.Contains(t, out, "$350.00")
	assert.Contains(t, out, "XYZ")
}

func TestView_Loading(t *testing.T) {
	m, _ := newTestModel(widget.NewState())
	assert.Contains(t, m.View(), "Loading")
}

func TestView_Chart(t *testing.T) {
	s := connectedState()
	s.AssetDetail = &widget.AssetDetail{
		Epoch:        1,
		CurrencyName: "BTC",
		Chart:        widget.ChartData{Status: widget.ChartReady, Points: []widget.ChartPoint{{Close: d("1")}}},
	}
	m, _ := newTestModel(s)
	assert.Contains(t, m.View(), "Not enough data to draw graph.")

	s.AssetDetail.Chart.Status = widget.ChartFailed
	assert.Contains(t, m.View(), "Chart data unavailable.")
}
