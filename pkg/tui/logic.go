package tui

import (
	"errors"
	"sort"
	"strings"
	"time"

	"ftxwidget/pkg/store"
	"ftxwidget/pkg/widget"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

func listenForStore(sub store.Subscriber) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return nil
		}
		return ev
	}
}

func dispatchCmd(dispatch widget.Dispatch, action widget.Action) tea.Cmd {
	return func() tea.Msg {
		if dispatch != nil {
			dispatch(action)
		}
		return nil
	}
}

func countdownTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return countdownTickMsg(t)
	})
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m model) selectedSymbol() string {
	names := m.state.CurrencyNames
	if len(names) == 0 {
		return ""
	}
	idx := m.marketIdx
	if idx >= len(names) {
		idx = len(names) - 1
	}
	return names[idx]
}

// availableBalance returns the free amount of coin, if any.
func (m model) availableBalance(coin string) (decimal.Decimal, bool) {
	coin = strings.ToUpper(strings.TrimSpace(coin))
	for k, v := range m.state.Balances {
		if strings.ToUpper(k) == coin {
			return v, true
		}
	}
	return decimal.Zero, false
}

var (
	errNoTotal       = errors.New("balances are unavailable, cannot convert")
	errMissingCoin   = errors.New("enter both currencies")
	errSameCoin      = errors.New("choose two different currencies")
	errBadQuantity   = errors.New("quantity must be a positive number")
	errOverAvailable = errors.New("quantity exceeds available balance")
)

// buildPreview validates the convert form.
func (m model) buildPreview() (widget.PreviewConversion, error) {
	if m.state.BalanceTotal == nil {
		return widget.PreviewConversion{}, errNoTotal
	}
	from := strings.ToUpper(strings.TrimSpace(m.convertInputs[fieldFrom].Value()))
	to := strings.ToUpper(strings.TrimSpace(m.convertInputs[fieldTo].Value()))
	if from == "" || to == "" {
		return widget.PreviewConversion{}, errMissingCoin
	}
	if from == to {
		return widget.PreviewConversion{}, errSameCoin
	}
	qty, err := decimal.NewFromString(strings.TrimSpace(m.convertInputs[fieldQuantity].Value()))
	if err != nil || !qty.IsPositive() {
		return widget.PreviewConversion{}, errBadQuantity
	}
	if avail, ok := m.availableBalance(from); ok && qty.GreaterThan(avail) {
		return widget.PreviewConversion{}, errOverAvailable
	}
	return widget.PreviewConversion{From: from, To: to, Quantity: qty}, nil
}

type balanceRow struct {
	Coin   string
	Amount decimal.Decimal
	Value  *decimal.Decimal
}

// balanceRows lists non-zero balances by descending USD value; unpriced
// coins sort last.
func (m model) balanceRows() []balanceRow {
	var rows []balanceRow
	for coin, amount := range m.state.Balances {
		if amount.IsZero() {
			continue
		}
		row := balanceRow{Coin: coin, Amount: amount}
		if strings.EqualFold(coin, "USD") {
			v := amount
			row.Value = &v
		} else if t := m.state.Lookup(strings.ToUpper(coin)); t != nil && !t.Price.IsZero() {
			v := amount.Mul(t.Price)
			row.Value = &v
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].Value, rows[j].Value
		switch {
		case a == nil && b == nil:
			return rows[i].Coin < rows[j].Coin
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return rows[i].Coin < rows[j].Coin
		}
		return a.GreaterThan(*b)
	})
	return rows
}

func chartCloses(points []widget.ChartPoint) []decimal.Decimal {
	closes := make([]decimal.Decimal, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}
