package widget

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ComputeBalanceTotal values every balance in USD. It returns nil when a
// non-zero, non-USD balance has no priced market entry, so a partial total
// is never shown. Nil is also returned when there is nothing to total.
func ComputeBalanceTotal(balances map[string]decimal.Decimal, marketData []MarketTicker) *decimal.Decimal {
	if len(balances) == 0 {
		return nil
	}

	currencies := make([]string, 0, len(balances))
	for currency := range balances {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	var total *decimal.Decimal
	for _, currency := range currencies {
		amount := balances[currency]
		if amount.IsZero() {
			continue
		}
		var value decimal.Decimal
		if strings.EqualFold(currency, "usd") {
			value = amount
		} else {
			price, ok := priceOf(currency, marketData)
			if !ok {
				return nil
			}
			value = amount.Mul(price)
		}
		if total == nil {
			total = &decimal.Decimal{}
		}
		sum := total.Add(value)
		total = &sum
	}
	return total
}

func priceOf(symbol string, marketData []MarketTicker) (decimal.Decimal, bool) {
	for _, m := range marketData {
		if m.Symbol == symbol {
			if m.Price.IsZero() {
				return decimal.Zero, false
			}
			return m.Price, true
		}
	}
	return decimal.Zero, false
}
