package widget

import (
	"context"

	"ftxwidget/pkg/models"

	"github.com/shopspring/decimal"
)

// Exchange is the remote trading API the effect handler drives. Every call
// resolves exactly once; failures are reported as errors, never panics.
type Exchange interface {
	GetAccountBalances(ctx context.Context) (balances map[string]decimal.Decimal, authInvalid bool, err error)
	GetFuturesData(ctx context.Context) ([]models.FuturesTicker, error)
	GetChartData(ctx context.Context, market string, startTime, endTime int64) ([]models.Candle, error)
	GetConvertQuote(ctx context.Context, from, to string, quantity decimal.Decimal) (string, error)
	GetConvertQuoteInfo(ctx context.Context, quoteID string) (models.QuoteInfo, error)
	ExecuteConvertQuote(ctx context.Context, quoteID string) (bool, error)
	GetClientURL(ctx context.Context) (string, error)
}

// Navigator hands a URL off to whatever can open it for the user.
type Navigator interface {
	Navigate(url string) error
}

// Dispatch sends an action back into the store.
type Dispatch func(Action)
