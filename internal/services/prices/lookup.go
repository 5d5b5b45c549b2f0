package prices

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stocksent/internal/domain/prices"
	"stocksent/pkg/logger"
)

// Lookback window covering weekends and most holiday gaps
const lookbackDays = 3

// Lookup resolves last-known closing prices through a market data source
type Lookup struct {
	source prices.Source
	log    *logger.Logger
}

// NewLookup creates a new price lookup service
func NewLookup(source prices.Source, log *logger.Logger) *Lookup {
	return &Lookup{
		source: source,
		log:    log,
	}
}

// ClosingPrice returns the closing price of the latest trading day at or
// before date, searching the preceding lookback window. The second return is
// false when the window holds no trading data or the fetch fails; fetch
// errors are logged, never propagated.
func (l *Lookup) ClosingPrice(ctx context.Context, ticker string, date time.Time) (decimal.Decimal, bool) {
	day := date.UTC().Truncate(24 * time.Hour)
	from := day.AddDate(0, 0, -lookbackDays)

	closes, err := l.source.DailyCloses(ctx, ticker, from, day)
	if err != nil {
		l.log.Warnw("Price fetch failed, substituting null",
			"ticker", ticker,
			"date", day.Format("2006-01-02"),
			"error", err,
		)
		return decimal.Decimal{}, false
	}

	// Latest trading day at or before the target date
	var (
		best  decimal.Decimal
		found bool
	)
	for _, c := range closes {
		if c.Date.After(day) {
			continue
		}
		best = c.Close
		found = true
	}

	if !found {
		l.log.Debugw("No trading data in lookback window",
			"ticker", ticker,
			"date", day.Format("2006-01-02"),
		)
	}
	return best, found
}
