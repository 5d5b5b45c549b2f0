package prices

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyClose represents one trading day's closing price
type DailyClose struct {
	Date  time.Time // UTC, truncated to day
	Close decimal.Decimal
}
