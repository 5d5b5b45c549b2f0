package prices

import (
	"context"
	"time"
)

// Source defines the interface for market data providers
type Source interface {
	// DailyCloses returns daily closing prices for ticker over
	// [from, to], ascending by date. Non-trading days yield no entry.
	DailyCloses(ctx context.Context, ticker string, from, to time.Time) ([]DailyClose, error)
}
