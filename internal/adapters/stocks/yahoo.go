package stocks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"stocksent/internal/domain/prices"
	"stocksent/pkg/errors"
	"stocksent/pkg/logger"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client fetches daily closing prices from the Yahoo Finance chart API
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

// Option customizes the client
type Option func(*Client)

// WithBaseURL overrides the API endpoint (used in tests)
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// NewClient creates a Yahoo Finance client
func NewClient(timeout time.Duration, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chartResponse mirrors the subset of the v8 chart payload we consume
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyCloses returns the ticker's daily closing prices over [from, to],
// ascending by date. Days without trading data yield no entry.
func (c *Client) DailyCloses(ctx context.Context, ticker string, from, to time.Time) ([]prices.DailyClose, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", strconv.FormatInt(from.Unix(), 10))
	// period2 is exclusive; extend by a day so the end date's close is
	// included
	params.Set("period2", strconv.FormatInt(to.AddDate(0, 0, 1).Unix(), 10))

	endpoint := c.baseURL + "/v8/finance/chart/" + url.PathEscape(ticker) + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build chart request")
	}
	req.Header.Set("User-Agent", "stocksent/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Wrapf(errors.ErrInvalidTicker, "%s", ticker)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrUnexpectedStatus, "chart %s: %s", ticker, resp.Status)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, errors.Wrap(err, "decode chart response")
	}
	if chart.Chart.Error != nil {
		return nil, errors.Wrapf(errors.ErrInvalidTicker, "%s: %s", ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	closes := make([]prices.DailyClose, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		closes = append(closes, prices.DailyClose{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: decimal.NewFromFloat(*quote.Close[i]),
		})
	}

	c.log.Debugw("Fetched daily closes",
		"ticker", ticker,
		"from", from.Format("2006-01-02"),
		"to", to.Format("2006-01-02"),
		"count", len(closes),
	)
	return closes, nil
}
