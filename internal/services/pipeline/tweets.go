package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"stocksent/internal/domain/prices"
	"stocksent/internal/domain/social"
	"stocksent/internal/services/sentiment"
	"stocksent/pkg/errors"
	"stocksent/pkg/logger"
)

const (
	tweetDateFormat   = "2006-01-02"
	tweetStampFormat  = "20060102_150405"
	tweetFilenameBase = "sentiment_with_stock_"
)

// Tweets runs the legacy Twitter/X collection pipeline: fetch tweets, clean,
// classify, left-join daily closes by calendar date, persist one CSV per run.
type Tweets struct {
	source   social.TweetSource
	analyzer *sentiment.Analyzer
	prices   prices.Source
	log      *logger.Logger

	now func() time.Time
}

// NewTweets creates the tweet pipeline
func NewTweets(source social.TweetSource, analyzer *sentiment.Analyzer, priceSource prices.Source, log *logger.Logger) *Tweets {
	return &Tweets{
		source:   source,
		analyzer: analyzer,
		prices:   priceSource,
		log:      log,
		now:      time.Now,
	}
}

// Run executes one bounded collection pass and returns the written CSV path
func (p *Tweets) Run(ctx context.Context, query social.Query, outDir string) (string, error) {
	started := p.now()
	today := started.UTC().Truncate(24 * time.Hour)

	tweets, err := p.source.SearchTweets(ctx, query.TweetSearchTerms(today), query.TweetCount)
	if err != nil {
		return "", errors.Wrap(err, "search tweets")
	}

	// One bulk window download; tweets on non-trading days keep an empty
	// close (left join)
	closeByDate := p.dailyCloseIndex(ctx, query.Ticker, query.FromDate, today)

	rows := make([]TweetRow, 0, len(tweets))
	for _, tweet := range tweets {
		cleaned := social.CleanTweet(tweet.Text)
		row := TweetRow{
			Date:         tweet.Date.UTC().Format(tweetDateFormat),
			Username:     tweet.Username,
			Tweet:        tweet.Text,
			CleanedTweet: cleaned,
			Sentiment:    p.analyzer.Classify(cleaned).String(),
		}
		if c, ok := closeByDate[row.Date]; ok {
			row.Close = c.String()
		}
		rows = append(rows, row)
	}

	path := filepath.Join(outDir, query.Company, tweetFilenameBase+started.Format(tweetStampFormat)+".csv")
	if err := writeCSV(path, &rows); err != nil {
		return "", err
	}

	p.log.Infow("Tweet run complete",
		"ticker", query.Ticker,
		"company", query.Company,
		"rows_written", humanize.Comma(int64(len(rows))),
		"output", path,
		"elapsed", p.now().Sub(started).Round(time.Millisecond),
	)
	return path, nil
}

// dailyCloseIndex downloads the run's price window and keys closes by
// calendar date. Fetch failures degrade to an empty index; every row keeps a
// null close.
func (p *Tweets) dailyCloseIndex(ctx context.Context, ticker string, from, to time.Time) map[string]decimal.Decimal {
	closes, err := p.prices.DailyCloses(ctx, ticker, from, to)
	if err != nil {
		p.log.Warnw("Price window fetch failed, prices will be null",
			"ticker", ticker,
			"error", err,
		)
		return nil
	}

	index := make(map[string]decimal.Decimal, len(closes))
	for _, c := range closes {
		index[c.Date.Format(tweetDateFormat)] = c.Close
	}
	return index
}
