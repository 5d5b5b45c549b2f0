package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stocksent/internal/adapters/config"
	"stocksent/internal/adapters/errors/noop"
	"stocksent/internal/adapters/errors/sentry"
	"stocksent/internal/adapters/reddit"
	"stocksent/internal/adapters/stocks"
	"stocksent/internal/adapters/twitter"
	"stocksent/internal/domain/social"
	"stocksent/internal/services/csvtool"
	"stocksent/internal/services/pipeline"
	pricesvc "stocksent/internal/services/prices"
	"stocksent/internal/services/sentiment"
	"stocksent/pkg/errors"
	"stocksent/pkg/logger"
	"stocksent/pkg/retry"
)

const dateFormat = "2006-01-02"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// One bounded run; interrupt aborts in-flight waits
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "reddit":
		err = runReddit(ctx, cfg, os.Args[2:], log)
	case "tweets":
		err = runTweets(ctx, cfg, os.Args[2:], log)
	case "round":
		err = runRound(os.Args[2:], log)
	default:
		usage()
		os.Exit(2)
	}

	if flushErr := errorTracker.Flush(ctx); flushErr != nil {
		log.Warnf("Failed to flush error tracker: %v", flushErr)
	}

	if err != nil {
		log.Errorf("Run failed: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: stocksent <reddit|tweets|round> [flags]")
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Debug("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// runReddit scrapes subreddit comments, scores them and joins closing prices
func runReddit(ctx context.Context, cfg *config.Config, args []string, log *logger.Logger) error {
	fs := flag.NewFlagSet("reddit", flag.ExitOnError)
	ticker := fs.String("ticker", "", "stock ticker symbol (required)")
	company := fs.String("company", "", "company name (required)")
	subreddit := fs.String("subreddit", cfg.Scrape.Subreddit, "subreddit to search")
	posts := fs.Int("posts", cfg.Scrape.PostCount, "max posts to fetch")
	comments := fs.Int("comments", cfg.Scrape.CommentCount, "max comments per post")
	minScore := fs.Int("min-score", cfg.Scrape.MinScore, "min combined votes per comment")
	from := fs.String("from", "2024-01-01", "skip posts created before this date")
	out := fs.String("out", cfg.Scrape.OutputDir, "output directory")
	fs.Parse(args)

	query, err := buildQuery(*ticker, *company, *from)
	if err != nil {
		return err
	}
	query.Subreddit = *subreddit
	query.PostCount = *posts
	query.CommentCount = *comments
	query.MinScore = *minScore

	retrier := retry.New(retry.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		MinBackoff:  cfg.Retry.MinBackoff,
		MaxBackoff:  cfg.Retry.MaxBackoff,
		Multiplier:  cfg.Retry.Multiplier,
	}, log)

	source, err := reddit.NewClient(cfg.Reddit, retrier, log)
	if err != nil {
		return err
	}

	lookup := pricesvc.NewLookup(stocks.NewClient(cfg.App.HTTPTimeout, log), log)
	run := pipeline.NewReddit(source, sentiment.NewAnalyzer(), lookup, log)

	path, err := run.Run(ctx, query, *out)
	if err != nil {
		return err
	}
	log.Infof("Data saved to %s", path)
	return nil
}

// runTweets scrapes tweets, classifies them and joins daily closes
func runTweets(ctx context.Context, cfg *config.Config, args []string, log *logger.Logger) error {
	fs := flag.NewFlagSet("tweets", flag.ExitOnError)
	ticker := fs.String("ticker", "", "stock ticker symbol (required)")
	company := fs.String("company", "", "company name (required)")
	count := fs.Int("count", cfg.Scrape.TweetCount, "max tweets to fetch")
	from := fs.String("from", "2023-01-01", "start of the tweet date range")
	out := fs.String("out", cfg.Scrape.OutputDir, "output directory")
	fs.Parse(args)

	query, err := buildQuery(*ticker, *company, *from)
	if err != nil {
		return err
	}
	query.TweetCount = *count

	scraper := twitter.NewScraper(cfg.App.HTTPTimeout, log)
	priceSource := stocks.NewClient(cfg.App.HTTPTimeout, log)
	run := pipeline.NewTweets(scraper, sentiment.NewAnalyzer(), priceSource, log)

	path, err := run.Run(ctx, query, *out)
	if err != nil {
		return err
	}
	log.Infof("Data saved to %s", path)
	return nil
}

// runRound rounds a named numeric CSV column to one decimal place, in place
func runRound(args []string, log *logger.Logger) error {
	fs := flag.NewFlagSet("round", flag.ExitOnError)
	file := fs.String("file", "", "csv file to process (required)")
	column := fs.String("column", "", "column to round (required)")
	fs.Parse(args)

	if *file == "" || *column == "" {
		return errors.Wrap(errors.ErrInvalidInput, "-file and -column are required")
	}

	return csvtool.NewService(log).RoundColumn(*file, *column)
}

func buildQuery(ticker, company, from string) (social.Query, error) {
	if ticker == "" || company == "" {
		return social.Query{}, errors.Wrap(errors.ErrInvalidInput, "-ticker and -company are required")
	}
	fromDate, err := time.Parse(dateFormat, from)
	if err != nil {
		return social.Query{}, errors.Wrapf(errors.ErrInvalidInput, "invalid -from date %q", from)
	}
	return social.Query{
		Ticker:   ticker,
		Company:  company,
		FromDate: fromDate,
	}, nil
}
