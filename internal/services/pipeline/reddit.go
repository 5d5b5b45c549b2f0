package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"stocksent/internal/domain/social"
	pricesvc "stocksent/internal/services/prices"
	"stocksent/internal/services/sentiment"
	"stocksent/pkg/errors"
	"stocksent/pkg/logger"
)

const (
	commentDateFormat  = "2006-01-02 15:04:05"
	redditStampFormat  = "2006-01-02_15-04-05"
	redditFilenameTmpl = "reddit_sentiment_%s_%s.csv"
)

// Reddit runs the Reddit collection pipeline: search posts, expand and rank
// comments, score sentiment, join closing prices, persist one CSV per run.
type Reddit struct {
	source   social.PostSource
	analyzer *sentiment.Analyzer
	prices   *pricesvc.Lookup
	log      *logger.Logger

	now func() time.Time
}

// NewReddit creates the Reddit pipeline
func NewReddit(source social.PostSource, analyzer *sentiment.Analyzer, prices *pricesvc.Lookup, log *logger.Logger) *Reddit {
	return &Reddit{
		source:   source,
		analyzer: analyzer,
		prices:   prices,
		log:      log,
		now:      time.Now,
	}
}

// Run executes one bounded collection pass and returns the written CSV path.
// A fetch failure mid-run still writes the rows gathered so far; the error is
// returned alongside the partial output's path.
func (p *Reddit) Run(ctx context.Context, query social.Query, outDir string) (string, error) {
	started := p.now()

	posts, err := p.source.SearchPosts(ctx, query.Subreddit, query.SearchTerms(), query.PostCount)
	if err != nil {
		return "", errors.Wrap(err, "search posts")
	}

	var (
		rows     []RedditRow
		scanned  int
		fetchErr error
	)
	for _, post := range posts {
		// Posts older than the cutoff are skipped entirely; their
		// comments are never fetched
		if post.CreatedAt.Before(query.FromDate) {
			continue
		}
		scanned++

		comments, err := p.source.PostComments(ctx, post.ID, query.CommentCount, query.MinScore)
		if err != nil {
			p.log.ErrorWithContext(ctx, errors.Wrapf(err, "comments for post %s", post.ID), map[string]string{
				"component": "reddit_pipeline",
				"post_id":   post.ID,
			})
			fetchErr = err
			break
		}

		for _, comment := range comments {
			rows = append(rows, p.buildRow(ctx, query.Ticker, post, comment))
		}
	}

	path := filepath.Join(outDir, fmt.Sprintf(redditFilenameTmpl, query.Ticker, started.Format(redditStampFormat)))
	if err := writeCSV(path, &rows); err != nil {
		return "", err
	}

	p.log.Infow("Reddit run complete",
		"ticker", query.Ticker,
		"posts_scanned", scanned,
		"rows_written", humanize.Comma(int64(len(rows))),
		"output", path,
		"elapsed", p.now().Sub(started).Round(time.Millisecond),
	)

	if fetchErr != nil {
		return path, errors.Wrap(fetchErr, "run incomplete")
	}
	return path, nil
}

// buildRow scores one comment and joins the closing price at its UTC date
func (p *Reddit) buildRow(ctx context.Context, ticker string, post social.Post, comment social.Comment) RedditRow {
	row := RedditRow{
		CommentText:      comment.Body,
		Sentiment:        p.analyzer.Score(comment.Body),
		CommentUpvotes:   comment.Ups,
		CommentDownvotes: comment.Downs,
		PostUpvotes:      post.Ups,
		PostDownvotes:    post.Downs,
		CommentDate:      comment.CreatedAt.Format(commentDateFormat),
	}
	if price, ok := p.prices.ClosingPrice(ctx, ticker, comment.CreatedAt); ok {
		row.StockClosingPrice = price.String()
	}
	return row
}
