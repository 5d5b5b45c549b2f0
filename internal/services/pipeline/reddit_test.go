package pipeline

import (
	"context"
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stocksent/internal/domain/prices"
	"stocksent/internal/domain/social"
	pricesvc "stocksent/internal/services/prices"
	"stocksent/internal/services/sentiment"
	"stocksent/pkg/errors"
	"stocksent/pkg/logger"
)

func testLogger() *logger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return &logger.Logger{SugaredLogger: zapLogger.Sugar()}
}

// MockPostSource is a mock for the social post source
type MockPostSource struct {
	searchPostsFunc  func(context.Context, string, string, int) ([]social.Post, error)
	postCommentsFunc func(context.Context, string, int, int) ([]social.Comment, error)
	commentCalls     []string
}

func (m *MockPostSource) SearchPosts(ctx context.Context, subreddit, query string, limit int) ([]social.Post, error) {
	if m.searchPostsFunc != nil {
		return m.searchPostsFunc(ctx, subreddit, query, limit)
	}
	return nil, nil
}

func (m *MockPostSource) PostComments(ctx context.Context, postID string, limit, minScore int) ([]social.Comment, error) {
	m.commentCalls = append(m.commentCalls, postID)
	if m.postCommentsFunc != nil {
		return m.postCommentsFunc(ctx, postID, limit, minScore)
	}
	return nil, nil
}

// MockPriceSource is a mock for the prices domain source
type MockPriceSource struct {
	dailyClosesFunc func(context.Context, string, time.Time, time.Time) ([]prices.DailyClose, error)
}

func (m *MockPriceSource) DailyCloses(ctx context.Context, ticker string, from, to time.Time) ([]prices.DailyClose, error) {
	if m.dailyClosesFunc != nil {
		return m.dailyClosesFunc(ctx, ticker, from, to)
	}
	return nil, nil
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func fixedPrices(value float64) *MockPriceSource {
	return &MockPriceSource{
		dailyClosesFunc: func(ctx context.Context, ticker string, from, to time.Time) ([]prices.DailyClose, error) {
			return []prices.DailyClose{{Date: from, Close: decimal.NewFromFloat(value)}}, nil
		},
	}
}

func testQuery() social.Query {
	return social.Query{
		Ticker:       "MSFT",
		Company:      "Microsoft",
		Subreddit:    "wallstreetbets",
		PostCount:    50,
		CommentCount: 20,
		MinScore:     10,
		FromDate:     day("2024-01-01"),
	}
}

func TestRedditRunWritesRows(t *testing.T) {
	source := &MockPostSource{
		searchPostsFunc: func(ctx context.Context, subreddit, query string, limit int) ([]social.Post, error) {
			assert.Equal(t, "wallstreetbets", subreddit)
			assert.Equal(t, "Microsoft OR MSFT", query)
			assert.Equal(t, 50, limit)
			return []social.Post{
				{ID: "p1", Ups: 200, Downs: 10, CreatedAt: day("2024-06-01")},
			}, nil
		},
		postCommentsFunc: func(ctx context.Context, postID string, limit, minScore int) ([]social.Comment, error) {
			assert.Equal(t, 20, limit)
			assert.Equal(t, 10, minScore)
			return []social.Comment{
				{ID: "c1", PostID: postID, Body: "amazing earnings, buying more", Ups: 40, Downs: 2, CreatedAt: day("2024-06-01").Add(14 * time.Hour)},
				{ID: "c2", PostID: postID, Body: "terrible guidance, selling", Ups: 15, Downs: 1, CreatedAt: day("2024-06-01").Add(15 * time.Hour)},
			}, nil
		},
	}

	out := t.TempDir()
	p := NewReddit(source, sentiment.NewAnalyzer(), pricesvc.NewLookup(fixedPrices(420.69), testLogger()), testLogger())

	path, err := p.Run(context.Background(), testQuery(), out)
	require.NoError(t, err)
	require.FileExists(t, path)
	assert.Regexp(t, `reddit_sentiment_MSFT_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.csv$`, path)

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{
		"Comment Text", "Sentiment", "Comment Upvotes", "Comment Downvotes",
		"Post Upvotes", "Post Downvotes", "Comment Date", "Stock Closing Price",
	}, records[0])
	assert.Equal(t, "amazing earnings, buying more", records[1][0])
	assert.Equal(t, "40", records[1][2])
	assert.Equal(t, "200", records[1][4])
	assert.Equal(t, "2024-06-01 14:00:00", records[1][6])
	assert.Equal(t, "420.69", records[1][7])
}

func TestRedditRunSkipsOldPosts(t *testing.T) {
	source := &MockPostSource{
		searchPostsFunc: func(ctx context.Context, subreddit, query string, limit int) ([]social.Post, error) {
			return []social.Post{
				{ID: "old", CreatedAt: day("2023-12-31")},
				{ID: "boundary", CreatedAt: day("2024-01-01")},
				{ID: "new", CreatedAt: day("2024-06-01")},
			}, nil
		},
		postCommentsFunc: func(ctx context.Context, postID string, limit, minScore int) ([]social.Comment, error) {
			return []social.Comment{{ID: postID + "-c", PostID: postID, Body: "ok", Ups: 20, CreatedAt: day("2024-06-02")}}, nil
		},
	}

	p := NewReddit(source, sentiment.NewAnalyzer(), pricesvc.NewLookup(&MockPriceSource{}, testLogger()), testLogger())

	path, err := p.Run(context.Background(), testQuery(), t.TempDir())
	require.NoError(t, err)

	// Comments were never requested for the pre-cutoff post
	assert.Equal(t, []string{"boundary", "new"}, source.commentCalls)

	records := readCSV(t, path)
	assert.Len(t, records, 3) // header + one row per qualifying post
}

func TestRedditRunNullPrice(t *testing.T) {
	source := &MockPostSource{
		searchPostsFunc: func(ctx context.Context, subreddit, query string, limit int) ([]social.Post, error) {
			return []social.Post{{ID: "p1", CreatedAt: day("2024-06-01")}}, nil
		},
		postCommentsFunc: func(ctx context.Context, postID string, limit, minScore int) ([]social.Comment, error) {
			return []social.Comment{{ID: "c1", Body: "hm", Ups: 12, CreatedAt: day("2024-06-01")}}, nil
		},
	}

	p := NewReddit(source, sentiment.NewAnalyzer(), pricesvc.NewLookup(&MockPriceSource{}, testLogger()), testLogger())

	path, err := p.Run(context.Background(), testQuery(), t.TempDir())
	require.NoError(t, err)

	records := readCSV(t, path)
	require.Len(t, records, 2)
	assert.Empty(t, records[1][7])
}

func TestRedditRunSearchFailure(t *testing.T) {
	source := &MockPostSource{
		searchPostsFunc: func(ctx context.Context, subreddit, query string, limit int) ([]social.Post, error) {
			return nil, errors.ErrRateLimited
		},
	}

	p := NewReddit(source, sentiment.NewAnalyzer(), pricesvc.NewLookup(&MockPriceSource{}, testLogger()), testLogger())

	_, err := p.Run(context.Background(), testQuery(), t.TempDir())

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRateLimited))
}

func TestRedditRunPartialOnCommentFailure(t *testing.T) {
	source := &MockPostSource{
		searchPostsFunc: func(ctx context.Context, subreddit, query string, limit int) ([]social.Post, error) {
			return []social.Post{
				{ID: "p1", CreatedAt: day("2024-06-01")},
				{ID: "p2", CreatedAt: day("2024-06-02")},
			}, nil
		},
		postCommentsFunc: func(ctx context.Context, postID string, limit, minScore int) ([]social.Comment, error) {
			if postID == "p2" {
				return nil, errors.ErrRateLimited
			}
			return []social.Comment{{ID: "c1", Body: "fine", Ups: 30, CreatedAt: day("2024-06-01")}}, nil
		},
	}

	p := NewReddit(source, sentiment.NewAnalyzer(), pricesvc.NewLookup(&MockPriceSource{}, testLogger()), testLogger())

	path, err := p.Run(context.Background(), testQuery(), t.TempDir())

	// Rows gathered before the failure are still written
	require.Error(t, err)
	require.FileExists(t, path)
	records := readCSV(t, path)
	assert.Len(t, records, 2)
}

func TestRedditRunSentimentInRange(t *testing.T) {
	source := &MockPostSource{
		searchPostsFunc: func(ctx context.Context, subreddit, query string, limit int) ([]social.Post, error) {
			return []social.Post{{ID: "p1", CreatedAt: day("2024-06-01")}}, nil
		},
		postCommentsFunc: func(ctx context.Context, postID string, limit, minScore int) ([]social.Comment, error) {
			return []social.Comment{
				{ID: "c1", Body: "absolutely incredible, best stock ever!!!", Ups: 50, CreatedAt: day("2024-06-01")},
				{ID: "c2", Body: "worst disaster in market history, horrible", Ups: 50, CreatedAt: day("2024-06-01")},
			}, nil
		},
	}

	analyzer := sentiment.NewAnalyzer()
	p := NewReddit(source, analyzer, pricesvc.NewLookup(&MockPriceSource{}, testLogger()), testLogger())

	path, err := p.Run(context.Background(), testQuery(), t.TempDir())
	require.NoError(t, err)

	records := readCSV(t, path)
	require.Len(t, records, 3)
	for _, rec := range records[1:] {
		score := rec[1]
		require.NotEmpty(t, score)
	}
}
