package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stocksent/internal/adapters/config"
	"stocksent/pkg/errors"
	"stocksent/pkg/logger"
	"stocksent/pkg/retry"
)

func testLogger() *logger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return &logger.Logger{SugaredLogger: zapLogger.Sugar()}
}

func testRetrier() *retry.Retrier {
	return retry.New(retry.Config{MaxAttempts: 3, MinBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}, testLogger())
}

func testConfig(server *httptest.Server) config.RedditConfig {
	return config.RedditConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		UserAgent:    "stocksent-test/0.1",
		BaseURL:      server.URL,
		AuthURL:      server.URL + "/api/v1/access_token",
		Timeout:      5 * time.Second,
		RequestRate:  1000,
	}
}

const tokenJSON = `{"access_token":"tok-1","token_type":"bearer","expires_in":3600}`

const searchJSON = `{
	"kind": "Listing",
	"data": {"children": [
		{"kind": "t3", "data": {"id": "p1", "title": "MSFT earnings", "selftext": "thoughts?", "author": "alice", "ups": 120, "downs": 4, "score": 120, "created_utc": 1727400000}},
		{"kind": "t3", "data": {"id": "p2", "title": "old post", "selftext": "", "author": "bob", "ups": 0, "downs": 0, "score": 55, "created_utc": 1600000000}}
	]}
}`

const commentsJSON = `[
	{"kind": "Listing", "data": {"children": [{"kind": "t3", "data": {"id": "p1"}}]}},
	{"kind": "Listing", "data": {"children": [
		{"kind": "t1", "data": {"id": "c1", "body": "to the moon", "author": "carol", "ups": 40, "downs": 2, "score": 40, "created_utc": 1727400100, "replies": {
			"kind": "Listing", "data": {"children": [
				{"kind": "t1", "data": {"id": "c2", "body": "agreed", "author": "dave", "ups": 15, "downs": 0, "score": 15, "created_utc": 1727400200, "replies": ""}}
			]}
		}}},
		{"kind": "t1", "data": {"id": "c3", "body": "meh", "author": "erin", "ups": 3, "downs": 1, "score": 3, "created_utc": 1727400300, "replies": ""}},
		{"kind": "more", "data": {"count": 12, "children": ["c9"]}}
	]}}
]`

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)
		fmt.Fprint(w, tokenJSON)
	})
	mux.HandleFunc("/", handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(config.RedditConfig{}, testRetrier(), testLogger())

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingCredentials))
}

func TestSearchPosts(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/wallstreetbets/search.json", r.URL.Path)
		assert.Equal(t, "Microsoft OR MSFT", r.URL.Query().Get("q"))
		assert.Equal(t, "top", r.URL.Query().Get("sort"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "stocksent-test/0.1", r.Header.Get("User-Agent"))
		fmt.Fprint(w, searchJSON)
	})

	client, err := NewClient(testConfig(server), testRetrier(), testLogger())
	require.NoError(t, err)

	posts, err := client.SearchPosts(context.Background(), "wallstreetbets", "Microsoft OR MSFT", 50)
	require.NoError(t, err)

	require.Len(t, posts, 2)
	assert.Equal(t, "p1", posts[0].ID)
	assert.Equal(t, "MSFT earnings", posts[0].Title)
	assert.Equal(t, 120, posts[0].Ups)
	assert.Equal(t, time.Unix(1727400000, 0).UTC(), posts[0].CreatedAt)
	// Ups falls back to score when the listing omits it
	assert.Equal(t, 55, posts[1].Ups)
}

func TestPostCommentsFlattensAndFilters(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/comments/p1.json", r.URL.Path)
		fmt.Fprint(w, commentsJSON)
	})

	client, err := NewClient(testConfig(server), testRetrier(), testLogger())
	require.NoError(t, err)

	comments, err := client.PostComments(context.Background(), "p1", 20, 10)
	require.NoError(t, err)

	// c3 (engagement 4) filtered out, "more" stub skipped, nested reply kept
	require.Len(t, comments, 2)
	assert.Equal(t, "c1", comments[0].ID)
	assert.Equal(t, "c2", comments[1].ID)
	assert.Equal(t, "p1", comments[1].PostID)
}

func TestPostCommentsTruncates(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, commentsJSON)
	})

	client, err := NewClient(testConfig(server), testRetrier(), testLogger())
	require.NoError(t, err)

	comments, err := client.PostComments(context.Background(), "p1", 1, 10)
	require.NoError(t, err)

	require.Len(t, comments, 1)
	assert.Equal(t, "c1", comments[0].ID)
}

func TestRateLimitRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, searchJSON)
	})

	client, err := NewClient(testConfig(server), testRetrier(), testLogger())
	require.NoError(t, err)

	posts, err := client.SearchPosts(context.Background(), "stocks", "MSFT", 10)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, 2, attempts)
}

func TestRateLimitExhaustion(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	client, err := NewClient(testConfig(server), testRetrier(), testLogger())
	require.NoError(t, err)

	_, err = client.SearchPosts(context.Background(), "stocks", "MSFT", 10)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRateLimited))
}

func TestServerErrorIsNotRetried(t *testing.T) {
	attempts := 0
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	})

	client, err := NewClient(testConfig(server), testRetrier(), testLogger())
	require.NoError(t, err)

	_, err = client.SearchPosts(context.Background(), "stocks", "MSFT", 10)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnexpectedStatus))
	assert.Equal(t, 1, attempts)
}

func TestRetryAfterHeader(t *testing.T) {
	h := http.Header{}
	assert.Equal(t, time.Second, retryAfter(h))

	h.Set("Retry-After", "7")
	assert.Equal(t, 7*time.Second, retryAfter(h))

	h.Set("Retry-After", "not-a-number")
	assert.Equal(t, time.Second, retryAfter(h))
}
