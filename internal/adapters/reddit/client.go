package reddit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stocksent/internal/adapters/config"
	"stocksent/internal/domain/social"
	"stocksent/pkg/errors"
	"stocksent/pkg/logger"
	"stocksent/pkg/retry"
)

const defaultRetryAfter = 1 * time.Second

// Client talks to the Reddit JSON API with OAuth2 client credentials.
// Requests are paced by a rate limiter and rate-limit responses are retried
// with bounded backoff.
type Client struct {
	cfg     config.RedditConfig
	http    *http.Client
	limiter *rate.Limiter
	retrier *retry.Retrier
	log     *logger.Logger

	token       string
	tokenExpiry time.Time
}

// NewClient creates a Reddit API client. Missing credentials fail
// construction.
func NewClient(cfg config.RedditConfig, retrier *retry.Retrier, log *logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "reddit client")
	}

	requestRate := cfg.RequestRate
	if requestRate <= 0 {
		requestRate = 1
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(requestRate), 1),
		retrier: retrier,
		log:     log,
	}, nil
}

// SearchPosts returns up to limit posts from the subreddit matching query,
// ranked by top
func (c *Client) SearchPosts(ctx context.Context, subreddit, query string, limit int) ([]social.Post, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "top")
	params.Set("restrict_sr", "1")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("raw_json", "1")

	var body []byte
	err := c.retrier.Do(ctx, "reddit search", func(ctx context.Context) error {
		var err error
		body, err = c.get(ctx, "/r/"+subreddit+"/search.json", params)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "search posts in r/%s", subreddit)
	}

	var result listing
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrap(err, "decode search listing")
	}

	posts := make([]social.Post, 0, len(result.Data.Children))
	for _, child := range result.Data.Children {
		var p postData
		if err := json.Unmarshal(child.Data, &p); err != nil {
			c.log.Warnw("Skipping undecodable post", "error", err)
			continue
		}
		posts = append(posts, toPost(p))
	}

	c.log.Debugw("Fetched posts", "subreddit", subreddit, "count", len(posts))
	return posts, nil
}

// PostComments fetches the post's full comment forest, flattens it, ranks by
// engagement, filters to minScore and truncates to limit
func (c *Client) PostComments(ctx context.Context, postID string, limit, minScore int) ([]social.Comment, error) {
	params := url.Values{}
	params.Set("raw_json", "1")

	var body []byte
	err := c.retrier.Do(ctx, "reddit comments", func(ctx context.Context) error {
		var err error
		body, err = c.get(ctx, "/comments/"+postID+".json", params)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetch comments for post %s", postID)
	}

	// The response is a two-element array: the post listing, then the
	// comment forest
	var listings []listing
	if err := json.Unmarshal(body, &listings); err != nil {
		return nil, errors.Wrap(err, "decode comments response")
	}
	if len(listings) < 2 {
		return nil, nil
	}

	var flat []social.Comment
	c.flatten(listings[1].Data.Children, postID, &flat)

	return social.SelectComments(flat, limit, minScore), nil
}

// flatten walks the reply forest depth-first, appending every comment.
// "more" stubs are skipped; their children are not fetched.
func (c *Client) flatten(children []thing, postID string, out *[]social.Comment) {
	for _, child := range children {
		if child.Kind != "t1" {
			continue
		}

		var d commentData
		if err := json.Unmarshal(child.Data, &d); err != nil {
			c.log.Warnw("Skipping undecodable comment", "post_id", postID, "error", err)
			continue
		}
		*out = append(*out, toComment(d, postID))

		// Replies is an empty string when there are none
		trimmed := strings.TrimSpace(string(d.Replies))
		if len(trimmed) == 0 || trimmed == `""` || trimmed == "null" {
			continue
		}
		var replies listing
		if err := json.Unmarshal(d.Replies, &replies); err != nil {
			continue
		}
		c.flatten(replies.Data.Children, postID, out)
	}
}

// get performs one authenticated request, translating rate-limit responses
// into retryable errors
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &retry.RateLimitError{RetryAfter: retryAfter(resp.Header)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(errors.ErrUnexpectedStatus, "GET %s: %s", path, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// accessToken returns a cached app-only token, fetching a fresh one when the
// cached token is missing or about to expire
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "build token request")
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(errors.ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrapf(errors.ErrMissingCredentials, "token request: %s", resp.Status)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", errors.Wrap(err, "decode token response")
	}
	if tok.AccessToken == "" {
		return "", errors.Wrap(errors.ErrMissingCredentials, "empty access token")
	}

	c.token = tok.AccessToken
	// Refresh one minute early
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

// retryAfter reads the provider's requested delay, defaulting to one second
func retryAfter(h http.Header) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultRetryAfter
}

func toPost(p postData) social.Post {
	ups := p.Ups
	if ups == 0 {
		ups = p.Score
	}
	return social.Post{
		ID:        p.ID,
		Title:     p.Title,
		Body:      p.Selftext,
		Author:    p.Author,
		Ups:       ups,
		Downs:     p.Downs,
		CreatedAt: time.Unix(int64(p.CreatedUTC), 0).UTC(),
	}
}

func toComment(d commentData, postID string) social.Comment {
	ups := d.Ups
	if ups == 0 {
		ups = d.Score
	}
	return social.Comment{
		ID:        d.ID,
		PostID:    postID,
		Body:      d.Body,
		Author:    d.Author,
		Ups:       ups,
		Downs:     d.Downs,
		CreatedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
	}
}
