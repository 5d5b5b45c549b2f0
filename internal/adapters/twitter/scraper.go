package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"stocksent/internal/domain/social"
	"stocksent/pkg/errors"
	"stocksent/pkg/logger"
)

const (
	defaultBaseURL = "https://api.twitter.com"
	// Public web-client bearer used for guest sessions
	publicBearer = "AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"

	pageSize = 100
)

// Scraper fetches tweets through the web client's guest-session search API.
// Legacy path: no rate-limit retry of its own, bounded only by the requested
// limit.
type Scraper struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger

	guestToken string
}

// Option customizes the scraper
type Option func(*Scraper)

// WithBaseURL overrides the API endpoint (used in tests)
func WithBaseURL(u string) Option {
	return func(s *Scraper) { s.baseURL = u }
}

// NewScraper creates a tweet scraper
func NewScraper(timeout time.Duration, log *logger.Logger, opts ...Option) *Scraper {
	s := &Scraper{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wire types for the adaptive search payload

type searchResponse struct {
	GlobalObjects struct {
		Tweets map[string]wireTweet `json:"tweets"`
		Users  map[string]wireUser  `json:"users"`
	} `json:"globalObjects"`
	Timeline struct {
		Instructions []json.RawMessage `json:"instructions"`
	} `json:"timeline"`
}

type wireTweet struct {
	ID        string `json:"id_str"`
	FullText  string `json:"full_text"`
	CreatedAt string `json:"created_at"`
	UserID    string `json:"user_id_str"`
}

type wireUser struct {
	ScreenName string `json:"screen_name"`
}

type guestTokenResponse struct {
	GuestToken string `json:"guest_token"`
}

// SearchTweets returns up to limit tweets matching the query, newest first
func (s *Scraper) SearchTweets(ctx context.Context, query string, limit int) ([]social.Tweet, error) {
	if limit <= 0 {
		return nil, nil
	}
	if err := s.activateGuest(ctx); err != nil {
		return nil, errors.Wrap(err, "activate guest session")
	}

	var (
		tweets []social.Tweet
		cursor string
	)
	for len(tweets) < limit {
		page, next, err := s.searchPage(ctx, query, min(pageSize, limit-len(tweets)), cursor)
		if err != nil {
			return nil, errors.Wrap(err, "search tweets")
		}
		if len(page) == 0 {
			break
		}
		tweets = append(tweets, page...)
		if next == "" || next == cursor {
			break
		}
		cursor = next
	}

	if len(tweets) > limit {
		tweets = tweets[:limit]
	}
	s.log.Debugw("Fetched tweets", "query", query, "count", len(tweets))
	return tweets, nil
}

// searchPage fetches one result page and the cursor for the next
func (s *Scraper) searchPage(ctx context.Context, query string, count int, cursor string) ([]social.Tweet, string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("tweet_search_mode", "live")
	params.Set("query_source", "typed_query")
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/2/search/adaptive.json?"+params.Encode(), nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "build search request")
	}
	req.Header.Set("Authorization", "Bearer "+publicBearer)
	req.Header.Set("X-Guest-Token", s.guestToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", errors.Wrapf(errors.ErrUnexpectedStatus, "search: %s", resp.Status)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, "", errors.Wrap(err, "decode search response")
	}

	tweets := make([]social.Tweet, 0, len(payload.GlobalObjects.Tweets))
	for _, wt := range payload.GlobalObjects.Tweets {
		created, err := time.Parse(time.RubyDate, wt.CreatedAt)
		if err != nil {
			s.log.Warnw("Skipping tweet with unparseable date", "id", wt.ID, "created_at", wt.CreatedAt)
			continue
		}
		username := payload.GlobalObjects.Users[wt.UserID].ScreenName
		tweets = append(tweets, social.Tweet{
			Date:     created.UTC(),
			Username: username,
			Text:     wt.FullText,
		})
	}

	// Map iteration order is random; present newest first like the web client
	sort.Slice(tweets, func(i, j int) bool {
		return tweets[i].Date.After(tweets[j].Date)
	})

	return tweets, bottomCursor(payload.Timeline.Instructions), nil
}

// bottomCursor digs the pagination cursor out of the timeline instructions
func bottomCursor(instructions []json.RawMessage) string {
	type entry struct {
		EntryID string `json:"entryId"`
		Content struct {
			Operation struct {
				Cursor struct {
					Value      string `json:"value"`
					CursorType string `json:"cursorType"`
				} `json:"cursor"`
			} `json:"operation"`
		} `json:"content"`
	}

	for _, raw := range instructions {
		var instruction struct {
			AddEntries struct {
				Entries []entry `json:"entries"`
			} `json:"addEntries"`
			ReplaceEntry struct {
				Entry entry `json:"entry"`
			} `json:"replaceEntry"`
		}
		if err := json.Unmarshal(raw, &instruction); err != nil {
			continue
		}
		for _, e := range instruction.AddEntries.Entries {
			if e.Content.Operation.Cursor.CursorType == "Bottom" {
				return e.Content.Operation.Cursor.Value
			}
		}
		if e := instruction.ReplaceEntry.Entry; e.Content.Operation.Cursor.CursorType == "Bottom" {
			return e.Content.Operation.Cursor.Value
		}
	}
	return ""
}

// activateGuest obtains a guest token for unauthenticated search
func (s *Scraper) activateGuest(ctx context.Context) error {
	if s.guestToken != "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/1.1/guest/activate.json", nil)
	if err != nil {
		return errors.Wrap(err, "build guest request")
	}
	req.Header.Set("Authorization", "Bearer "+publicBearer)

	resp, err := s.http.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(errors.ErrUnexpectedStatus, "guest activate: %s", resp.Status)
	}

	var token guestTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return errors.Wrap(err, "decode guest token")
	}
	if token.GuestToken == "" {
		return errors.New("empty guest token")
	}

	s.guestToken = token.GuestToken
	return nil
}
