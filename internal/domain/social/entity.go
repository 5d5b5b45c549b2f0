package social

import "time"

// Query defines the scope of one collection run. Immutable for the run's
// duration.
type Query struct {
	Ticker       string
	Company      string
	Subreddit    string
	PostCount    int
	CommentCount int
	MinScore     int
	TweetCount   int
	FromDate     time.Time
}

// SearchTerms returns the provider search string, a disjunction of the
// company name and ticker
func (q Query) SearchTerms() string {
	return q.Company + " OR " + q.Ticker
}

// TweetSearchTerms returns the tweet search string: a disjunction of ticker,
// company and cashtag terms bounded by [FromDate, today]
func (q Query) TweetSearchTerms(today time.Time) string {
	return q.Ticker + " OR " + q.Company + " Stock OR $" + q.Ticker +
		" since:" + q.FromDate.Format("2006-01-02") +
		" until:" + today.Format("2006-01-02")
}

// Post represents a submission on a social platform
type Post struct {
	ID        string
	Title     string
	Body      string
	Author    string
	Ups       int
	Downs     int
	CreatedAt time.Time // UTC
}

// Comment represents a reply under a post
type Comment struct {
	ID        string
	PostID    string
	Body      string
	Author    string
	Ups       int
	Downs     int
	CreatedAt time.Time // UTC
}

// Engagement is the combined vote counter used for ranking and filtering.
// Providers may report fuzzed or derived counts; the sum is preserved as
// named rather than treated as raw vote totals.
func (c Comment) Engagement() int {
	return c.Ups + c.Downs
}

// Tweet represents one tweet from the legacy Twitter/X source
type Tweet struct {
	Date     time.Time // UTC
	Username string
	Text     string
}
