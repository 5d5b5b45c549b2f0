package pipeline

// Output row schemas. The CSV column set of each variant is fixed by the
// struct tags; drift breaks compilation rather than the written file.

// RedditRow is one persisted comment with its sentiment and price context
type RedditRow struct {
	CommentText       string  `csv:"Comment Text"`
	Sentiment         float64 `csv:"Sentiment"`
	CommentUpvotes    int     `csv:"Comment Upvotes"`
	CommentDownvotes  int     `csv:"Comment Downvotes"`
	PostUpvotes       int     `csv:"Post Upvotes"`
	PostDownvotes     int     `csv:"Post Downvotes"`
	CommentDate       string  `csv:"Comment Date"`
	StockClosingPrice string  `csv:"Stock Closing Price"` // empty when no trading data
}

// TweetRow is one persisted tweet with its sentiment label and price context
type TweetRow struct {
	Date         string `csv:"Date"`
	Username     string `csv:"Username"`
	Tweet        string `csv:"Tweet"`
	CleanedTweet string `csv:"Cleaned_Tweet"`
	Sentiment    string `csv:"Sentiment"`
	Close        string `csv:"Close"` // empty on non-trading days
}
