package social

import "context"

// PostSource fetches posts and comments from a social platform
type PostSource interface {
	// SearchPosts returns up to limit posts from the source matching the
	// query, ranked by top relevance
	SearchPosts(ctx context.Context, subreddit, query string, limit int) ([]Post, error)

	// PostComments returns the post's comments with all reply trees
	// expanded, sorted descending by engagement, filtered to at least
	// minScore combined votes and truncated to limit
	PostComments(ctx context.Context, postID string, limit, minScore int) ([]Comment, error)
}

// TweetSource fetches tweets matching a search query
type TweetSource interface {
	// SearchTweets returns up to limit tweets matching the query
	SearchTweets(ctx context.Context, query string, limit int) ([]Tweet, error)
}
