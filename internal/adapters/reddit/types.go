package reddit

import "encoding/json"

// Wire types for the Reddit JSON API

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string          `json:"kind"` // t1 comment, t3 post, more
	Data json.RawMessage `json:"data"`
}

type postData struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Author     string  `json:"author"`
	Ups        int     `json:"ups"`
	Downs      int     `json:"downs"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}

type commentData struct {
	ID         string  `json:"id"`
	Body       string  `json:"body"`
	Author     string  `json:"author"`
	Ups        int     `json:"ups"`
	Downs      int     `json:"downs"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
	// Empty string when the comment has no replies, a nested listing
	// object otherwise
	Replies json.RawMessage `json:"replies"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
