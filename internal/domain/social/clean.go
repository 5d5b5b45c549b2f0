package social

import (
	"regexp"
	"sort"
)

var (
	urlPattern     = regexp.MustCompile(`http\S+|www\S+|https\S+`)
	mentionPattern = regexp.MustCompile(`@\w+|#`)
	symbolPattern  = regexp.MustCompile(`[^A-Za-z0-9 ]+`)
)

// CleanTweet strips URLs, @-mentions and non-alphanumeric characters from
// tweet text. Hashtag text is kept, only the '#' marker is removed. Lossy on
// punctuation-sensitive sentiment cues; kept as a documented simplification.
func CleanTweet(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	return symbolPattern.ReplaceAllString(text, "")
}

// SelectComments ranks comments descending by engagement, keeps those with at
// least minScore combined votes and truncates to limit. The input slice is
// not modified.
func SelectComments(comments []Comment, limit, minScore int) []Comment {
	if limit <= 0 {
		return nil
	}
	ranked := make([]Comment, len(comments))
	copy(ranked, comments)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Engagement() > ranked[j].Engagement()
	})

	selected := make([]Comment, 0, limit)
	for _, c := range ranked {
		if c.Engagement() < minScore {
			continue
		}
		selected = append(selected, c)
		if len(selected) == limit {
			break
		}
	}
	return selected
}
