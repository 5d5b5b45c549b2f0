package sentiment

import (
	"github.com/jonreiter/govader"
)

// Label is the categorical sentiment of a text
type Label string

const (
	LabelPositive Label = "Positive"
	LabelNegative Label = "Negative"
	LabelNeutral  Label = "Neutral"
)

// String returns the string representation of the label
func (l Label) String() string {
	return string(l)
}

// Classification thresholds on the compound score
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// Analyzer scores text polarity with the VADER lexicon. The lexicon is loaded
// once at construction; scoring is pure and deterministic afterwards.
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

// NewAnalyzer creates an analyzer with the bundled VADER lexicon
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		vader: govader.NewSentimentIntensityAnalyzer(),
	}
}

// Score returns the compound polarity of text in [-1, 1]. Empty or
// non-text-like input scores neutral (0).
func (a *Analyzer) Score(text string) float64 {
	return a.vader.PolarityScores(text).Compound
}

// Classify maps the compound score to a label: >= 0.05 Positive,
// <= -0.05 Negative, Neutral between.
func (a *Analyzer) Classify(text string) Label {
	return labelFor(a.Score(text))
}

func labelFor(score float64) Label {
	switch {
	case score >= positiveThreshold:
		return LabelPositive
	case score <= negativeThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}
