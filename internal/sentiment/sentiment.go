// Package sentiment classifies free-text survey comments by lexical keyword
// scoring.
//
// Each positive keyword found in a comment adds one to its score and each
// negative keyword subtracts one. Matching is case-insensitive substring
// matching, so "good" also matches "goodness" and "old" matches "cold".
// Every keyword is checked; several may contribute to one score.
//
// Two entry points are provided:
//
//   - Classify returns the Positive, Negative or Neutral label.
//   - Analyze returns a Result with the score and the matched keywords.
//
// All functions are safe for concurrent use by multiple goroutines.
package sentiment

import (
	"fmt"
	"strings"

	"campuspulse/pkg/contracts/domain"
)

// Result holds the scoring output for one comment.
type Result struct {
	Sentiment domain.Sentiment `json:"sentiment"`
	Score     int              `json:"score"`
	Positive  []string         `json:"positive,omitempty"` // matched positive keywords
	Negative  []string         `json:"negative,omitempty"` // matched negative keywords
}

// String returns a debug representation of the result.
func (r Result) String() string {
	return fmt.Sprintf("%s(score=%d, pos=%d, neg=%d)",
		r.Sentiment, r.Score, len(r.Positive), len(r.Negative))
}

// Classify returns the sentiment label of comment.
func Classify(comment string) domain.Sentiment {
	return Analyze(comment).Sentiment
}

// Analyze scores comment against the keyword lists.
// The empty comment is Neutral without scoring.
func Analyze(comment string) Result {
	if comment == "" {
		return Result{Sentiment: domain.SentimentNeutral}
	}

	lower := strings.ToLower(comment)
	var res Result
	for _, kw := range positiveKeywords {
		if strings.Contains(lower, kw) {
			res.Score++
			res.Positive = append(res.Positive, kw)
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(lower, kw) {
			res.Score--
			res.Negative = append(res.Negative, kw)
		}
	}
	res.Sentiment = label(res.Score)
	return res
}

func label(score int) domain.Sentiment {
	switch {
	case score > 0:
		return domain.SentimentPositive
	case score < 0:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}
