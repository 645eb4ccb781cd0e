package sentiment

// positiveKeywords raise a comment's score by one each when present.
var positiveKeywords = []string{
	"excellent",
	"amazing",
	"great",
	"life saver",
	"top notch",
	"good",
	"satisfied",
	"clean",
	"modern",
}

// negativeKeywords lower a comment's score by one each when present.
var negativeKeywords = []string{
	"slow",
	"wait times",
	"leaking",
	"noisy",
	"poor",
	"bad",
	"overpriced",
	"old",
	"rude",
}

// PositiveKeywords returns a copy of the positive keyword list.
func PositiveKeywords() []string {
	return append([]string(nil), positiveKeywords...)
}

// NegativeKeywords returns a copy of the negative keyword list.
func NegativeKeywords() []string {
	return append([]string(nil), negativeKeywords...)
}
