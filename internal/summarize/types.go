package summarize

// Result is the output of the extractive summarizer.
type Result struct {
	// Summary is a selection of the most representative sentences, in
	// original order. Empty when the input had no content.
	Summary string

	// KeyPhrases are the highest-scoring content words, best first.
	KeyPhrases []string

	// Sentiment is a scalar in [-1, 1]; negative values lean negative.
	Sentiment float64
}
