package summarize

import (
	"sort"
	"strings"
	"unicode"
)

const (
	minSummarySentences = 3
	maxSummarySentences = 5
	maxKeyPhrases       = 5
)

// stopwords are excluded from frequency scoring.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "been": true, "but": true, "by": true, "can": true, "could": true,
	"did": true, "do": true, "does": true, "for": true, "from": true, "had": true,
	"has": true, "have": true, "he": true, "her": true, "his": true, "i": true,
	"if": true, "in": true, "is": true, "it": true, "its": true, "me": true,
	"my": true, "no": true, "not": true, "of": true, "on": true, "or": true,
	"our": true, "she": true, "so": true, "that": true, "the": true, "their": true,
	"them": true, "then": true, "there": true, "they": true, "this": true,
	"to": true, "was": true, "we": true, "were": true, "will": true, "with": true,
	"would": true, "you": true, "your": true,
}

var positiveWords = map[string]bool{
	"agree": true, "appreciate": true, "approved": true, "awesome": true,
	"confirmed": true, "congratulations": true, "excellent": true,
	"excited": true, "fantastic": true, "glad": true, "good": true,
	"great": true, "happy": true, "helpful": true, "love": true,
	"perfect": true, "pleased": true, "positive": true, "success": true,
	"thank": true, "thanks": true, "welcome": true, "wonderful": true,
}

var negativeWords = map[string]bool{
	"angry": true, "bad": true, "blocked": true, "broken": true,
	"cancel": true, "cancelled": true, "complaint": true, "concern": true,
	"critical": true, "delay": true, "delayed": true, "disappointed": true,
	"error": true, "fail": true, "failed": true, "failure": true,
	"issue": true, "missing": true, "problem": true, "refuse": true,
	"rejected": true, "sorry": true, "terrible": true, "unfortunately": true,
	"urgent": true, "worried": true, "wrong": true,
}

// Extractive produces a deterministic summary by frequency-scored sentence
// selection. Empty or whitespace-only input yields a zero Result with no
// error.
func Extractive(text string) Result {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return Result{}
	}

	freq := wordFrequencies(sentences)

	return Result{
		Summary:    selectSentences(sentences, freq),
		KeyPhrases: selectKeyPhrases(text, freq),
		Sentiment:  scoreSentiment(text),
	}
}

// splitSentences breaks text at sentence-final punctuation, dropping
// fragments with no letters.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	flush := func() {
		s := strings.TrimSpace(current.String())
		current.Reset()
		if strings.ContainsFunc(s, unicode.IsLetter) {
			sentences = append(sentences, s)
		}
	}
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			flush()
		}
	}
	flush()
	return sentences
}

// tokenize lowercases and splits on non-letter runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func wordFrequencies(sentences []string) map[string]int {
	freq := make(map[string]int)
	for _, sentence := range sentences {
		for _, word := range tokenize(sentence) {
			if stopwords[word] || len(word) < 3 {
				continue
			}
			freq[word]++
		}
	}
	return freq
}

// sentenceScore is the mean frequency of the sentence's content words, so
// long sentences do not win on bulk alone.
func sentenceScore(sentence string, freq map[string]int) float64 {
	total, count := 0, 0
	for _, word := range tokenize(sentence) {
		if stopwords[word] || len(word) < 3 {
			continue
		}
		total += freq[word]
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// selectSentences keeps the top-scoring sentences and emits them in their
// original order. Ties resolve to the earlier sentence.
func selectSentences(sentences []string, freq map[string]int) string {
	want := len(sentences) / 3
	if want < minSummarySentences {
		want = minSummarySentences
	}
	if want > maxSummarySentences {
		want = maxSummarySentences
	}
	if want > len(sentences) {
		want = len(sentences)
	}

	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		ranked[i] = scored{index: i, score: sentenceScore(s, freq)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].index < ranked[j].index
	})

	picked := make([]int, 0, want)
	for _, r := range ranked[:want] {
		picked = append(picked, r.index)
	}
	sort.Ints(picked)

	parts := make([]string, 0, want)
	for _, i := range picked {
		parts = append(parts, sentences[i])
	}
	return strings.Join(parts, " ")
}

// selectKeyPhrases returns up to five content words ordered by frequency,
// ties broken by first occurrence in the text.
func selectKeyPhrases(text string, freq map[string]int) []string {
	firstSeen := make(map[string]int)
	for i, word := range tokenize(text) {
		if _, ok := firstSeen[word]; !ok {
			firstSeen[word] = i
		}
	}

	words := make([]string, 0, len(freq))
	for word := range freq {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return firstSeen[words[i]] < firstSeen[words[j]]
	})

	if len(words) > maxKeyPhrases {
		words = words[:maxKeyPhrases]
	}
	return words
}

// scoreSentiment compares positive against negative lexicon hits.
func scoreSentiment(text string) float64 {
	pos, neg := 0, 0
	for _, word := range tokenize(text) {
		switch {
		case positiveWords[word]:
			pos++
		case negativeWords[word]:
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}
