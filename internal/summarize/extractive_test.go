package summarize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEmail = `The quarterly budget review is scheduled for next week.
Please review the attached budget spreadsheet before the meeting.
The budget includes updated projections for the engineering team.
Lunch will be provided during the meeting.
Let me know if the budget numbers look wrong.
Parking is available in the north lot.
The engineering team will present their budget requests first.`

func TestExtractiveEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t\n"} {
		result := Extractive(input)
		assert.Empty(t, result.Summary)
		assert.Empty(t, result.KeyPhrases)
		assert.Zero(t, result.Sentiment)
	}
}

func TestExtractiveIsDeterministic(t *testing.T) {
	first := Extractive(sampleEmail)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Extractive(sampleEmail))
	}
}

func TestExtractiveSentenceCount(t *testing.T) {
	result := Extractive(sampleEmail)

	require.NotEmpty(t, result.Summary)
	count := strings.Count(result.Summary, ".")
	assert.GreaterOrEqual(t, count, minSummarySentences)
	assert.LessOrEqual(t, count, maxSummarySentences)
}

func TestExtractivePrefersFrequentTopics(t *testing.T) {
	result := Extractive(sampleEmail)

	// "budget" dominates the text; the summary and phrases should carry it.
	assert.Contains(t, strings.ToLower(result.Summary), "budget")
	require.NotEmpty(t, result.KeyPhrases)
	assert.Equal(t, "budget", result.KeyPhrases[0])
}

func TestExtractiveShortInputKeepsAllSentences(t *testing.T) {
	result := Extractive("One sentence. Another sentence.")
	assert.Equal(t, "One sentence. Another sentence.", result.Summary)
}

func TestKeyPhrasesCappedAtFive(t *testing.T) {
	result := Extractive(sampleEmail)
	assert.LessOrEqual(t, len(result.KeyPhrases), maxKeyPhrases)
}

func TestScoreSentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		sign int
	}{
		{"positive", "Thanks, this is great news and I am happy with the results.", 1},
		{"negative", "Unfortunately the deployment failed and we have a critical problem.", -1},
		{"neutral", "The meeting is on Tuesday in room four.", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := scoreSentiment(tt.text)
			assert.GreaterOrEqual(t, score, -1.0)
			assert.LessOrEqual(t, score, 1.0)
			switch tt.sign {
			case 1:
				assert.Positive(t, score)
			case -1:
				assert.Negative(t, score)
			default:
				assert.Zero(t, score)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("First one. Second one! Third one? 123. Fourth")
	assert.Equal(t, []string{"First one.", "Second one!", "Third one?", "Fourth"}, sentences)
}

func TestBuildAnalysisPromptIncludesAttachmentText(t *testing.T) {
	prompt := buildAnalysisPrompt(EmailContent{
		Sender:         "alice@example.com",
		Subject:        "Contract",
		Body:           "Please review.",
		AttachmentText: "Section 1: terms",
	})

	assert.Contains(t, prompt, "From: alice@example.com")
	assert.Contains(t, prompt, "Subject: Contract")
	assert.Contains(t, prompt, "Section 1: terms")

	without := buildAnalysisPrompt(EmailContent{Sender: "a", Subject: "b", Body: "c"})
	assert.NotContains(t, without, "Attachment content")
}
