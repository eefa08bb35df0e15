package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/wassersoft/mailtriage/internal/logging"
)

const (
	// DefaultOpenRouterBaseURL targets the OpenRouter-compatible API.
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// DefaultModel balances quality against per-email cost.
	DefaultModel = "meta-llama/llama-3-8b-instruct"

	llmAttempts   = 3
	llmRetryDelay = 2 * time.Second
)

// analysisSystemPrompt is the structured output contract. The classifier
// parses these sections back out of the completion.
const analysisSystemPrompt = `You are an email analysis assistant. Analyze the email and respond in EXACTLY this format:

### SUMMARY
A concise summary of the email in 2-3 sentences.

### INSIGHTS
Key insights, one per line.

### ACTION_TYPE
Exactly one of: SCHEDULE_MEETING, SEND_REPLY, SET_REMINDER, FORWARD_TO_SLACK, NO_ACTION

### ACTION_DATA
Key: value lines with the details the action needs (date, time, participants, title, priority). Write "none" if not applicable.

### THREAD_CONTEXT
One sentence describing where this email sits in its conversation.

### SEARCH_REQUIRED
A web search query if answering requires external information, otherwise "none".`

// EmailContent is the input to an LLM analysis call.
type EmailContent struct {
	Sender         string
	Subject        string
	Body           string
	AttachmentText string
}

// LLMClient produces structured email analyses through a chat completion API.
type LLMClient struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// LLMOption configures an LLMClient.
type LLMOption func(*llmSettings)

type llmSettings struct {
	baseURL string
	model   string
	logger  *slog.Logger
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) LLMOption {
	return func(s *llmSettings) { s.baseURL = url }
}

// WithModel overrides the completion model.
func WithModel(model string) LLMOption {
	return func(s *llmSettings) { s.model = model }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LLMOption {
	return func(s *llmSettings) { s.logger = logger }
}

// NewLLMClient creates a client for the OpenRouter-compatible API.
func NewLLMClient(apiKey string, opts ...LLMOption) *LLMClient {
	settings := llmSettings{
		baseURL: DefaultOpenRouterBaseURL,
		model:   DefaultModel,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&settings)
	}
	return &LLMClient{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(settings.baseURL),
		),
		model:  settings.model,
		logger: settings.logger.With(logging.Service("openrouter")),
	}
}

// Analyze sends the email through the structured analysis prompt and returns
// the raw sectioned completion text. Transient failures are retried a fixed
// number of times.
func (c *LLMClient) Analyze(ctx context.Context, content EmailContent) (string, error) {
	prompt := buildAnalysisPrompt(content)

	var lastErr error
	for attempt := 1; attempt <= llmAttempts; attempt++ {
		text, err := c.complete(ctx, analysisSystemPrompt, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		c.logger.Warn("llm analysis attempt failed",
			slog.Int("attempt", attempt),
			logging.Err(err))
		if attempt < llmAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(llmRetryDelay):
			}
		}
	}
	return "", fmt.Errorf("llm analysis failed after %d attempts: %w", llmAttempts, lastErr)
}

// Complete sends a free-form prompt, used for reply refinement and search
// answer synthesis.
func (c *LLMClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, "", prompt)
}

func (c *LLMClient) complete(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessageParamUnion{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		})
	}
	messages = append(messages, openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfString: openai.String(prompt),
			},
		},
	})

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func buildAnalysisPrompt(content EmailContent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\nSubject: %s\n\n%s\n", content.Sender, content.Subject, content.Body)
	if content.AttachmentText != "" {
		fmt.Fprintf(&sb, "\n--- Attachment content ---\n%s\n", content.AttachmentText)
	}
	return sb.String()
}
