package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wassersoft/mailtriage/internal/classify"
	"github.com/wassersoft/mailtriage/internal/extract"
	"github.com/wassersoft/mailtriage/internal/gmail"
	"github.com/wassersoft/mailtriage/internal/instrumentation"
	"github.com/wassersoft/mailtriage/internal/logging"
	"github.com/wassersoft/mailtriage/internal/reply"
	"github.com/wassersoft/mailtriage/internal/store"
	"github.com/wassersoft/mailtriage/internal/summarize"
	"github.com/wassersoft/mailtriage/internal/websearch"
)

// Options control which phases a pipeline run executes. The default is
// fetch and store only.
type Options struct {
	Mode               gmail.FetchMode
	BatchSize          int
	Summarize          bool
	IncludeAttachments bool
	UseLLM             bool
	ExecuteActions     bool
}

// Summary counts what a run did.
type Summary struct {
	Fetched              int
	Stored               int
	AttachmentsExtracted int
	Summarized           int
	ActionsExecuted      int
	RepliesSent          int
	Failures             int
}

// Config wires a Pipeline. Mail, Extractor, Drafter and the stores are
// required; the rest are optional and disable the matching behavior when
// nil.
type Config struct {
	Mail      Mailer
	Extractor TextExtractor
	LLM       Analyzer
	Scheduler Scheduler
	Notifier  Notifier
	Searcher  Searcher
	Drafter   ReplyDrafter

	Emails      EmailStore
	Attachments AttachmentStore
	Analyses    AnalysisStore
	Actions     ActionStore
	Replies     ReplyStore

	Metrics *instrumentation.Metrics
	Auditor *instrumentation.Auditor
	Logger  *slog.Logger
}

// Pipeline runs the phases sequentially, one email at a time. Per-item
// failures are logged and isolated; only a fetch failure against the mail
// provider aborts a run.
type Pipeline struct {
	mail      Mailer
	extractor TextExtractor
	llm       Analyzer
	scheduler Scheduler
	notifier  Notifier
	searcher  Searcher
	drafter   ReplyDrafter

	emails      EmailStore
	attachments AttachmentStore
	analyses    AnalysisStore
	actions     ActionStore
	replies     ReplyStore

	metrics *instrumentation.Metrics
	auditor *instrumentation.Auditor
	logger  *slog.Logger

	now        func() time.Time
	retryDelay time.Duration
}

// New creates a Pipeline from the config.
func New(cfg Config) *Pipeline {
	p := &Pipeline{
		mail:        cfg.Mail,
		extractor:   cfg.Extractor,
		llm:         cfg.LLM,
		scheduler:   cfg.Scheduler,
		notifier:    cfg.Notifier,
		searcher:    cfg.Searcher,
		drafter:     cfg.Drafter,
		emails:      cfg.Emails,
		attachments: cfg.Attachments,
		analyses:    cfg.Analyses,
		actions:     cfg.Actions,
		replies:     cfg.Replies,
		metrics:     cfg.Metrics,
		auditor:     cfg.Auditor,
		logger:      cfg.Logger,
		now:         time.Now,
		retryDelay:  2 * time.Second,
	}
	if p.metrics == nil {
		p.metrics = &instrumentation.Metrics{}
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.drafter == nil {
		p.drafter = reply.NewGenerator(reply.WithLogger(p.logger))
	}
	return p
}

// Run executes the full pipeline once. A batch size of zero fetches nothing
// and ends cleanly with zero side effects.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Summary, error) {
	summary := &Summary{}
	logger := logging.WithOperation(p.logger, "process")

	fetchCtx, fetchSpan := instrumentation.StartPhaseSpan(ctx, instrumentation.PhaseFetch)
	fetchStart := p.now()
	var emails []*gmail.Email
	err := p.googleCall(fetchCtx, instrumentation.ServiceGmail, instrumentation.OperationList, func(ctx context.Context) error {
		var fetchErr error
		emails, fetchErr = p.mail.FetchEmails(ctx, opts.Mode, opts.BatchSize)
		return fetchErr
	})
	if err != nil {
		instrumentation.SetSpanError(fetchSpan, err)
		fetchSpan.End()
		p.metrics.RecordPhase(ctx, instrumentation.PhaseFetch, instrumentation.StatusError, p.now().Sub(fetchStart))
		return nil, fmt.Errorf("fetching emails: %w", err)
	}
	instrumentation.SetSpanSuccess(fetchSpan)
	fetchSpan.End()
	p.metrics.RecordPhase(ctx, instrumentation.PhaseFetch, instrumentation.StatusSuccess, p.now().Sub(fetchStart))

	summary.Fetched = len(emails)
	if len(emails) == 0 {
		logger.Info("no emails to process")
		return summary, nil
	}

	for _, email := range emails {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		p.processOne(ctx, logger, email, opts, summary)
	}

	logger.Info("run complete",
		slog.Int("fetched", summary.Fetched),
		slog.Int("stored", summary.Stored),
		slog.Int("failures", summary.Failures))
	return summary, nil
}

func (p *Pipeline) processOne(ctx context.Context, logger *slog.Logger, email *gmail.Email, opts Options, summary *Summary) {
	ctx, span := instrumentation.StartSpan(ctx, "pipeline.email",
		instrumentation.NewSpanAttributeBuilder().
			WithResource("message", email.MessageID).
			Build()...)
	defer span.End()

	start := p.now()
	logger = logger.With(logging.MessageID(email.MessageID))

	emailID, err := p.storeEmail(ctx, email)
	if err != nil {
		logger.Error("failed to store email, skipping", logging.Err(err))
		summary.Failures++
		instrumentation.SetSpanError(span, err)
		p.metrics.RecordEmailProcessed(ctx, instrumentation.StatusError, email.Sender)
		return
	}
	summary.Stored++

	var attachmentText string
	if opts.IncludeAttachments {
		attachmentText = p.processAttachments(ctx, logger, emailID, email.Attachments, summary)
	}

	cls := classify.Classification{Action: classify.Action{Type: classify.ActionNone}}
	if opts.Summarize {
		cls = p.analyzeEmail(ctx, logger, analyzeInput{
			EmailID:        emailID,
			Sender:         email.Sender,
			Subject:        email.Subject,
			Body:           p.threadBody(ctx, logger, email.ThreadID, email.Body),
			AttachmentText: attachmentText,
			UseLLM:         opts.UseLLM,
		}, summary)
	}

	if opts.ExecuteActions && cls.Action.Type != classify.ActionNone {
		facts := emailFacts{
			MessageID: email.MessageID,
			ThreadID:  email.ThreadID,
			Sender:    email.Sender,
			Subject:   email.Subject,
			Body:      email.Body,
		}
		p.handleAction(ctx, logger, emailID, facts, cls, summary)
		p.handleReply(ctx, logger, emailID, facts, cls, summary)
	}

	err = p.googleCall(ctx, instrumentation.ServiceGmail, instrumentation.OperationModify, func(ctx context.Context) error {
		return p.mail.MarkAsRead(ctx, email.MessageID)
	})
	if err != nil {
		logger.Warn("failed to mark email as read", logging.Err(err))
	}

	p.auditor.RecordEmailProcessed(ctx, instrumentation.ProcessingEvent{
		MessageID:  email.MessageID,
		Sender:     email.Sender,
		ActionType: string(cls.Action.Type),
		StartTime:  start,
		Duration:   p.now().Sub(start),
		Success:    true,
	})
	instrumentation.SetSpanSuccess(span)
	p.metrics.RecordEmailProcessed(ctx, instrumentation.StatusSuccess, email.Sender)
}

// storeEmail upserts the email row and its recipient set.
func (p *Pipeline) storeEmail(ctx context.Context, email *gmail.Email) (uuid.UUID, error) {
	start := p.now()
	emailID, err := p.emails.Upsert(ctx, &store.Email{
		MessageID:  email.MessageID,
		ThreadID:   email.ThreadID,
		Sender:     email.Sender,
		Subject:    email.Subject,
		Body:       email.Body,
		ReceivedAt: email.Timestamp,
	})
	if err != nil {
		p.metrics.RecordPhase(ctx, instrumentation.PhaseStore, instrumentation.StatusError, p.now().Sub(start))
		return uuid.Nil, err
	}

	if err := p.emails.ReplaceRecipients(ctx, emailID, recipientRows(emailID, email.Recipients)); err != nil {
		p.metrics.RecordPhase(ctx, instrumentation.PhaseStore, instrumentation.StatusError, p.now().Sub(start))
		return uuid.Nil, err
	}

	p.metrics.RecordPhase(ctx, instrumentation.PhaseStore, instrumentation.StatusSuccess, p.now().Sub(start))
	return emailID, nil
}

func recipientRows(emailID uuid.UUID, r gmail.Recipients) []store.Recipient {
	var rows []store.Recipient
	add := func(addresses []string, kind store.RecipientKind) {
		for _, address := range addresses {
			rows = append(rows, store.Recipient{EmailID: emailID, Address: address, Kind: kind})
		}
	}
	add(r.To, store.RecipientTo)
	add(r.Cc, store.RecipientCc)
	add(r.Bcc, store.RecipientBcc)
	return rows
}

// processAttachments stores, extracts and analyzes each attachment. Returns
// the concatenated extracted text for use in the email analysis.
func (p *Pipeline) processAttachments(ctx context.Context, logger *slog.Logger, emailID uuid.UUID, attachments []gmail.Attachment, summary *Summary) string {
	var combined string
	for _, att := range attachments {
		attID, err := p.attachments.Upsert(ctx, &store.Attachment{
			EmailID:     emailID,
			Filename:    att.Filename,
			ContentType: att.ContentType,
			Size:        att.Size,
		})
		if err != nil {
			logger.Warn("failed to store attachment, skipping",
				logging.Attachment(att.Filename), logging.Err(err))
			summary.Failures++
			continue
		}

		text, err := p.extractAndAnalyze(ctx, logger, attID, att)
		if err != nil {
			continue
		}
		summary.AttachmentsExtracted++
		if text != "" {
			combined += text + "\n"
		}
	}
	return combined
}

// extractAndAnalyze extracts text from one attachment, stores it and upserts
// the per-attachment analysis. Unsupported types and oversize content are
// skipped, not failed.
func (p *Pipeline) extractAndAnalyze(ctx context.Context, logger *slog.Logger, attID uuid.UUID, att gmail.Attachment) (string, error) {
	start := p.now()
	text, err := p.extractor.Extract(ctx, att.Filename, att.ContentType, att.Content)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) || errors.Is(err, extract.ErrSizeLimit) {
			logger.Warn("attachment skipped",
				logging.Attachment(att.Filename), logging.Err(err))
			p.metrics.RecordExtraction(ctx, att.ContentType, instrumentation.StatusSkipped)
		} else {
			logger.Error("attachment extraction failed",
				logging.Attachment(att.Filename), logging.Err(err))
			p.metrics.RecordExtraction(ctx, att.ContentType, instrumentation.StatusError)
		}
		p.metrics.RecordPhase(ctx, instrumentation.PhaseExtract, instrumentation.StatusError, p.now().Sub(start))
		return "", err
	}
	p.metrics.RecordExtraction(ctx, att.ContentType, instrumentation.StatusSuccess)
	p.metrics.RecordPhase(ctx, instrumentation.PhaseExtract, instrumentation.StatusSuccess, p.now().Sub(start))

	if err := p.attachments.SetExtractedText(ctx, attID, text); err != nil {
		logger.Error("failed to store extracted text",
			logging.Attachment(att.Filename), logging.Err(err))
		return "", err
	}

	result := summarize.Extractive(text)
	if err := p.attachments.UpsertAnalysis(ctx, &store.AttachmentAnalysis{
		AttachmentID: attID,
		Summary:      result.Summary,
		KeyPhrases:   result.KeyPhrases,
		Sentiment:    result.Sentiment,
	}); err != nil {
		logger.Error("failed to store attachment analysis",
			logging.Attachment(att.Filename), logging.Err(err))
		return "", err
	}

	return text, nil
}

// threadBody returns the concatenated bodies of all stored messages in the
// thread, oldest first. Falls back to the single body when the thread cannot
// be loaded.
func (p *Pipeline) threadBody(ctx context.Context, logger *slog.Logger, threadID, fallback string) string {
	if threadID == "" {
		return fallback
	}
	bodies, err := p.emails.ThreadBodies(ctx, threadID)
	if err != nil {
		logger.Warn("failed to load thread bodies", logging.Err(err))
		return fallback
	}
	if len(bodies) == 0 {
		return fallback
	}
	return strings.Join(bodies, "\n\n")
}

type analyzeInput struct {
	EmailID        uuid.UUID
	Sender         string
	Subject        string
	Body           string
	AttachmentText string
	UseLLM         bool
}

// analyzeEmail summarizes and classifies one email and upserts the result.
// The extractive path always runs so sentiment and key phrases are
// available; the LLM path layers summary, insights and the action on top.
func (p *Pipeline) analyzeEmail(ctx context.Context, logger *slog.Logger, in analyzeInput, summary *Summary) classify.Classification {
	start := p.now()
	cls := classify.Classification{Action: classify.Action{Type: classify.ActionNone}}

	extracted := summarize.Extractive(in.Body)
	analysis := &store.Analysis{
		EmailID:    in.EmailID,
		Summary:    extracted.Summary,
		KeyPhrases: extracted.KeyPhrases,
		Sentiment:  extracted.Sentiment,
		ActionType: string(classify.ActionNone),
	}

	if in.UseLLM && p.llm != nil {
		llmStart := p.now()
		raw, err := p.llm.Analyze(ctx, summarize.EmailContent{
			Sender:         in.Sender,
			Subject:        in.Subject,
			Body:           in.Body,
			AttachmentText: in.AttachmentText,
		})
		if err != nil {
			p.metrics.RecordLLMRequest(ctx, instrumentation.StatusError, p.now().Sub(llmStart))
			logger.Warn("llm analysis failed, falling back to extractive summary",
				logging.Err(err))
		} else {
			p.metrics.RecordLLMRequest(ctx, instrumentation.StatusSuccess, p.now().Sub(llmStart))
			cls = classify.Parse(raw)
			if cls.Summary != "" {
				analysis.Summary = cls.Summary
			}
			analysis.Insights = cls.Insights
			analysis.ActionType = string(cls.Action.Type)
			analysis.ThreadContext = cls.ThreadContext

			if answer := p.answerSearch(ctx, logger, cls.SearchQuery); answer != "" {
				analysis.Insights = append(analysis.Insights, "Research: "+answer)
			}
		}
	}

	if err := p.analyses.Upsert(ctx, analysis); err != nil {
		logger.Error("failed to store analysis", logging.Err(err))
		summary.Failures++
		p.metrics.RecordPhase(ctx, instrumentation.PhaseSummarize, instrumentation.StatusError, p.now().Sub(start))
		return cls
	}
	if err := p.emails.MarkProcessed(ctx, in.EmailID); err != nil {
		logger.Warn("failed to mark email processed", logging.Err(err))
	}

	summary.Summarized++
	p.metrics.RecordPhase(ctx, instrumentation.PhaseSummarize, instrumentation.StatusSuccess, p.now().Sub(start))
	return cls
}

// answerSearch runs the classifier's search query and synthesizes a short
// answer. Best effort; any failure yields an empty answer.
func (p *Pipeline) answerSearch(ctx context.Context, logger *slog.Logger, query string) string {
	if query == "" || p.searcher == nil || p.llm == nil {
		return ""
	}

	results, err := p.searcher.Search(ctx, query)
	if err != nil {
		logger.Warn("web search failed", logging.Err(err))
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	answer, err := p.llm.Complete(ctx, websearch.FormatForPrompt(query, results))
	if err != nil {
		logger.Warn("search answer synthesis failed", logging.Err(err))
		return ""
	}
	return answer
}
