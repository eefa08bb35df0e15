package pipeline

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wassersoft/mailtriage/internal/calendar"
	"github.com/wassersoft/mailtriage/internal/gmail"
	"github.com/wassersoft/mailtriage/internal/slack"
	"github.com/wassersoft/mailtriage/internal/store"
	"github.com/wassersoft/mailtriage/internal/summarize"
	"github.com/wassersoft/mailtriage/internal/websearch"
)

const meetingAnalysis = `### SUMMARY
Anna proposes a budget review meeting next Tuesday.

### INSIGHTS
- The Q3 budget needs sign-off before Friday.

### ACTION_TYPE
SCHEDULE_MEETING

### ACTION_DATA
date: 2026-09-08
time: 14:00
title: Budget review
participants: anna@example.com

### THREAD_CONTEXT
First message in a new thread.

### SEARCH_REQUIRED
none`

type fakeMailer struct {
	emails     []*gmail.Email
	fetchErr   error
	sendErr    error
	sent       []gmail.ReplyInput
	markedRead []string
}

func (m *fakeMailer) FetchEmails(_ context.Context, _ gmail.FetchMode, batchSize int) ([]*gmail.Email, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if batchSize <= 0 || batchSize > len(m.emails) {
		if batchSize <= 0 {
			return nil, nil
		}
		return m.emails, nil
	}
	return m.emails[:batchSize], nil
}

func (m *fakeMailer) GetEmail(_ context.Context, messageID string) (*gmail.Email, error) {
	for _, e := range m.emails {
		if e.MessageID == messageID {
			return e, nil
		}
	}
	return nil, errors.New("message not found")
}

func (m *fakeMailer) MarkAsRead(_ context.Context, messageID string) error {
	m.markedRead = append(m.markedRead, messageID)
	return nil
}

func (m *fakeMailer) SendReply(_ context.Context, in gmail.ReplyInput) (string, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.sent = append(m.sent, in)
	return "sent-1", nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (e *fakeExtractor) Extract(_ context.Context, _, _ string, _ []byte) (string, error) {
	return e.text, e.err
}

type fakeAnalyzer struct {
	analysis    string
	analyzeErr  error
	inputs      []summarize.EmailContent
	completions []string
}

func (a *fakeAnalyzer) Analyze(_ context.Context, content summarize.EmailContent) (string, error) {
	a.inputs = append(a.inputs, content)
	return a.analysis, a.analyzeErr
}

func (a *fakeAnalyzer) Complete(_ context.Context, prompt string) (string, error) {
	a.completions = append(a.completions, prompt)
	return "synthesized answer", nil
}

type fakeScheduler struct {
	events   []calendar.EventPayload
	failures int
}

func (s *fakeScheduler) ScheduleEvent(_ context.Context, p calendar.EventPayload, _ time.Time) (string, error) {
	if s.failures > 0 {
		s.failures--
		return "", errors.New("calendar unavailable")
	}
	s.events = append(s.events, p)
	return "event-1", nil
}

type fakeNotifier struct {
	notes []slack.Notification
}

func (n *fakeNotifier) Notify(_ context.Context, note slack.Notification) error {
	n.notes = append(n.notes, note)
	return nil
}

type fakeSearcher struct {
	results []websearch.Result
}

func (s *fakeSearcher) Search(_ context.Context, _ string) ([]websearch.Result, error) {
	return s.results, nil
}

type memoryStore struct {
	emails      map[uuid.UUID]*store.Email
	recipients  map[uuid.UUID][]store.Recipient
	attachments map[uuid.UUID]*store.Attachment
	texts       map[uuid.UUID]string
	attAnalyses map[uuid.UUID]*store.AttachmentAnalysis
	analyses    map[uuid.UUID]*store.Analysis
	actions     map[uuid.UUID]*store.Action
	replies     map[uuid.UUID]*store.Reply
	replyMeta   map[uuid.UUID]struct{ messageID, threadID string }
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		emails:      map[uuid.UUID]*store.Email{},
		recipients:  map[uuid.UUID][]store.Recipient{},
		attachments: map[uuid.UUID]*store.Attachment{},
		texts:       map[uuid.UUID]string{},
		attAnalyses: map[uuid.UUID]*store.AttachmentAnalysis{},
		analyses:    map[uuid.UUID]*store.Analysis{},
		actions:     map[uuid.UUID]*store.Action{},
		replies:     map[uuid.UUID]*store.Reply{},
		replyMeta:   map[uuid.UUID]struct{ messageID, threadID string }{},
	}
}

func (s *memoryStore) Upsert(_ context.Context, e *store.Email) (uuid.UUID, error) {
	for id, existing := range s.emails {
		if existing.MessageID == e.MessageID {
			copied := *e
			copied.ID = id
			copied.Processed = existing.Processed
			s.emails[id] = &copied
			return id, nil
		}
	}
	id := uuid.New()
	copied := *e
	copied.ID = id
	s.emails[id] = &copied
	return id, nil
}

func (s *memoryStore) ReplaceRecipients(_ context.Context, emailID uuid.UUID, recipients []store.Recipient) error {
	s.recipients[emailID] = recipients
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*store.Email, error) {
	e, ok := s.emails[id]
	if !ok {
		return nil, errors.New("email not found")
	}
	return e, nil
}

func (s *memoryStore) ListUnprocessed(_ context.Context, limit int) ([]store.Email, error) {
	var out []store.Email
	for _, e := range s.emails {
		if !e.Processed {
			out = append(out, *e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memoryStore) ThreadBodies(_ context.Context, threadID string) ([]string, error) {
	var matched []*store.Email
	for _, e := range s.emails {
		if e.ThreadID == threadID {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ReceivedAt.Before(matched[j].ReceivedAt) })
	var bodies []string
	for _, e := range matched {
		bodies = append(bodies, e.Body)
	}
	return bodies, nil
}

func (s *memoryStore) MarkProcessed(_ context.Context, id uuid.UUID) error {
	if e, ok := s.emails[id]; ok {
		e.Processed = true
	}
	return nil
}

func (s *memoryStore) UpsertAttachment(_ context.Context, a *store.Attachment) (uuid.UUID, error) {
	for id, existing := range s.attachments {
		if existing.EmailID == a.EmailID && existing.Filename == a.Filename {
			return id, nil
		}
	}
	id := uuid.New()
	copied := *a
	copied.ID = id
	s.attachments[id] = &copied
	return id, nil
}

func (s *memoryStore) SetExtractedText(_ context.Context, id uuid.UUID, text string) error {
	s.texts[id] = text
	return nil
}

func (s *memoryStore) ExtractedTexts(_ context.Context, emailID uuid.UUID) ([]string, error) {
	type row struct{ filename, text string }
	var rows []row
	for id, att := range s.attachments {
		if att.EmailID == emailID && s.texts[id] != "" {
			rows = append(rows, row{att.Filename, s.texts[id]})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].filename < rows[j].filename })
	var texts []string
	for _, r := range rows {
		texts = append(texts, r.text)
	}
	return texts, nil
}

func (s *memoryStore) ListPendingExtraction(_ context.Context, limit int) ([]store.PendingExtraction, error) {
	var out []store.PendingExtraction
	for id, att := range s.attachments {
		if _, done := s.texts[id]; done {
			continue
		}
		email := s.emails[att.EmailID]
		out = append(out, store.PendingExtraction{Attachment: *att, MessageID: email.MessageID})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memoryStore) UpsertAnalysis(_ context.Context, a *store.AttachmentAnalysis) error {
	s.attAnalyses[a.AttachmentID] = a
	return nil
}

func (s *memoryStore) UpsertEmailAnalysis(_ context.Context, a *store.Analysis) error {
	s.analyses[a.EmailID] = a
	return nil
}

func (s *memoryStore) InsertAction(_ context.Context, a *store.Action) (uuid.UUID, error) {
	id := uuid.New()
	copied := *a
	copied.ID = id
	copied.Status = store.ActionStatusPending
	s.actions[id] = &copied
	return id, nil
}

func (s *memoryStore) ListPendingActions(_ context.Context, limit int) ([]store.Action, error) {
	var out []store.Action
	for _, a := range s.actions {
		if a.Status == store.ActionStatusPending {
			out = append(out, *a)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memoryStore) MarkCompleted(_ context.Context, id uuid.UUID) error {
	s.actions[id].Status = store.ActionStatusCompleted
	return nil
}

func (s *memoryStore) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	s.actions[id].Status = store.ActionStatusFailed
	s.actions[id].LastError = reason
	return nil
}

func (s *memoryStore) RecordActionError(_ context.Context, id uuid.UUID, reason string) error {
	s.actions[id].Status = store.ActionStatusPending
	s.actions[id].LastError = reason
	return nil
}

func (s *memoryStore) InsertReply(_ context.Context, r *store.Reply) (uuid.UUID, error) {
	id := uuid.New()
	copied := *r
	copied.ID = id
	copied.Status = "PENDING"
	s.replies[id] = &copied
	email := s.emails[r.EmailID]
	s.replyMeta[id] = struct{ messageID, threadID string }{email.MessageID, email.ThreadID}
	return id, nil
}

func (s *memoryStore) ListPendingReplies(_ context.Context, limit int) ([]store.PendingReply, error) {
	var out []store.PendingReply
	for id, r := range s.replies {
		if r.Status != "PENDING" {
			continue
		}
		meta := s.replyMeta[id]
		out = append(out, store.PendingReply{Reply: *r, MessageID: meta.messageID, ThreadID: meta.threadID})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memoryStore) MarkSent(_ context.Context, id uuid.UUID) error {
	r := s.replies[id]
	r.Status = "SENT"
	r.Attempts++
	return nil
}

func (s *memoryStore) RecordFailure(_ context.Context, id uuid.UUID, reason string) error {
	r := s.replies[id]
	r.Attempts++
	r.LastError = reason
	if r.Attempts >= 3 {
		r.Status = "FAILED"
	}
	return nil
}

// adapters split the single memoryStore across the narrow store interfaces.

type attachmentStoreAdapter struct{ *memoryStore }

func (a attachmentStoreAdapter) Upsert(ctx context.Context, att *store.Attachment) (uuid.UUID, error) {
	return a.UpsertAttachment(ctx, att)
}

type analysisStoreAdapter struct{ *memoryStore }

func (a analysisStoreAdapter) Upsert(ctx context.Context, an *store.Analysis) error {
	return a.UpsertEmailAnalysis(ctx, an)
}

type actionStoreAdapter struct{ *memoryStore }

func (a actionStoreAdapter) Insert(ctx context.Context, ac *store.Action) (uuid.UUID, error) {
	return a.InsertAction(ctx, ac)
}

func (a actionStoreAdapter) ListPending(ctx context.Context, limit int) ([]store.Action, error) {
	return a.ListPendingActions(ctx, limit)
}

func (a actionStoreAdapter) RecordError(ctx context.Context, id uuid.UUID, reason string) error {
	return a.RecordActionError(ctx, id, reason)
}

type replyStoreAdapter struct{ *memoryStore }

func (a replyStoreAdapter) Insert(ctx context.Context, r *store.Reply) (uuid.UUID, error) {
	return a.InsertReply(ctx, r)
}

func (a replyStoreAdapter) ListPending(ctx context.Context, limit int) ([]store.PendingReply, error) {
	return a.ListPendingReplies(ctx, limit)
}

type fixture struct {
	pipeline  *Pipeline
	mail      *fakeMailer
	extractor *fakeExtractor
	llm       *fakeAnalyzer
	scheduler *fakeScheduler
	notifier  *fakeNotifier
	store     *memoryStore
}

func newFixture(mail *fakeMailer) *fixture {
	mem := newMemoryStore()
	f := &fixture{
		mail:      mail,
		extractor: &fakeExtractor{},
		llm:       &fakeAnalyzer{analysis: meetingAnalysis},
		scheduler: &fakeScheduler{},
		notifier:  &fakeNotifier{},
		store:     mem,
	}
	f.pipeline = New(Config{
		Mail:        mail,
		Extractor:   f.extractor,
		LLM:         f.llm,
		Scheduler:   f.scheduler,
		Notifier:    f.notifier,
		Searcher:    &fakeSearcher{},
		Emails:      mem,
		Attachments: attachmentStoreAdapter{mem},
		Analyses:    analysisStoreAdapter{mem},
		Actions:     actionStoreAdapter{mem},
		Replies:     replyStoreAdapter{mem},
	})
	f.pipeline.retryDelay = 0
	return f
}

func testEmail() *gmail.Email {
	return &gmail.Email{
		MessageID: "msg-1",
		ThreadID:  "thread-1",
		Sender:    "Anna Schmidt <anna@example.com>",
		Subject:   "Budget review",
		Body:      "Can we meet next Tuesday to review the Q3 budget? It needs sign-off before Friday.",
		Timestamp: time.Now(),
		Attachments: []gmail.Attachment{
			{Filename: "budget.pdf", ContentType: "application/pdf", Size: 1024, Content: []byte("%PDF")},
		},
	}
}

func allOptions() Options {
	return Options{
		Mode:               gmail.FetchUnread,
		BatchSize:          10,
		Summarize:          true,
		IncludeAttachments: true,
		UseLLM:             true,
		ExecuteActions:     true,
	}
}

func TestRunBatchSizeZeroDoesNothing(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})

	summary, err := f.pipeline.Run(context.Background(), Options{Mode: gmail.FetchUnread, BatchSize: 0})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Fetched)
	assert.Empty(t, f.store.emails)
	assert.Empty(t, f.mail.markedRead)
}

func TestRunFetchFailureIsFatal(t *testing.T) {
	f := newFixture(&fakeMailer{fetchErr: errors.New("invalid_grant")})

	_, err := f.pipeline.Run(context.Background(), allOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching emails")
}

func TestRunFullFlow(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})
	f.extractor.text = "Budget table contents."

	summary, err := f.pipeline.Run(context.Background(), allOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Fetched)
	assert.Equal(t, 1, summary.Stored)
	assert.Equal(t, 1, summary.AttachmentsExtracted)
	assert.Equal(t, 1, summary.Summarized)
	assert.Equal(t, 1, summary.ActionsExecuted)
	assert.Equal(t, 1, summary.RepliesSent)
	assert.Equal(t, 0, summary.Failures)

	require.Len(t, f.scheduler.events, 1)
	assert.Equal(t, "Budget review", f.scheduler.events[0].Title)
	assert.Equal(t, "2026-09-08", f.scheduler.events[0].Date)
	assert.Equal(t, []string{"anna@example.com"}, f.scheduler.events[0].Participants)

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "Anna Schmidt <anna@example.com>", f.mail.sent[0].To)
	assert.Equal(t, "thread-1", f.mail.sent[0].ThreadID)

	assert.Equal(t, []string{"msg-1"}, f.mail.markedRead)

	require.Len(t, f.store.analyses, 1)
	for _, a := range f.store.analyses {
		assert.Equal(t, "SCHEDULE_MEETING", a.ActionType)
		assert.Contains(t, a.Summary, "budget review meeting")
	}
}

func TestRunLLMFailureFallsBackToExtractive(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})
	f.llm.analyzeErr = errors.New("rate limited")

	summary, err := f.pipeline.Run(context.Background(), allOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Summarized)
	assert.Equal(t, 0, summary.ActionsExecuted)
	assert.Empty(t, f.mail.sent)

	for _, a := range f.store.analyses {
		assert.Equal(t, "NO_ACTION", a.ActionType)
		assert.NotEmpty(t, a.Summary)
	}
}

func TestRunEmptyExtractedTextIsNotAFailure(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})
	f.extractor.text = ""

	summary, err := f.pipeline.Run(context.Background(), allOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.AttachmentsExtracted)
	for id := range f.store.attachments {
		text, ok := f.store.texts[id]
		assert.True(t, ok)
		assert.Empty(t, text)
	}
}

func TestRunSendReplyClassificationIsNotAutoSent(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})
	f.llm.analysis = `### SUMMARY
A question about pricing.

### ACTION_TYPE
SEND_REPLY

### ACTION_DATA
none`

	summary, err := f.pipeline.Run(context.Background(), allOptions())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.RepliesSent)
	assert.Empty(t, f.mail.sent)
	require.Len(t, f.store.replies, 1)
	for _, r := range f.store.replies {
		assert.Equal(t, "PENDING", r.Status)
		assert.NotEmpty(t, r.Body)
	}
}

func TestActionRetriesThenSucceeds(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})
	f.scheduler.failures = 2

	summary, err := f.pipeline.Run(context.Background(), allOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ActionsExecuted)
	require.Len(t, f.scheduler.events, 1)
	for _, a := range f.store.actions {
		assert.Equal(t, store.ActionStatusCompleted, a.Status)
	}
}

func TestActionExhaustsRetries(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})
	f.scheduler.failures = 5

	summary, err := f.pipeline.Run(context.Background(), allOptions())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.ActionsExecuted)
	assert.Equal(t, 1, summary.Failures)
	for _, a := range f.store.actions {
		assert.Equal(t, store.ActionStatusPending, a.Status)
		assert.Contains(t, a.LastError, "calendar unavailable")
	}
	// Exactly three attempts were made.
	assert.Equal(t, 2, f.scheduler.failures)
}

func TestDispatchPendingActions(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})
	f.scheduler.failures = 3

	_, err := f.pipeline.Run(context.Background(), allOptions())
	require.NoError(t, err)
	require.Empty(t, f.scheduler.events)

	// The exhausted action stayed pending, so the next pass picks it up.
	summary, err := f.pipeline.DispatchPendingActions(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ActionsExecuted)
	require.Len(t, f.scheduler.events, 1)
	for _, a := range f.store.actions {
		assert.Equal(t, store.ActionStatusCompleted, a.Status)
	}
}

func TestDispatchFailureIsTerminal(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})
	f.scheduler.failures = 10

	_, err := f.pipeline.Run(context.Background(), allOptions())
	require.NoError(t, err)

	summary, err := f.pipeline.DispatchPendingActions(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failures)
	for _, a := range f.store.actions {
		assert.Equal(t, store.ActionStatusFailed, a.Status)
	}

	again, err := f.pipeline.DispatchPendingActions(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, again.ActionsExecuted)
	assert.Equal(t, 0, again.Failures)
}

func TestForwardToSlackAction(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})
	f.llm.analysis = `### SUMMARY
Production checkout errors reported by a customer.

### ACTION_TYPE
FORWARD_TO_SLACK

### ACTION_DATA
priority: high`

	summary, err := f.pipeline.Run(context.Background(), allOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ActionsExecuted)
	require.Len(t, f.notifier.notes, 1)
	assert.Equal(t, slack.PriorityHigh, f.notifier.notes[0].Priority)
	assert.Contains(t, f.notifier.notes[0].Summary, "checkout errors")
	assert.Equal(t, 1, summary.RepliesSent)
}

func TestReplyFailureStaysPendingForRetry(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}, sendErr: errors.New("smtp unavailable")})

	summary, err := f.pipeline.Run(context.Background(), allOptions())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.RepliesSent)
	for _, r := range f.store.replies {
		assert.Equal(t, "PENDING", r.Status)
		assert.Equal(t, 1, r.Attempts)
	}

	f.mail.sendErr = nil
	retrySummary, err := f.pipeline.SendPendingReplies(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 1, retrySummary.RepliesSent)
	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "msg-1", f.mail.sent[0].InReplyTo)
	for _, r := range f.store.replies {
		assert.Equal(t, "SENT", r.Status)
	}
}

func TestSummarizeStored(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})

	// Fetch and store without summarizing.
	_, err := f.pipeline.Run(context.Background(), Options{Mode: gmail.FetchUnread, BatchSize: 10})
	require.NoError(t, err)
	assert.Empty(t, f.store.analyses)

	summary, err := f.pipeline.SummarizeStored(context.Background(), false, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Summarized)
	require.Len(t, f.store.analyses, 1)
	for _, e := range f.store.emails {
		assert.True(t, e.Processed)
	}
}

func TestSummarizeStoredUsesStoredAttachmentText(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})
	f.extractor.text = "Budget table contents."

	// Fetch and extract without summarizing.
	_, err := f.pipeline.Run(context.Background(), Options{
		Mode: gmail.FetchUnread, BatchSize: 10, IncludeAttachments: true,
	})
	require.NoError(t, err)
	require.Empty(t, f.llm.inputs)

	summary, err := f.pipeline.SummarizeStored(context.Background(), true, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Summarized)
	require.Len(t, f.llm.inputs, 1)
	assert.Contains(t, f.llm.inputs[0].AttachmentText, "Budget table contents.")
}

func TestSummarizeStoredIncludesThreadHistory(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})

	earlier := &store.Email{
		MessageID:  "msg-0",
		ThreadID:   "thread-1",
		Sender:     "Anna Schmidt <anna@example.com>",
		Subject:    "Budget review",
		Body:       "Kicking off the Q3 budget discussion.",
		ReceivedAt: time.Now().Add(-time.Hour),
		Processed:  true,
	}
	_, err := f.store.Upsert(context.Background(), earlier)
	require.NoError(t, err)

	_, err = f.pipeline.Run(context.Background(), Options{Mode: gmail.FetchUnread, BatchSize: 10})
	require.NoError(t, err)

	_, err = f.pipeline.SummarizeStored(context.Background(), true, 10)
	require.NoError(t, err)

	require.Len(t, f.llm.inputs, 1)
	assert.Contains(t, f.llm.inputs[0].Body, "Kicking off the Q3 budget discussion.")
	assert.Contains(t, f.llm.inputs[0].Body, "review the Q3 budget")
}

func TestRunAnalysisSeesThreadHistory(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})

	earlier := &store.Email{
		MessageID:  "msg-0",
		ThreadID:   "thread-1",
		Sender:     "Anna Schmidt <anna@example.com>",
		Subject:    "Budget review",
		Body:       "Kicking off the Q3 budget discussion.",
		ReceivedAt: time.Now().Add(-time.Hour),
		Processed:  true,
	}
	_, err := f.store.Upsert(context.Background(), earlier)
	require.NoError(t, err)

	_, err = f.pipeline.Run(context.Background(), Options{
		Mode: gmail.FetchUnread, BatchSize: 10, Summarize: true, UseLLM: true,
	})
	require.NoError(t, err)

	require.Len(t, f.llm.inputs, 1)
	assert.Contains(t, f.llm.inputs[0].Body, "Kicking off the Q3 budget discussion.")
	assert.Contains(t, f.llm.inputs[0].Body, "review the Q3 budget")
}

func TestProcessPendingAttachments(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})
	f.extractor.err = errors.New("ocr unavailable")

	_, err := f.pipeline.Run(context.Background(), allOptions())
	require.NoError(t, err)
	assert.Empty(t, f.store.texts)

	f.extractor.err = nil
	f.extractor.text = "Budget table contents."

	summary, err := f.pipeline.ProcessPendingAttachments(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.AttachmentsExtracted)
	require.Len(t, f.store.texts, 1)
	require.Len(t, f.store.attAnalyses, 1)
}

func TestRunRefetchDoesNotDuplicate(t *testing.T) {
	f := newFixture(&fakeMailer{emails: []*gmail.Email{testEmail()}})

	_, err := f.pipeline.Run(context.Background(), allOptions())
	require.NoError(t, err)
	_, err = f.pipeline.Run(context.Background(), allOptions())
	require.NoError(t, err)

	assert.Len(t, f.store.emails, 1)
	assert.Len(t, f.store.attachments, 1)
	assert.Len(t, f.store.analyses, 1)
}
