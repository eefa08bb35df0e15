package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/wassersoft/mailtriage/internal/calendar"
	"github.com/wassersoft/mailtriage/internal/extract"
	"github.com/wassersoft/mailtriage/internal/gmail"
	"github.com/wassersoft/mailtriage/internal/instrumentation"
	"github.com/wassersoft/mailtriage/internal/logging"
	"github.com/wassersoft/mailtriage/internal/pipeline"
	"github.com/wassersoft/mailtriage/internal/reply"
	"github.com/wassersoft/mailtriage/internal/server"
	"github.com/wassersoft/mailtriage/internal/slack"
	"github.com/wassersoft/mailtriage/internal/store"
	"github.com/wassersoft/mailtriage/internal/summarize"
	"github.com/wassersoft/mailtriage/internal/websearch"
)

// app bundles everything a command needs, with a single shutdown path.
type app struct {
	pipeline *pipeline.Pipeline
	store    *store.Store
	provider *instrumentation.Provider
	metrics  *server.MetricsServer
	logger   *slog.Logger
}

// newApp wires clients, the store and the pipeline from the environment.
// Optional services stay nil when their credentials are absent; the
// pipeline degrades per service.
func newApp(ctx context.Context, metricsAddr string) (*app, error) {
	logger := slog.Default()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("initializing instrumentation: %w", err)
	}

	pool, err := store.NewPool(ctx, databaseURL, logger)
	if err != nil {
		provider.Shutdown(ctx)
		return nil, err
	}
	st := store.NewStore(pool, logger)
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		provider.Shutdown(ctx)
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	mailClient, err := gmail.NewClient(ctx)
	if err != nil {
		st.Close()
		provider.Shutdown(ctx)
		return nil, fmt.Errorf("creating mail client: %w", err)
	}

	cfg := pipeline.Config{
		Mail:        mailClient,
		Emails:      st.Emails,
		Attachments: st.Attachments,
		Analyses:    st.Analyses,
		Actions:     st.Actions,
		Replies:     st.Replies,
		Metrics:     provider.Metrics(),
		Auditor:     instrumentation.NewAuditor(logger, instrConfig.AuditLogging),
		Logger:      logger,
	}

	var ocr extract.OCRClient
	if key := os.Getenv("OCR_SPACE_API_KEY"); key != "" {
		ocr = extract.NewOCRSpaceClient(key)
	} else {
		logger.Warn("OCR_SPACE_API_KEY not set, image attachments will be skipped")
	}
	cfg.Extractor = extract.New(ocr)

	var llm *summarize.LLMClient
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		opts := []summarize.LLMOption{summarize.WithLogger(logger)}
		if model := os.Getenv("OPENROUTER_MODEL"); model != "" {
			opts = append(opts, summarize.WithModel(model))
		}
		llm = summarize.NewLLMClient(key, opts...)
		cfg.LLM = llm
		cfg.Searcher = websearch.NewClient(
			websearch.WithHTTPClient(&http.Client{Timeout: 15 * time.Second}))
	} else {
		logger.Warn("OPENROUTER_API_KEY not set, falling back to extractive summaries")
	}

	if calendar.HasToken() {
		calClient, err := calendar.NewClient(ctx)
		if err != nil {
			logger.Warn("calendar unavailable", logging.Err(err))
		} else {
			cfg.Scheduler = calClient
		}
	}

	if webhook := os.Getenv("SLACK_WEBHOOK_URL"); webhook != "" {
		cfg.Notifier = slack.NewNotifier(webhook, slack.WithLogger(logger))
	}

	replyOpts := []reply.GeneratorOption{reply.WithLogger(logger)}
	if llm != nil {
		replyOpts = append(replyOpts, reply.WithRefiner(llm))
	}
	cfg.Drafter = reply.NewGenerator(replyOpts...)

	a := &app{
		pipeline: pipeline.New(cfg),
		store:    st,
		provider: provider,
		logger:   logger,
	}

	if metricsAddr != "" && provider.Enabled() {
		ms, err := server.NewMetricsServer(metricsAddr, provider, logger)
		if err != nil {
			logger.Warn("metrics server not started", logging.Err(err))
		} else {
			a.metrics = ms
			go func() {
				if err := ms.Start(); err != nil && err != http.ErrServerClosed {
					logger.Error("metrics server failed", logging.Err(err))
				}
			}()
		}
	}

	return a, nil
}

func (a *app) shutdown(ctx context.Context) {
	if a.metrics != nil {
		if err := a.metrics.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics server shutdown failed", logging.Err(err))
		}
	}
	a.store.Close()
	if err := a.provider.Shutdown(ctx); err != nil {
		a.logger.Warn("instrumentation shutdown failed", logging.Err(err))
	}
}
