package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newSummarizeCmd() *cobra.Command {
	var (
		useLLM bool
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize stored emails that were fetched without analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, "")
			if err != nil {
				return err
			}
			defer app.shutdown(context.WithoutCancel(ctx))

			summary, err := app.pipeline.SummarizeStored(ctx, useLLM, limit)
			if err != nil {
				return err
			}

			cmd.Printf("Summarized: %d\n", summary.Summarized)
			cmd.Printf("Failures:   %d\n", summary.Failures)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useLLM, "llm", true, "Use the LLM for summaries and classification (requires OPENROUTER_API_KEY)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of emails to summarize")
	return cmd
}
