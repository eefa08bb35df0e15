package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Extract text for stored attachments that have none yet",
		Long: `Find attachments whose text extraction has not happened, typically
because an OCR key was missing or a service was down, re-download the
source messages and run extraction and analysis for them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, "")
			if err != nil {
				return err
			}
			defer app.shutdown(context.WithoutCancel(ctx))

			summary, err := app.pipeline.ProcessPendingAttachments(ctx, limit)
			if err != nil {
				return err
			}

			cmd.Printf("Attachments extracted: %d\n", summary.AttachmentsExtracted)
			cmd.Printf("Failures:              %d\n", summary.Failures)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of attachments to process")
	return cmd
}
