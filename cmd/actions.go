package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newActionsCmd() *cobra.Command {
	var (
		limit       int
		sendReplies bool
	)

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Execute pending actions and retry unsent replies",
		Long: `Replay actions that are still pending, usually because a downstream
service was unavailable during an earlier run, and optionally retry stored
replies that have delivery attempts left.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := newApp(ctx, "")
			if err != nil {
				return err
			}
			defer app.shutdown(context.WithoutCancel(ctx))

			summary, err := app.pipeline.DispatchPendingActions(ctx, limit)
			if err != nil {
				return err
			}
			cmd.Printf("Actions executed: %d\n", summary.ActionsExecuted)

			if sendReplies {
				replySummary, err := app.pipeline.SendPendingReplies(ctx, limit)
				if err != nil {
					return err
				}
				cmd.Printf("Replies sent:     %d\n", replySummary.RepliesSent)
				summary.Failures += replySummary.Failures
			}

			cmd.Printf("Failures:         %d\n", summary.Failures)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of actions and replies to process")
	cmd.Flags().BoolVar(&sendReplies, "send-replies", true, "Also retry pending reply deliveries")
	return cmd
}
