package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wassersoft/mailtriage/internal/google"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth [authorization-code]",
		Short: "Authorize access to your Google account",
		Long: `Run without arguments to print the Google consent URL. Open it in a
browser, approve the requested scopes, and run the command again with the
authorization code Google hands back. The resulting token is cached on
disk and refreshed automatically.

Requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET in the environment.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if google.HasToken() {
					cmd.Println("A Google token is already cached. Authorize again to replace it:")
				}
				cmd.Println("Open this URL in your browser and approve access:")
				cmd.Println()
				cmd.Println("  " + google.GetAuthURL())
				cmd.Println()
				cmd.Println("Then run: mailtriage auth <authorization-code>")
				return nil
			}

			if err := google.SaveToken(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("exchanging authorization code: %w", err)
			}
			cmd.Println("Token saved.")
			return nil
		},
	}
	return cmd
}
