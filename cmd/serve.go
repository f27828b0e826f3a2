package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jagriti-dev/casesearch/internal/app"
)

// newServeCmd returns the command that runs the API server until
// interrupted.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the case-search API server.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.NewApp(ctx)
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			defer application.Close()

			return application.Run(ctx)
		},
	}
}
