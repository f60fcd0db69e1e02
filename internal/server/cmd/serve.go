package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "serve",
		Short:              "Migrate the database and serve HTTP and gRPC (default)",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE:               runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, app application) error {
		return app.Run(ctx)
	})
}
