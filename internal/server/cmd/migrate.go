package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "migrate",
		Short:              "Apply schema and catalog migrations and seed the identity accounts",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app application) error {
				if err := app.Migrate(ctx); err != nil {
					return err
				}
				cmd.Println("Database is up to date.")
				return nil
			})
		},
	}
}
