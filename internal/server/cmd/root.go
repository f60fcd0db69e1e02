// Package cmd implements the peliculas command line.
//
// Configuration flags (-a, -d, -s, -c, -env-file, ...) are read by the
// config package, so the commands below leave flag parsing to it.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cuxvas/peliculas/internal/server"
	"github.com/cuxvas/peliculas/internal/server/config"
)

var BuildVersion = "dev"

type application interface {
	Run(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

var (
	loadConfig = config.LoadConfig
	newApp     = func(ctx context.Context, c *config.Config) (application, error) {
		return server.NewApp(ctx, c)
	}
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:                "peliculas",
		Short:              "Movie catalog API server",
		Long:               "Serves the movie catalog over HTTP and gRPC with sliding JWT expiration.",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE:               runServe,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newVersionCmd())
	return root
}

// Execute runs the command selected by os.Args.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func withApp(cmd *cobra.Command, fn func(context.Context, application) error) (err error) {
	ctx := cmd.Context()

	app, err := newApp(ctx, loadConfig())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(ctx, app)
}
