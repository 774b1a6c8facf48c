// Command herdctl runs maintenance tasks against the configured store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/app"
	"github.com/mamadbah2/herdsync/internal/config"
	"github.com/mamadbah2/herdsync/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(openApp).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// opener builds the core App from an env file path.
type opener func(ctx context.Context, envFile string) (*app.App, error)

func openApp(ctx context.Context, envFile string) (*app.App, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, *cfg, log.Named("herdctl"))
}

func newRootCmd(open opener) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "herdctl",
		Short:         "Maintenance tool for the herd production tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment")

	// withApp opens the App for the duration of fn and closes it afterwards.
	withApp := func(cmd *cobra.Command, fn func(*app.App) error) error {
		a, err := open(cmd.Context(), envFile)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(context.Background()); cerr != nil {
				zap.L().Warn("failed to close app", zap.Error(cerr))
			}
		}()

		a.Lock()
		defer a.Unlock()
		return fn(a)
	}

	root.AddCommand(
		newReconcileCmd(withApp),
		newStatsCmd(withApp),
		newImportHerdsCmd(withApp),
		newResetCmd(withApp),
	)
	return root
}
