package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hookrelay-io/hookrelay/app"
	"github.com/spf13/cobra"
)

func newStartCmd() *cobra.Command {
	start := &cobra.Command{
		Use:     "start",
		Short:   "Start server",
		Long:    ``,
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.NewApplication(cfg)
			if err != nil {
				return err
			}

			if err := application.Start(); err != nil {
				return err
			}

			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			<-ctx.Done()

			if err := application.Stop(); err != nil {
				os.Exit(1)
			}

			return nil
		},
	}

	start.PersistentFlags().StringVarP(&configurationFile, "config", "", "", "The configuration filename")

	return start
}
