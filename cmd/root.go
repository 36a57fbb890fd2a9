package cmd

import (
	"os"

	"github.com/hookrelay-io/hookrelay/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configurationFile string
	cfg               *config.Config
)

func initConfig(filename string) (*config.Config, error) {
	cfg := config.New()
	if err := config.Load(filename, cfg); err != nil {
		return nil, errors.Wrap(err, "could not load configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// loadConfig is the PreRunE for commands that need configuration.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = initConfig(configurationFile)
	return err
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "hookrelay",
		Short:        "",
		Long:         ``,
		SilenceUsage: true,
	}

	cmd.SetOut(os.Stdout)

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newMigrationsCmd())

	return cmd
}

func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
