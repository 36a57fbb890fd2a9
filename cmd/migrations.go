package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/hookrelay-io/hookrelay/db/migrator"
	"github.com/spf13/cobra"
)

func prompt(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

func newMigrationsResetCmd() *cobra.Command {
	var yes bool
	reset := &cobra.Command{
		Use:     "reset",
		Short:   "Reset the database",
		Long:    ``,
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !prompt("Are you sure? This operation is irreversible.") {
					return errors.New("canceled")
				}
			}
			m := migrator.New(cfg)
			fmt.Println("resetting database...")
			if err := m.Reset(); err != nil {
				return err
			}
			fmt.Println("database successfully reset")
			return nil
		},
	}
	reset.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "yes")
	return reset
}

func newMigrationsCmd() *cobra.Command {
	migration := &cobra.Command{
		Use:   "migrations",
		Short: "",
		Long:  ``,
	}

	migration.PersistentFlags().StringVarP(&configurationFile, "config", "", "", "The configuration filename")

	migration.AddCommand(&cobra.Command{
		Use:     "status",
		Short:   "Print the migration status",
		Long:    ``,
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := migrator.New(cfg)
			version, dirty, err := m.Status()
			if err != nil {
				return err
			}

			if dirty {
				fmt.Printf("%d (dirty)\n", version)
			} else {
				fmt.Printf("%d\n", version)
			}
			return nil
		},
	})

	migration.AddCommand(&cobra.Command{
		Use:     "up",
		Short:   "Run any new migrations",
		Long:    ``,
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := migrator.New(cfg)
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			fmt.Println("database is up-to-date")
			return nil
		},
	})

	migration.AddCommand(newMigrationsResetCmd())

	return migration
}
