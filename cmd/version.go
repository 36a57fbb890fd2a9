package cmd

import (
	"github.com/hookrelay-io/hookrelay/config"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Long:  ``,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("HookRelay %s\n", config.VERSION)
		},
	}
}
