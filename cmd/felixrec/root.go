package main

import (
	"felixrec/internal/structures"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &structures.CliFlags{}

	rootCmd := &cobra.Command{
		Use:           "felixrec",
		Short:         "Felix Radio recorder daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "config.yaml", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&flags.DebugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newRunCommand(flags))
	rootCmd.AddCommand(newJournalCommand(flags))
	rootCmd.AddCommand(newConfigCommand(flags))

	return rootCmd
}
