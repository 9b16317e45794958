package main

import (
	"felixrec/internal/providers"
	"felixrec/internal/structures"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

func newConfigCommand(flags *structures.CliFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigCheckCommand(flags))
	return configCmd
}

func newConfigCheckCommand(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load and validate the configuration, then print it with secrets omitted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := providers.LoadConfig(flags)
			if err != nil {
				return err
			}
			if err = providers.NewCnfValidator(conf).Validate(); err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}

			values := providers.Redacted(conf)
			rows := make([][]string, 0, len(values))
			for _, key := range slices.Sorted(maps.Keys(values)) {
				rows = append(rows, []string{key, fmt.Sprint(values[key])})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"KEY", "VALUE"}, rows))
			fmt.Fprintln(out, "Configuration OK")
			return nil
		},
	}
}
