package main

import (
	"felixrec/internal/di"
	"felixrec/internal/structures"

	"github.com/spf13/cobra"
)

func newRunCommand(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the recorder until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := di.InitApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Run(cmd.Context())
		},
	}
}
