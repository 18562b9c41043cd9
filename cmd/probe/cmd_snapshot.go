package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/room4-2/basslink/link"
)

// newSnapshotCmd creates the "probe snapshot" subcommand.
func newSnapshotCmd(opts *probeOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the engine's current patch as JSON",
		Long:  "Connects, waits for the patch the engine pushes on connect, and prints it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			l, err := link.Dial(ctx, opts.url, link.Options{Logger: opts.logger()})
			if err != nil {
				return err
			}
			defer l.Close()

			p, err := awaitSnapshot(ctx, l)
			if err != nil {
				return err
			}
			return printPatch(cmd.OutOrStdout(), p)
		},
	}
}
