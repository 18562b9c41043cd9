package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/room4-2/basslink/link"
	"github.com/room4-2/basslink/messages"
)

// parseIntent builds a SetParameter from command-line words.
func parseIntent(section, parameter, value string) (messages.Intent, error) {
	s, err := messages.ParseSection(section)
	if err != nil {
		return nil, err
	}
	p, err := messages.ParseParameter(parameter)
	if err != nil {
		return nil, err
	}
	v, err := messages.ParseValue(p, value)
	if err != nil {
		return nil, err
	}
	in := messages.SetParameter{Section: s, Parameter: p, Value: v}
	if _, ok := messages.ControlFor(in); !ok {
		return nil, fmt.Errorf("%s.%s has no control mapping", s, p)
	}
	return in, nil
}

// newSendCmd creates the "probe send" subcommand.
func newSendCmd(opts *probeOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <section> <parameter> <value>",
		Short: "Send one control message and print the resulting patch",
		Long: "Sends a single parameter change, e.g. \"send filter cutoff 880\" or\n" +
			"\"send osc2 waveform saw\", then prints the patch the engine answers with.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseIntent(args[0], args[1], args[2])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			l, err := link.Dial(ctx, opts.url, link.Options{Logger: opts.logger()})
			if err != nil {
				return err
			}
			defer l.Close()

			// The engine greets every connection with its current patch.
			if _, err := awaitSnapshot(ctx, l); err != nil {
				return err
			}
			if err := sendWhenReady(ctx, l, messages.Encode(in)); err != nil {
				return fmt.Errorf("failed to send: %w", err)
			}
			p, err := awaitSnapshot(ctx, l)
			if err != nil {
				return fmt.Errorf("engine did not apply %s.%s: %w", args[0], args[1], err)
			}
			return printPatch(cmd.OutOrStdout(), p)
		},
	}
}
