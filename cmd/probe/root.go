package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/room4-2/basslink/config"
)

type probeOptions struct {
	url     string
	timeout time.Duration
	verbose bool
}

func (o *probeOptions) logger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	if o.verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return logrus.NewEntry(l)
}

// newRootCmd creates the root probe command with all subcommands attached.
func newRootCmd() *cobra.Command {
	opts := &probeOptions{}

	cmd := &cobra.Command{
		Use:           "probe",
		Short:         "Poke a synthesis engine over its control link",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.url != "" {
				return nil
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			opts.url = cfg.EngineURL
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.url, "url", "", "engine websocket URL (default: ENGINE_URL)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "give up after this long")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log link activity")

	cmd.AddCommand(
		newSendCmd(opts),
		newSnapshotCmd(opts),
	)

	return cmd
}
