package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"daylog"
)

const (
	flagConfig = "config"
	flagLevel  = "level"
)

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "daylogctl",
		Short:         "Inspect and maintain daylog log directories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, flagConfig, "", "config file path")

	load := func() (daylog.Options, error) {
		opts, err := daylog.LoadOptions(cfgPath)
		if err != nil {
			return opts, err
		}
		opts.StartMessage = false
		return opts, nil
	}

	root.AddCommand(newPurgeCmd(load), newWhichCmd(load), newEmitCmd(load))
	return root
}

type loadFunc func() (daylog.Options, error)

func newPurgeCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete the log directory and every file in it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := load()
			if err != nil {
				return err
			}
			// Nothing needs to be created just to be removed.
			opts.FileLogging = false
			l, err := daylog.New(opts)
			if err != nil {
				return err
			}
			l.DeleteLogs()
			fmt.Fprintf(cmd.OutOrStdout(), "purged %s\n", l.Dir())
			return nil
		},
	}
}

func newWhichCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "which",
		Short: "Print today's log file, creating it if needed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := load()
			if err != nil {
				return err
			}
			opts.FileLogging = true
			opts.ConsoleLogging = false
			l, err := daylog.New(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), l.CurrentFile())
			return nil
		},
	}
}

func newEmitCmd(load loadFunc) *cobra.Command {
	var level string
	cmd := &cobra.Command{
		Use:   "emit [flags] message...",
		Short: "Write one message record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := daylog.ParseLevel(level)
			if err != nil {
				return err
			}
			opts, err := load()
			if err != nil {
				return err
			}
			opts.Console = cmd.OutOrStdout()
			l, err := daylog.New(opts)
			if err != nil {
				return err
			}
			return l.LogMessage(strings.Join(args, " "), lvl)
		},
	}
	cmd.Flags().StringVar(&level, flagLevel, string(daylog.LevelInfo), "record level")
	return cmd
}
