package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"smolpaste/internal/config"
	"smolpaste/internal/format"
)

// cliState carries the persistent flags and the config they resolve to.
type cliState struct {
	configPath string
	logLevel   string
	output     string

	cfg       *config.Config
	formatter format.Formatter
}

func newRootCmd() *cobra.Command {
	state := &cliState{}

	cmd := &cobra.Command{
		Use:           "smolpaste",
		Short:         "Smolpaste is a minimal authenticated paste server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.init(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), state.cfg)
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().StringVar(&state.configPath, "config", "", "path to a TOML config file (default smolpaste.toml if present)")
	cmd.PersistentFlags().StringVar(&state.logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVarP(&state.output, "output", "o", "text", "output format: text, json, yaml")

	cmd.AddCommand(
		newServeCmd(state),
		newMigrateCmd(state),
		newTokenCmd(state),
		newReconcileCmd(state),
		newUploadCmd(state),
		newDeleteCmd(state),
		newConfigCmd(state),
	)

	return cmd
}

func (s *cliState) init(stderr io.Writer) error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	s.cfg = cfg

	warning, err := configureLoggerForCLI(s.logLevel, cfg.LogLevel)
	if err != nil {
		return err
	}
	if warning != "" {
		fmt.Fprintln(stderr, warning)
	}

	formatter, _, err := format.ForName(s.output)
	if err != nil {
		return err
	}
	s.formatter = formatter
	return nil
}
