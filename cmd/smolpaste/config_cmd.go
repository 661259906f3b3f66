package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"smolpaste/internal/config"
)

func newConfigCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get or set configuration",
	}

	cmd.AddCommand(newConfigGetCmd(state))
	cmd.AddCommand(newConfigSetCmd(state))
	return cmd
}

func newConfigGetCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a config key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !config.IsAllowedKey(key) {
				return fmt.Errorf("unknown key: %s (allowed: %v)", key, config.AllowedKeys())
			}
			value, err := state.cfg.Get(key)
			if err != nil {
				return err
			}
			return writePlain(cmd.OutOrStdout(), "%s\n", value)
		},
	}
}

func newConfigSetCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write a key to the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := config.ResolvePath(state.configPath)
			return config.SetKey(path, args[0], args[1])
		},
	}
}
