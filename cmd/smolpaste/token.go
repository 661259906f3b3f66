package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"smolpaste/internal/models"
	"smolpaste/internal/store"
)

func newTokenCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage upload tokens",
	}

	cmd.AddCommand(
		newTokenAddCmd(state),
		newTokenListCmd(state),
		newTokenRemoveCmd(state),
	)
	return cmd
}

func newTokenAddCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "add [value]",
		Short: "Add a token (a random UUID when no value is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := store.NewTokenValue()
			if len(args) == 1 {
				value = args[0]
			}

			st, err := openStore(cmd.Context(), state.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			token, err := st.InsertToken(cmd.Context(), value, time.Now())
			if err != nil {
				return fmt.Errorf("add token: %w", err)
			}
			return state.render(cmd.OutOrStdout(), token, func(w io.Writer) error {
				return writePlain(w, "%s\n", token.Value)
			})
		},
	}
}

func newTokenListCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), state.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			tokens, err := st.ListTokens(cmd.Context())
			if err != nil {
				return fmt.Errorf("list tokens: %w", err)
			}
			if tokens == nil {
				tokens = []models.Token{}
			}
			return state.render(cmd.OutOrStdout(), tokens, func(w io.Writer) error {
				for _, token := range tokens {
					if err := writePlain(w, "%s\t%s\n", token.Value, formatUnix(token.CreatedAt)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newTokenRemoveCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <value>",
		Aliases: []string{"rm"},
		Short:   "Remove a token",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), state.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			removed, err := st.DeleteToken(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("remove token: %w", err)
			}
			if !removed {
				return fmt.Errorf("token not found")
			}
			return state.render(cmd.OutOrStdout(), map[string]bool{"removed": true}, func(w io.Writer) error {
				return writePlain(w, "removed\n")
			})
		},
	}
}
