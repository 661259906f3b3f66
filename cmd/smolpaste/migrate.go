package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"smolpaste/internal/store"
)

func newMigrateCmd(state *cliState) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run or inspect database schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if dryRun {
				db, err := store.OpenRaw(state.cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer db.Close()

				plan, err := store.MigrationPlan(ctx, db)
				if err != nil {
					return fmt.Errorf("inspect migrations: %w", err)
				}
				return state.render(out, plan, func(w io.Writer) error {
					return writeMigrationPlan(w, plan)
				})
			}

			// Opening the store applies pending migrations.
			st, err := openStore(ctx, state.cfg)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			defer st.Close()

			plan, err := store.MigrationPlan(ctx, st.DB())
			if err != nil {
				return err
			}
			return state.render(out, plan, func(w io.Writer) error {
				return writePlain(w, "Migrations applied. Schema version %d.\n", plan.CurrentVersion)
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show pending migrations without applying")
	return cmd
}

func writeMigrationPlan(w io.Writer, plan *store.MigrationStatus) error {
	if err := writePlain(w, "Current version: %d\nAvailable version: %d\n", plan.CurrentVersion, plan.AvailableVersion); err != nil {
		return err
	}
	if len(plan.Pending) == 0 {
		return writePlain(w, "No pending migrations.\n")
	}
	if err := writePlain(w, "Pending migrations: %d\n", len(plan.Pending)); err != nil {
		return err
	}
	for _, m := range plan.Pending {
		if err := writePlain(w, "  %d: %s\n", m.Version, m.Description); err != nil {
			return err
		}
	}
	return nil
}
