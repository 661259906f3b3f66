package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"smolpaste/internal/blobstore"
	"smolpaste/internal/reconcile"
)

func newReconcileCmd(state *cliState) *cobra.Command {
	var apply bool
	var verify bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare paste rows with stored files",
		Long: "Reports files without a row, rows without a file, and size mismatches.\n" +
			"--verify also rehashes files; --apply removes orphaned files and rows whose file is gone.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := openStore(ctx, state.cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			dir, err := blobstore.NewLocalDir(state.cfg.StorageDir)
			if err != nil {
				return err
			}

			report, err := reconcile.Run(ctx, st, dir, reconcile.Options{Apply: apply, Verify: verify})
			if err != nil {
				return err
			}
			return state.render(cmd.OutOrStdout(), report, func(w io.Writer) error {
				return writeReconcileReport(w, report)
			})
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "remove orphaned files and rows whose file is missing")
	cmd.Flags().BoolVar(&verify, "verify", false, "rehash files and compare digests")
	return cmd
}

func writeReconcileReport(w io.Writer, report reconcile.Report) error {
	for _, issue := range report.Issues {
		fields := []string{string(issue.Kind), issue.Filename}
		if issue.Detail != "" {
			fields = append(fields, issue.Detail)
		}
		if issue.Repaired {
			fields = append(fields, "(repaired)")
		}
		if err := writePlain(w, "%s\n", strings.Join(fields, "  ")); err != nil {
			return err
		}
	}
	return writePlain(w, "%d rows, %d files, %d issues\n", report.Rows, report.Files, len(report.Issues))
}
