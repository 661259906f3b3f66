package main

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"smolpaste/internal/api"
)

type clientFlags struct {
	server string
	token  string
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.server, "server", "", "server URL (default base_url from config)")
	cmd.Flags().StringVar(&f.token, "token", "", "upload token (default SMOLPASTE_TOKEN)")
}

func (f *clientFlags) client(state *cliState) *api.Client {
	server := f.server
	if server == "" {
		server = state.cfg.BaseURL
	}
	return api.NewClient(server, f.token)
}

func newUploadCmd(state *cliState) *cobra.Command {
	var flags clientFlags
	var name string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file (use - for stdin) and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader
			uploadName := name
			if args[0] == "-" {
				src = cmd.InOrStdin()
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
				if uploadName == "" {
					uploadName = filepath.Base(args[0])
				}
			}

			url, err := flags.client(state).Upload(cmd.Context(), uploadName, src)
			if err != nil {
				return fmt.Errorf("upload: %w", err)
			}
			return state.render(cmd.OutOrStdout(), map[string]string{"url": url}, func(w io.Writer) error {
				return writePlain(w, "%s\n", url)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "filename sent to the server; only its extension is kept")
	return cmd
}

func newDeleteCmd(state *cliState) *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "delete <id|url>",
		Short: "Delete a paste by id or by its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := pasteIDFromArg(args[0])
			if err := flags.client(state).Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
			return state.render(cmd.OutOrStdout(), map[string]string{"deleted": id}, func(w io.Writer) error {
				return writePlain(w, "deleted %s\n", id)
			})
		},
	}

	flags.register(cmd)
	return cmd
}

// pasteIDFromArg accepts a bare id, a stored filename or a paste URL and
// returns the id part.
func pasteIDFromArg(arg string) string {
	arg = strings.TrimSpace(arg)
	if i := strings.IndexAny(arg, "?#"); i >= 0 {
		arg = arg[:i]
	}
	base := path.Base(arg)
	id, _, _ := strings.Cut(base, ".")
	return id
}
