package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	recordsadapter "github.com/bnema/fireteam-cli/internal/adapters/render/records"
	"github.com/bnema/fireteam-cli/internal/application"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app, root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show stored sessions and credential state",
		Long:  "Lists every stored session, or only the one named by --session when the flag is set.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := app.withLogger(cmd.Context())

			var statuses []application.Status
			if cmd.Flags().Changed("session") {
				status, err := app.sessions.GetStatus(ctx, root.sessionID())
				if err != nil {
					return err
				}
				statuses = []application.Status{status}
			} else {
				all, err := app.sessions.GetStatusAll(ctx)
				if err != nil {
					return err
				}
				statuses = all
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), statuses)
			}

			rendered, err := recordsadapter.RenderStatus(statuses, app.now())
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
