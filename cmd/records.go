package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/fireteam-cli/internal/adapters/httpapi"
	recordsadapter "github.com/bnema/fireteam-cli/internal/adapters/render/records"
	"github.com/bnema/fireteam-cli/internal/application"
	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/spf13/cobra"
)

// viewFlags are the ranking options shared by records, watch and groups.
type viewFlags struct {
	group         string
	search        string
	hideCompleted bool
	mode          string
	sort          string
	pin           uint32
}

func (f *viewFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.group, "group", string(domain.GroupAll), "Group ID (see `ft groups`), ALL or __NEARLY_DONE__")
	cmd.Flags().StringVar(&f.search, "search", "", "Case-insensitive substring of the record name")
	cmd.Flags().BoolVar(&f.hideCompleted, "hide-completed", false, "Hide records the fireteam has completed")
	cmd.Flags().StringVar(&f.mode, "mode", string(domain.CompletionAverage), "Completion mode: avg, worst or best")
	cmd.Flags().StringVar(&f.sort, "sort", string(application.SortByCompletion), "Sort order: completion or time")
	cmd.Flags().Uint32Var(&f.pin, "pin", 0, "Record hash to keep at the top")
}

func (f *viewFlags) options() (application.ViewOptions, error) {
	mode, err := domain.ParseCompletionMode(f.mode)
	if err != nil {
		return application.ViewOptions{}, err
	}
	sortMode, err := application.ParseSortMode(f.sort)
	if err != nil {
		return application.ViewOptions{}, err
	}

	return application.ViewOptions{
		Group:         domain.GroupID(f.group),
		Search:        f.search,
		HideCompleted: f.hideCompleted,
		Sort:          sortMode,
		Mode:          mode,
		Pin:           f.pin,
	}, nil
}

func newRecordsCmd(app *app, root *rootOptions) *cobra.Command {
	var flags viewFlags
	var more int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Rank triumphs by fireteam completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			if more < 0 {
				return fmt.Errorf("--more cannot be negative")
			}

			ctx := app.withLogger(cmd.Context())
			snapshot, err := loadSnapshot(ctx, cmd, app, root.sessionID(), opts.Mode)
			if err != nil {
				return err
			}

			view := application.NewViewState(app.cfg.View.PageSize)
			view.Apply(opts)
			for i := 0; i < more; i++ {
				view.LoadMore()
			}

			page, err := view.Page(snapshot.Catalog, snapshot.Scores)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), httpapi.NewRecordsResponse(page, *snapshot, opts))
			}

			rendered, err := recordsadapter.RenderPage(page, snapshot.Catalog, recordsadapter.PageOptions{
				Mode: opts.Mode,
				Sort: opts.Sort,
				Pin:  opts.Pin,
			})
			if err != nil {
				return fmt.Errorf("render records: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	flags.bind(cmd)
	cmd.Flags().IntVar(&more, "more", 0, "Number of extra pages to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newGroupsCmd(app *app, root *rootOptions) *cobra.Command {
	var modeRaw string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List triumph groups by mean fireteam completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := domain.ParseCompletionMode(modeRaw)
			if err != nil {
				return err
			}

			ctx := app.withLogger(cmd.Context())
			snapshot, err := loadSnapshot(ctx, cmd, app, root.sessionID(), mode)
			if err != nil {
				return err
			}

			summaries := application.GroupSummaries(snapshot.Catalog, snapshot.Scores)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), httpapi.NewGroupsResponse(summaries))
			}

			rendered, err := recordsadapter.RenderGroups(summaries)
			if err != nil {
				return fmt.Errorf("render groups: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&modeRaw, "mode", string(domain.CompletionAverage), "Completion mode: avg, worst or best")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

// loadSnapshot runs one aggregation pass behind a spinner.
func loadSnapshot(ctx context.Context, cmd *cobra.Command, app *app, id domain.SessionID, mode domain.CompletionMode) (*domain.Snapshot, error) {
	eng, err := app.engine(ctx, id, mode)
	if err != nil {
		return nil, err
	}

	var snapshot *domain.Snapshot
	err = runFetchSpinner(ctx, cmd.ErrOrStderr(), "Loading fireteam progress...", func(ctx context.Context) error {
		result, err := eng.scheduler.RunOnce(ctx)
		snapshot = result
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
