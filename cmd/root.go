package cmd

import (
	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

type rootOptions struct {
	session string
}

func (o *rootOptions) sessionID() domain.SessionID {
	if o.session == "" {
		return domain.DefaultSessionID
	}
	return domain.SessionID(o.session)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "ft",
		Short:         "Fireteam CLI (ft): compare Destiny 2 triumph progress across your fireteam",
		Long:          "ft signs in to Bungie.net, resolves your current fireteam, and ranks triumphs by how close the whole group is to completing them.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&opts.session, "session", string(domain.DefaultSessionID), "Session ID to use")

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app, opts),
		newLogoutCmd(app, opts),
		newStatusCmd(app, opts),
		newRosterCmd(app, opts),
		newRecordsCmd(app, opts),
		newGroupsCmd(app, opts),
		newFriendsCmd(app, opts),
		newWatchCmd(app, opts),
		newServeCmd(app, opts),
	)

	return rootCmd
}
