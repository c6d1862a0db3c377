package cmd

import (
	"context"
	"fmt"

	recordsadapter "github.com/bnema/fireteam-cli/internal/adapters/render/records"
	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/spf13/cobra"
)

type rosterMember struct {
	MembershipID string `json:"membership_id"`
	Platform     string `json:"platform"`
	DisplayName  string `json:"display_name"`
	CharacterID  string `json:"character_id"`
	ClassType    int    `json:"class_type"`
	Light        int    `json:"light"`
	ActivityHash uint32 `json:"activity_hash,omitempty"`
	Activity     string `json:"activity,omitempty"`
}

func newRosterCmd(app *app, root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Show your current fireteam",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := app.withLogger(cmd.Context())
			eng, err := app.engine(ctx, root.sessionID(), domain.CompletionAverage)
			if err != nil {
				return err
			}

			var roster domain.Roster
			activities := map[uint32]string{}
			err = runFetchSpinner(ctx, cmd.ErrOrStderr(), "Resolving fireteam...", func(ctx context.Context) error {
				self, err := eng.roster.SelfSnapshot(ctx, eng.session.Identity)
				if err != nil {
					return err
				}
				roster = eng.roster.Build(ctx, self, self.Profile.PartyMemberIDs())

				for _, member := range roster {
					hash, ok := member.CurrentActivity()
					if !ok {
						continue
					}
					if name, ok := eng.reference.ActivityName(ctx, app.cfg.View.Language, hash); ok {
						activities[hash] = name
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rosterMembers(roster, activities))
			}

			rendered, err := recordsadapter.RenderRoster(roster, activities)
			if err != nil {
				return fmt.Errorf("render roster: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func rosterMembers(roster domain.Roster, activities map[uint32]string) []rosterMember {
	members := make([]rosterMember, 0, len(roster))
	for _, member := range roster {
		entry := rosterMember{
			MembershipID: member.Identity.MembershipID,
			Platform:     member.Identity.Platform.String(),
			DisplayName:  member.DisplayName,
			CharacterID:  member.Character.ID,
			ClassType:    member.Character.ClassType,
			Light:        member.Character.Light,
		}
		if hash, ok := member.CurrentActivity(); ok {
			entry.ActivityHash = hash
			entry.Activity = activities[hash]
		}
		members = append(members, entry)
	}
	return members
}

func newFriendsCmd(app *app, root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "friends",
		Short: "List Bungie.net friends, online first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := app.withLogger(cmd.Context())
			eng, err := app.engine(ctx, root.sessionID(), domain.CompletionAverage)
			if err != nil {
				return err
			}

			var friends []domain.Friend
			err = runFetchSpinner(ctx, cmd.ErrOrStderr(), "Loading friends...", func(ctx context.Context) error {
				result, err := eng.client.GetFriends(ctx)
				friends = result
				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), friends)
			}

			rendered, err := recordsadapter.RenderFriends(friends)
			if err != nil {
				return fmt.Errorf("render friends: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
