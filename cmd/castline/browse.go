package main

import (
	"cmp"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/app"
	"github.com/ashureev/castline/internal/casting"
	"github.com/ashureev/castline/internal/discover"
	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/groups"
	"github.com/ashureev/castline/internal/notify"
	"github.com/ashureev/castline/internal/render"
)

func (c *cli) notificationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notes"},
		Short:   "Show applications to your casting calls",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			screen, err := c.open(cmd.Context(), app.RouteNotifications)
			if err != nil {
				return err
			}
			v := screen.(*notify.View)
			defer v.Close()
			st := v.State()
			if err := screenErr(st.Err); err != nil {
				return err
			}
			if !c.printer.YAML() && len(st.Items) == 0 {
				return c.printer.Line("No notifications yet.")
			}
			return c.printer.Notifications(st.Items)
		},
	}
}

func (c *cli) leaderboardCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank members by engagement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			route := app.RouteLeaderboard
			if role != "" {
				route += "?" + url.Values{"role": {role}}.Encode()
			}
			screen, err := c.open(cmd.Context(), route)
			if err != nil {
				return err
			}
			v := screen.(*discover.Leaderboard)
			defer v.Close()
			if err := screenErr(v.Err()); err != nil {
				return err
			}
			return c.printer.Leaderboard(v.Items())
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "only rank this role")
	return cmd
}

func (c *cli) searchCmd() *cobra.Command {
	var role, location string
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Find members by name, skill, role or location",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if len(args) > 0 {
				q.Set("q", strings.Join(args, " "))
			}
			if role != "" {
				q.Set("role", role)
			}
			if location != "" {
				q.Set("location", location)
			}
			screen, err := c.open(cmd.Context(), app.RouteSearch+"?"+q.Encode())
			if err != nil {
				return err
			}
			v := screen.(*discover.Search)
			defer v.Close()
			if err := screenErr(v.Err()); err != nil {
				return err
			}
			return c.printer.Users(v.Items())
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "filter by role")
	cmd.Flags().StringVar(&location, "location", "", "filter by location")
	return cmd
}

func (c *cli) groupsCmd() *cobra.Command {
	var create, description string
	var join bool
	cmd := &cobra.Command{
		Use:   "groups [group-id]",
		Short: "List groups, create one, or show and join a group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				screen, err := c.open(ctx, app.RouteGroups+"/"+args[0])
				if err != nil {
					return err
				}
				v := screen.(*groups.DetailView)
				defer v.Close()
				if join {
					if err := v.ToggleMembership(ctx); err != nil {
						return screenErr(cmp.Or(apiclient.UserMessage(err, ""), v.State().Notice, err.Error()))
					}
				}
				st := v.State()
				if err := screenErr(st.Err); err != nil {
					return err
				}
				if err := c.printer.Groups([]domain.Group{st.Group}); err != nil {
					return err
				}
				return c.printer.Posts(postRows(v.Cards()))
			}

			screen, err := c.open(ctx, app.RouteGroups)
			if err != nil {
				return err
			}
			v := screen.(*groups.ListView)
			defer v.Close()
			if create != "" {
				if _, err := v.Create(ctx, domain.GroupInput{Name: create, Description: description}); err != nil {
					return screenErr(cmp.Or(v.Err(), err.Error()))
				}
			}
			if err := screenErr(v.Err()); err != nil {
				return err
			}
			return c.printer.Groups(v.Groups())
		},
	}
	cmd.Flags().StringVar(&create, "create", "", "create a group with this name")
	cmd.Flags().StringVar(&description, "description", "", "description for --create")
	cmd.Flags().BoolVar(&join, "join", false, "join the group, or leave it when already a member")
	return cmd
}

func (c *cli) castingCallsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "casting-calls",
		Aliases: []string{"castings"},
		Short:   "Show the casting call board",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := c.openCasting(cmd)
			if err != nil {
				return err
			}
			defer v.Close()
			return c.printer.CastingCalls(castingRows(v.Entries()))
		},
	}
}

func (c *cli) applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <casting-call-id>",
		Short: "Apply to a casting call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.openCasting(cmd)
			if err != nil {
				return err
			}
			defer v.Close()
			if err := v.Apply(cmd.Context(), args[0]); err != nil {
				entry, _ := v.Entry(args[0])
				return screenErr(cmp.Or(entry.Err, apiclient.UserMessage(err, casting.MsgApplyFailed)))
			}
			entry, _ := v.Entry(args[0])
			return c.printer.CastingCalls(castingRows([]casting.Entry{entry}))
		},
	}
}

func (c *cli) openCasting(cmd *cobra.Command) (*casting.View, error) {
	screen, err := c.open(cmd.Context(), app.RouteCastingCalls)
	if err != nil {
		return nil, err
	}
	v := screen.(*casting.View)
	if err := screenErr(v.Err()); err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

func castingRows(entries []casting.Entry) []render.CastingRow {
	rows := make([]render.CastingRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, render.CastingRow{Call: e.Call, Applied: e.Applied})
	}
	return rows
}
