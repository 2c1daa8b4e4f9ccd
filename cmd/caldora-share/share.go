package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/samber/mo"
	"github.com/spf13/cobra"

	"github.com/cyp0633/caldora-share/sharing"
)

func newShareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Manage the shares of a calendar",
	}
	cmd.AddCommand(newShareAddCmd(a))
	cmd.AddCommand(newShareRemoveCmd(a))
	cmd.AddCommand(newShareListCmd(a))
	cmd.AddCommand(newShareReplyCmd(a))
	return cmd
}

// optionalFlag returns Some(value) when the flag was given on the command line.
func optionalFlag(cmd *cobra.Command, name, value string) mo.Option[string] {
	if cmd.Flags().Changed(name) {
		return mo.Some(value)
	}
	return mo.None[string]()
}

func newShareAddCmd(a *app) *cobra.Command {
	var (
		readOnly   bool
		summary    string
		commonName string
	)

	cmd := &cobra.Command{
		Use:   "add <calendar-id> <address>...",
		Short: "Share a calendar with one or more addresses",
		Long: `Share a calendar. Every address must resolve to a principal of the
directory, e.g. mailto:alice@example.com. Each invitee gets an invite
notification; nothing is stored when any address is unknown.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			add := make([]sharing.InviteDescriptor, 0, len(args)-1)
			for _, href := range args[1:] {
				add = append(add, sharing.InviteDescriptor{
					Href:       href,
					ReadOnly:   readOnly,
					Summary:    optionalFlag(cmd, "summary", summary),
					CommonName: optionalFlag(cmd, "common-name", commonName),
				})
			}
			return a.backend.UpdateShares(cmd.Context(), args[0], add, nil)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&readOnly, "read-only", false, "Share without write access")
	flags.StringVar(&summary, "summary", "", "Message shown with the invite")
	flags.StringVar(&commonName, "common-name", "", "Name of the invitee shown to the owner")
	return cmd
}

func newShareRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <calendar-id> <address>...",
		Short: "Stop sharing a calendar with one or more addresses",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			return a.backend.UpdateShares(cmd.Context(), args[0], nil, args[1:])
		},
	}
}

func newShareListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <calendar-id>",
		Short: "List the shares of a calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			views, err := a.backend.ListShares(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "HREF\tPRINCIPAL\tSTATUS\tREAD-ONLY\tNAME")
			for _, v := range views {
				name := v.CommonName.OrElse(v.DisplayName)
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", v.Href, v.PrincipalPath, v.Status, v.ReadOnly, name)
			}
			return w.Flush()
		},
	}
}

func newShareReplyCmd(a *app) *cobra.Command {
	var inReplyTo, summary string

	cmd := &cobra.Command{
		Use:   "reply <address> <host-url> accepted|declined",
		Short: "Answer a share invite",
		Long: `Answer a share invite as the sharee at <address>. The host URL is the
one carried by the invite notification, e.g. calendars/bob/work. Accepting
prints the address of the calendar in the sharee's home.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := sharing.ParseShareStatus(args[2])
			if err != nil {
				return err
			}
			if err := a.open(cmd); err != nil {
				return err
			}
			href, err := a.backend.ReplyToShare(cmd.Context(), sharing.ShareReply{
				Href:        args[0],
				Status:      status,
				CalendarURI: args[1],
				InReplyTo:   inReplyTo,
				Summary:     optionalFlag(cmd, "summary", summary),
			})
			if err != nil {
				return err
			}
			if h, ok := href.Get(); ok {
				fmt.Fprintln(cmd.OutOrStdout(), h)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&inReplyTo, "in-reply-to", "", "ID of the invite notification being answered")
	flags.StringVar(&summary, "summary", "", "Message shown with the reply")
	return cmd
}
