package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/samber/mo"
	"github.com/spf13/cobra"

	"github.com/cyp0633/caldora-share/internal/props"
	"github.com/cyp0633/caldora-share/sharing"
)

func newNotificationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notification",
		Short: "Send, list and acknowledge queued notifications",
	}
	cmd.AddCommand(newNotificationListCmd(a))
	cmd.AddCommand(newNotificationAckCmd(a))
	cmd.AddCommand(newNotificationSendCmd(a))
	return cmd
}

func newNotificationSendCmd(a *app) *cobra.Command {
	var priority, href string

	cmd := &cobra.Command{
		Use:   "send <principal-path> <description>",
		Short: "Queue a system status notification for a principal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := sharing.ParsePriority(priority)
			if err != nil {
				return err
			}
			if err := a.open(cmd); err != nil {
				return err
			}
			return a.backend.Enqueue(cmd.Context(), args[0], &sharing.SystemStatus{
				Priority:    mo.Some(p),
				Description: mo.Some(args[1]),
				Href:        optionalFlag(cmd, "href", href),
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&priority, "priority", sharing.PriorityMedium.String(), "Priority: low, medium or high")
	flags.StringVar(&href, "href", "", "Resource the notice is about")
	return cmd
}

func newNotificationListCmd(a *app) *cobra.Command {
	var asXML bool

	cmd := &cobra.Command{
		Use:   "list <principal-path>",
		Short: "List the notifications of a principal, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			ns, err := a.backend.ListNotifications(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asXML {
				for _, n := range ns {
					s, err := props.ToString(n.Encode())
					if err != nil {
						return fmt.Errorf("failed to encode notification %s: %w", n.Meta().ID, err)
					}
					fmt.Fprintln(out, s)
				}
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tDTSTAMP\tETAG")
			for _, n := range ns {
				m := n.Meta()
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, n.Kind(), m.DTStamp.Format("2006-01-02T15:04:05Z"), m.ETag.OrEmpty())
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asXML, "xml", false, "Print the notification XML bodies")
	return cmd
}

func newNotificationAckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ack <principal-path> <id>",
		Short: "Acknowledge (delete) a notification",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			ns, err := a.backend.ListNotifications(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, n := range ns {
				if n.Meta().ID == args[1] {
					return a.backend.DeleteNotification(cmd.Context(), args[0], n)
				}
			}
			return sharing.NotFound("notification %s of %s", args[1], args[0])
		},
	}
}
