package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cyp0633/caldora-share/sharing"
)

func newCalendarCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Create and list calendars",
	}
	cmd.AddCommand(newCalendarCreateCmd(a))
	cmd.AddCommand(newCalendarListCmd(a))
	return cmd
}

func newCalendarCreateCmd(a *app) *cobra.Command {
	var (
		cal        sharing.Calendar
		components []string
	)

	cmd := &cobra.Command{
		Use:   "create <owner-path> <uri>",
		Short: "Create a calendar",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			cal.PrincipalURI = args[0]
			cal.URI = args[1]
			if cmd.Flags().Changed("components") {
				cal.Components = components
				if cal.Components == nil {
					cal.Components = []string{}
				}
			}

			created, err := a.store.CreateCalendar(cmd.Context(), cal)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cal.DisplayName, "name", "", "Display name")
	flags.StringVar(&cal.Description, "description", "", "Calendar description")
	flags.StringVar(&cal.Color, "color", "", "Calendar color, e.g. #FF0000")
	flags.StringVar(&cal.Timezone, "timezone", "", "Calendar timezone")
	flags.IntVar(&cal.Order, "order", 0, "Sort order of the calendar")
	flags.StringSliceVar(&components, "components", nil, "Accepted components (default VEVENT,VTODO)")
	flags.BoolVar(&cal.Transparent, "transparent", false, "Exclude the calendar from free-busy")
	return cmd
}

func newCalendarListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <principal-path>",
		Short: "List the owned and shared calendars of a principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			views, err := a.catalog().ListCalendarsForPrincipal(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tURI\tSHARED\tREAD-ONLY\tOWNER")
			for _, v := range views {
				fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%s\n", v.ID, v.URI, v.Shared, v.ReadOnly, v.OwnerPrincipal)
			}
			return w.Flush()
		},
	}
}
