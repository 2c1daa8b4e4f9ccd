package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cyp0633/caldora-share/sharing"
)

func newPrincipalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "principal",
		Short: "Manage principals of the directory",
	}
	cmd.AddCommand(newPrincipalAddCmd(a))
	cmd.AddCommand(newPrincipalListCmd(a))
	return cmd
}

func newPrincipalAddCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add <path> <email>",
		Short: "Add a principal",
		Long: `Add a principal to the directory. Invite addresses are resolved against
the principal's email, so mailto:<email> becomes a valid share address.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			p, err := a.store.Directory().AddPrincipal(cmd.Context(), sharing.Principal{
				Path:        args[0],
				Email:       args[1],
				DisplayName: name,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.Path, p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name of the principal")
	return cmd
}

func newPrincipalListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List principals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			principals, err := a.store.Directory().ListPrincipals(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tEMAIL\tNAME\tID")
			for _, p := range principals {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Path, p.Email, p.DisplayName, p.ID)
			}
			return w.Flush()
		},
	}
}
