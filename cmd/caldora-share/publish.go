package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPublishCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "publish <calendar-id> on|off",
		Short:     "Turn the public subscription of a calendar on or off",
		Long:      `Publish a calendar under a public subscription URL, or unpublish it. Publishing prints the URL.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var published bool
			switch args[1] {
			case "on":
				published = true
			case "off":
			default:
				return fmt.Errorf("expected on or off, got %q", args[1])
			}
			if err := a.open(cmd); err != nil {
				return err
			}

			if err := a.backend.SetPublishStatus(cmd.Context(), args[0], published); err != nil {
				return err
			}
			url, err := a.backend.PublishURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if u, ok := url.Get(); ok {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		},
	}
}
