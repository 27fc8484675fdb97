package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vbonduro/kitchzone/internal/availability"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check whether the remote backend can hold your records",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			ctx, user, err := a.signIn(ctx)
			if err != nil {
				return err
			}
			v, err := a.services.Router.Availability(ctx, user.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Remote backend: %s\n", v.State)
			if v.State == availability.Unavailable {
				fmt.Fprintf(out, "Reason: %s\n", v.Kind)
				fmt.Fprintln(out, "Records are kept on this device.")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
