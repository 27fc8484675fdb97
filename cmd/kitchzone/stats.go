package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show image, zone and item counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			ctx, user, err := a.signIn(ctx)
			if err != nil {
				return err
			}
			st, err := a.services.Reorder.Stats(ctx, user.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Images: %d\n", st.TotalImages)
			fmt.Fprintf(out, "Zones: %d\n", st.TotalZones)
			fmt.Fprintf(out, "Items: %d\n", st.TotalItems)
			fmt.Fprintf(out, "Low stock: %d\n", st.LowStockItems)
			fmt.Fprintf(out, "Reorder suggestions: %d\n", st.ReorderSuggestions)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
