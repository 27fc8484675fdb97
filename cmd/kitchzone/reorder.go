package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var reorderRestock bool

var reorderCmd = &cobra.Command{
	Use:   "reorder",
	Short: "List low-stock items, optionally restocking them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			ctx, user, err := a.signIn(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if reorderRestock {
				items, err := a.services.Reorder.Restock(ctx, user.ID, nil)
				for _, item := range items {
					fmt.Fprintf(out, "Restocked %s to %g %s\n", item.Name, item.Quantity, item.Unit)
				}
				return err
			}

			candidates, err := a.services.Reorder.Suggestions(ctx, user.ID)
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				fmt.Fprintln(out, "Nothing to reorder.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ITEM\tZONE\tHAVE\tSUGGESTED")
			for _, c := range candidates {
				fmt.Fprintf(tw, "%s\t%s\t%g\t%g\n", c.Item.Name, c.ZoneName, c.Item.Quantity, c.SuggestedQuantity)
			}
			return tw.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(reorderCmd)
	reorderCmd.Flags().BoolVar(&reorderRestock, "restock", false, "Restock every suggested item")
}
