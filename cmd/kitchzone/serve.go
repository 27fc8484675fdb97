package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vbonduro/kitchzone/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			server := web.NewServer(a.services, a.gateway.Auth(), a.fileOpen, a.cfg.RateLimitPerMin, a.logger)
			return server.ListenAndServe(a.cfg.ListenAddr)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
