package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"privmap/internal/app"
)

func main() {
	var opts app.Options

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Optional .env for local runs; missing file is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "privmapper",
		Short: "privmapper - AWS privilege escalation mapper",
		Long:  "Discovers privilege-escalation edges between IAM principals by checking how each attack vector can be abused",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(ctx, opts)
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().BoolVar(&opts.Debug, "debug", false, "Enable debug logging (verbose output)")
	rootCmd.Flags().BoolVar(&opts.Offline, "offline", false, "Skip the live Lambda function inventory; only local-only mechanisms run")
	rootCmd.Flags().BoolVar(&opts.JSON, "json", false, "Write the edge report as JSON on stdout")
	rootCmd.Flags().StringVar(&opts.ConfigPath, "config", "", "Path to a scan config YAML (defaults to the embedded config)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
