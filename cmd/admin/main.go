package main

import (
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

func main() {
	rootCmd := &cobra.Command{
		Use:          "townadmin",
		Short:        "Admin tool for the town service REST API and user directory",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("TOWN_SERVER", "http://localhost:8081"), "server base URL (env: TOWN_SERVER)")

	rootCmd.AddCommand(newTownsCmd())
	rootCmd.AddCommand(newUsersCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
