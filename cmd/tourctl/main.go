package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tropharbour-backend/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "tourctl",
	Short:         "Operational commands for the TropHarbour backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		logger.Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("tourctl failed", err)
		os.Exit(1)
	}
}
