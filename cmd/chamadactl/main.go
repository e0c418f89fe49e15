package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chamadactl",
	Short: "Run attendance sessions and export reports from the command line",
	Long: `chamadactl drives the attendance engine without the HTTP API. It reads
the same environment as the API server (DATABASE_URL, ENCODER, CAPTURE_*),
optionally from a .env file in the working directory.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
