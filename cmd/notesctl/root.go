package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/josswuzhur/cloud-notes-app/client"
	"github.com/josswuzhur/cloud-notes-app/utils"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "notesctl",
	Short: "Command-line client for the cloud notes API",
	Long: `notesctl talks to a cloud notes server: add, edit and remove notes,
and follow the live snapshot stream the server pushes to every client.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		utils.InitLogger(os.Stderr, level, true)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient() *client.Client {
	return client.New(serverURL, token)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("NOTES_SERVER", "http://localhost:3001"), "Base URL of the notes server")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("NOTES_TOKEN"), "Identity provider bearer token")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
