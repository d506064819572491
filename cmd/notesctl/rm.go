package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Deletion is idempotent server-side; removing an id twice is fine.
		if err := newClient().DeleteNote(ctx, args[0]); err != nil {
			fatal("deleting note", err)
		}
		fmt.Println("Note deleted.")
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
