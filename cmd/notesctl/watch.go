package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/josswuzhur/cloud-notes-app/client"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the live snapshot stream until interrupted",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		sub := newClient().Subscribe(ctx)
		defer sub.Close()

		for notes := range sub.Updates() {
			fmt.Printf("--- %d note(s) ---\n", len(notes))
			for _, note := range notes {
				fmt.Printf("%s  %s  %s\n", note.ID, note.Date, note.Text)
			}
			if sub.State() == client.StateRetrying {
				fmt.Fprintln(os.Stderr, "connection lost, retrying...")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
