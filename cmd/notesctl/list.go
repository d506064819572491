package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the current notes, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// The server has no one-shot list endpoint: the collection arrives
		// as the first snapshot on the push channel.
		sub := newClient().Subscribe(ctx)
		defer sub.Close()

		select {
		case <-ctx.Done():
			fatal("timed out waiting for snapshot", ctx.Err())
		case notes, ok := <-sub.Updates():
			if !ok {
				fatal("subscription ended", sub.Err())
			}
			if listJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(notes); err != nil {
					fatal("encoding notes", err)
				}
				return
			}
			if len(notes) == 0 {
				fmt.Println("No notes yet.")
				return
			}
			for _, note := range notes {
				fmt.Printf("%s  %s  %s\n", note.ID, note.Date, note.Text)
			}
		}
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output notes as JSON")
	rootCmd.AddCommand(listCmd)
}
