package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id> <text>",
	Short: "Replace the text of an existing note",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := newClient().UpdateNote(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
			fatal("updating note", err)
		}
		fmt.Println("Note updated.")
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
