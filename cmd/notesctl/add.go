package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Create a new note",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := newClient().CreateNote(ctx, strings.Join(args, " ")); err != nil {
			fatal("creating note", err)
		}
		fmt.Println("Note created.")
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
