package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the library",
		RunE:  runList,
	}

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.closeEnv()

	if err := e.list.Load(cmd.Context(), nil); err != nil {
		return err
	}

	if e.list.Count() == 0 {
		fmt.Println("Library is empty.")
		return nil
	}

	fmt.Printf("Library (%d items):\n\n", e.list.Count())
	fmt.Printf("  %-4s %-40s %-20s %-6s %s\n", "ID", "TITLE", "GENRES", "SEEN", "TRACKS")
	fmt.Println("  " + strings.Repeat("-", 80))

	for i := 0; i < e.list.Count(); i++ {
		rec, err := e.list.MediaAt(i)
		if err != nil {
			return err
		}

		title := rec.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}

		genres, err := e.store.GenresForRecord(rec.ID)
		if err != nil {
			return err
		}
		names := make([]string, len(genres))
		for j, g := range genres {
			names[j] = g.Name
		}

		seen := ""
		if rec.HasBeenSeen() {
			seen = "yes"
		}

		fmt.Printf("  %-4d %-40s %-20s %-6s %d\n",
			rec.ID, title, strings.Join(names, ", "), seen, len(rec.Tracks))
	}
	return nil
}
