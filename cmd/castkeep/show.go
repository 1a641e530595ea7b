package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one record with its tracks and genres",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid ID: %s", args[0])
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.closeEnv()

	rec, err := e.store.GetRecord(id)
	if err != nil {
		return err
	}
	genres, err := e.store.GenresForRecord(id)
	if err != nil {
		return err
	}

	fmt.Printf("%s [ID: %d]\n", rec.Title, rec.ID)
	if rec.Details != "" {
		fmt.Printf("  %s\n", rec.Details)
	}
	fmt.Printf("  Page:  %s\n", rec.PageURL)
	if rec.ThumbnailURL != "" {
		fmt.Printf("  Thumb: %s\n", rec.ThumbnailURL)
	}
	if rec.MimeType != "" {
		fmt.Printf("  Type:  %s\n", rec.MimeType)
	}
	fmt.Printf("  Added: %s\n", rec.DateAdded.Format("2006-01-02 15:04"))

	if len(genres) > 0 {
		names := make([]string, len(genres))
		for i, g := range genres {
			names[i] = g.Name
		}
		fmt.Printf("  Genres: %s\n", strings.Join(names, ", "))
	}

	if rec.HasBeenSeen() {
		if rec.StartTime != nil {
			fmt.Printf("  Seen: yes (resume at %.0fs)\n", *rec.StartTime)
		} else {
			fmt.Println("  Seen: yes")
		}
	} else {
		fmt.Println("  Seen: no")
	}

	if len(rec.Tracks) == 0 {
		fmt.Println("\n  No tracks.")
		return nil
	}

	fmt.Printf("\n  Tracks (%d):\n", len(rec.Tracks))
	for _, tr := range rec.Tracks {
		played := ""
		if tr.PlayTime != nil && *tr.PlayTime > 0 {
			played = fmt.Sprintf("  [played %.0fs]", *tr.PlayTime)
		}
		fmt.Printf("    %d. %-20s %s%s\n", tr.Position, tr.Name, tr.Address, played)
	}
	return nil
}
