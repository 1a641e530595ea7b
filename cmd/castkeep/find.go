package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	findCmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Find a record by fuzzy title match",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runFind,
	}

	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.closeEnv()

	if err := e.list.Load(cmd.Context(), nil); err != nil {
		return err
	}

	rec, err := e.list.FindByTitle(query)
	if err != nil {
		return fmt.Errorf("no match for %q", query)
	}

	fmt.Printf("%s [ID: %d]\n", rec.Title, rec.ID)
	fmt.Printf("  %s\n", rec.PageURL)
	return nil
}
