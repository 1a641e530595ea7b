package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	genresCmd := &cobra.Command{
		Use:   "genres",
		Short: "List genres",
		RunE:  runGenres,
	}

	rootCmd.AddCommand(genresCmd)
}

func runGenres(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.closeEnv()

	genres, err := e.store.ListGenres()
	if err != nil {
		return err
	}
	if len(genres) == 0 {
		fmt.Println("No genres.")
		return nil
	}

	for _, g := range genres {
		fmt.Printf("  %-4d %s\n", g.ID, g.Name)
	}
	return nil
}
