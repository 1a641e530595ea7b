package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a record from the library",
		Long:  "Removes the record, its tracks, and its genre memberships. Genres themselves are kept.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemove,
	}

	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
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
	if err := e.svc.DeleteRecord(cmd.Context(), id); err != nil {
		return err
	}

	fmt.Printf("Removed: %s [ID: %d]\n", rec.Title, rec.ID)
	return nil
}
