package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	seenCmd := &cobra.Command{
		Use:   "seen <record-id>",
		Short: "Record playback progress",
		Long: `Marks a record as played and stores the resume offset. The next
cast of this record starts from the stored position.`,
		Args: cobra.ExactArgs(1),
		RunE: runSeen,
	}

	seenCmd.Flags().Int("track", 0, "Track position the progress applies to")
	seenCmd.Flags().Float64("position", 0, "Playback position in seconds")

	rootCmd.AddCommand(seenCmd)
}

func runSeen(cmd *cobra.Command, args []string) error {
	id, err := parseRecordID(args[0])
	if err != nil {
		return err
	}
	track, _ := cmd.Flags().GetInt("track")
	position, _ := cmd.Flags().GetFloat64("position")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.closeEnv()

	if err := e.svc.RecordProgress(cmd.Context(), id, track, position); err != nil {
		return err
	}

	fmt.Printf("Recorded progress: record %d, track %d, %.0fs\n", id, track, position)
	return nil
}
