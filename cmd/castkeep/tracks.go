package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	tracksCmd := &cobra.Command{
		Use:   "tracks",
		Short: "Manage a record's tracks",
	}

	listCmd := &cobra.Command{
		Use:   "list <record-id>",
		Short: "List tracks in playback order",
		Args:  cobra.ExactArgs(1),
		RunE:  runTracksList,
	}

	addCmd := &cobra.Command{
		Use:   "add <record-id> <url>",
		Short: "Append a track",
		Args:  cobra.ExactArgs(2),
		RunE:  runTracksAdd,
	}
	addCmd.Flags().String("name", "", "Track name (e.g. quality label)")

	clearCmd := &cobra.Command{
		Use:   "clear <record-id>",
		Short: "Delete all tracks of a record",
		Args:  cobra.ExactArgs(1),
		RunE:  runTracksClear,
	}

	tracksCmd.AddCommand(listCmd)
	tracksCmd.AddCommand(addCmd)
	tracksCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(tracksCmd)
}

func parseRecordID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid record ID: %s", arg)
	}
	return id, nil
}

func runTracksList(cmd *cobra.Command, args []string) error {
	id, err := parseRecordID(args[0])
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.closeEnv()

	tracks, err := e.store.ListTracks(id)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		fmt.Println("No tracks.")
		return nil
	}

	for _, tr := range tracks {
		fmt.Printf("  %d. %-20s %s\n", tr.Position, tr.Name, tr.Address)
	}
	return nil
}

func runTracksAdd(cmd *cobra.Command, args []string) error {
	id, err := parseRecordID(args[0])
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("name")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.closeEnv()

	tr, err := e.svc.CreateTrack(cmd.Context(), id, args[1], name)
	if err != nil {
		return err
	}

	fmt.Printf("Added track %d at position %d\n", tr.ID, tr.Position)
	return nil
}

func runTracksClear(cmd *cobra.Command, args []string) error {
	id, err := parseRecordID(args[0])
	if err != nil {
		return err
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.closeEnv()

	if err := e.svc.DeleteAllTracks(cmd.Context(), id); err != nil {
		return err
	}

	fmt.Println("Tracks cleared.")
	return nil
}
