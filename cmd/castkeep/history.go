package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/castkeep/castkeep/internal/events"
)

func init() {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show the library event history",
		RunE:  runHistory,
	}

	historyCmd.Flags().Duration("since", 24*time.Hour, "How far back to look")
	historyCmd.Flags().Int64("record", 0, "Only events for this record")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	since, _ := cmd.Flags().GetDuration("since")
	recordID, _ := cmd.Flags().GetInt64("record")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.closeEnv()

	log := events.NewEventLog(e.store.DB())

	var raw []events.RawEvent
	if recordID != 0 {
		raw, err = log.ForEntity(events.EntityRecord, recordID)
	} else {
		raw, err = log.Since(time.Now().Add(-since))
	}
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		fmt.Println("No events.")
		return nil
	}

	for _, ev := range raw {
		fmt.Printf("  %s  %-22s %s/%d\n",
			ev.OccurredAt.Format("2006-01-02 15:04:05"),
			ev.EventType,
			ev.EntityType,
			ev.EntityID)
	}
	return nil
}
