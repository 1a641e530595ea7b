package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/castkeep/castkeep/internal/cast"
)

func init() {
	castCmd := &cobra.Command{
		Use:   "cast <record-id>",
		Short: "Play a record on a device",
		Long: `Starts a playback session on a device, resuming from the record's
stored position. Without real hardware the built-in simulator device
plays for --watch seconds, then the session ends and progress is
persisted.`,
		Args: cobra.ExactArgs(1),
		RunE: runCast,
	}

	castCmd.Flags().Int("track", 0, "Track position to play")
	castCmd.Flags().String("device", "", "Device name (default: config, else simulator)")
	castCmd.Flags().Float64("watch", 10, "Seconds to play before ending the session")

	rootCmd.AddCommand(castCmd)
}

func runCast(cmd *cobra.Command, args []string) error {
	id, err := parseRecordID(args[0])
	if err != nil {
		return err
	}
	track, _ := cmd.Flags().GetInt("track")
	deviceName, _ := cmd.Flags().GetString("device")
	watch, _ := cmd.Flags().GetFloat64("watch")

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.closeEnv()

	rec, err := e.store.GetRecord(id)
	if err != nil {
		return err
	}

	if deviceName == "" {
		deviceName = e.cfg.Cast.DeviceName
	}
	if deviceName == "" {
		deviceName = "Simulator"
	}
	device := cast.NewSimDevice("sim-0", deviceName)

	ctrl := cast.NewController(e.svc, e.bus, e.log)
	ctx := cmd.Context()

	if err := ctrl.StartSession(ctx, device); err != nil {
		return err
	}
	if err := ctrl.CastRecord(ctx, rec, track); err != nil {
		_ = ctrl.EndSession(ctx)
		return err
	}

	start := 0.0
	if rec.StartTime != nil {
		start = *rec.StartTime
	}
	fmt.Printf("Casting %q to %s from %.0fs...\n", rec.Title, deviceName, start)

	timer := time.NewTimer(time.Duration(watch * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}

	if err := ctrl.EndSession(ctx); err != nil {
		return err
	}

	got, err := e.store.GetRecord(id)
	if err != nil {
		return err
	}
	if got.StartTime != nil {
		fmt.Printf("Session ended at %.0fs; progress saved.\n", *got.StartTime)
	} else {
		fmt.Println("Session ended.")
	}
	return nil
}
