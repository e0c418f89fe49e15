package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/chamada/internal/app"
	"github.com/saturnino-fabrica-de-software/chamada/internal/capture"
	"github.com/saturnino-fabrica-de-software/chamada/internal/service"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Attendance sessions",
}

var sessionRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an attendance session",
	Long: `Run one attendance session for a class. Frames come from the configured
capture device, or from a directory of images with --frames.

Example:
  chamadactl session run --subject CS301 --semester 3 --branch CSE --timing 09:00-10:00
  chamadactl session run --subject CS301 --semester 3 --branch CSE --timing 09:00-10:00 --frames ./shots`,
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionRunCmd)

	sessionRunCmd.Flags().String("subject", "", "Subject code")
	sessionRunCmd.Flags().Int("semester", 0, "Semester (1-8)")
	sessionRunCmd.Flags().String("branch", "", "Branch code")
	sessionRunCmd.Flags().String("timing", "", "Class timing, e.g. 09:00-10:00")
	sessionRunCmd.Flags().String("frames", "", "Read frames from this directory instead of the capture device")
	_ = sessionRunCmd.MarkFlagRequired("subject")
	_ = sessionRunCmd.MarkFlagRequired("semester")
	_ = sessionRunCmd.MarkFlagRequired("branch")
	_ = sessionRunCmd.MarkFlagRequired("timing")
}

func runSession(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var opts []app.Option
	if dir := mustGetString(cmd, "frames"); dir != "" {
		device := capture.NewDirectoryDevice(dir)
		total, err := device.Count()
		if err != nil {
			return fmt.Errorf("cannot read frames from %s: %w", dir, err)
		}
		if total == 0 {
			fmt.Println("No image files found in the frames directory.")
			return nil
		}
		fmt.Printf("Found %d frame(s) in %s\n", total, dir)
		opts = append(opts, app.WithDevice(&progressDevice{Device: device, bar: newBar(total, "Scanning", "frames")}))
	}

	engine, _, closeEngine, err := openEngine(ctx, opts...)
	if err != nil {
		return err
	}
	defer closeEngine()

	summary, err := engine.Attendance.Start(ctx, service.StartRequest{
		SubjectCode: mustGetString(cmd, "subject"),
		Semester:    mustGetInt(cmd, "semester"),
		Branch:      mustGetString(cmd, "branch"),
		Timing:      mustGetString(cmd, "timing"),
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Session %s finished: %s\n", summary.Session.ID, summary.StopReason)
	fmt.Printf("Frames processed: %d, unknown faces: %d\n", summary.FramesProcessed, summary.UnknownFaces)
	fmt.Printf("Present: %d, absent: %d\n", summary.Present, summary.Absent)
	if len(summary.PresentRolls) > 0 {
		fmt.Printf("Present rolls: %s\n", strings.Join(summary.PresentRolls, ", "))
	}
	if summary.ExportPath != "" {
		fmt.Printf("Workbook: %s\n", summary.ExportPath)
	}
	return nil
}
