package capture

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/chamada/internal/config"
)

const (
	ModeSnapshot  = "snapshot"
	ModeDirectory = "directory"
)

// NewDevice builds the capture device named by CAPTURE_MODE.
func NewDevice(cfg *config.Config) (Device, error) {
	switch cfg.CaptureMode {
	case ModeSnapshot, "":
		if cfg.CaptureURL == "" {
			return nil, fmt.Errorf("CAPTURE_URL is required for snapshot capture")
		}
		return NewSnapshotDevice(cfg.CaptureURL, cfg.CaptureInterval, cfg.CaptureMaxFrames), nil
	case ModeDirectory:
		if cfg.CaptureDir == "" {
			return nil, fmt.Errorf("CAPTURE_DIR is required for directory capture")
		}
		return NewDirectoryDevice(cfg.CaptureDir), nil
	default:
		return nil, fmt.Errorf("unknown capture mode: %s", cfg.CaptureMode)
	}
}
