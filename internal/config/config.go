package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Absence scopes decide which students are reconciled as absent.
const (
	AbsenceScopeRoster   = "roster"
	AbsenceScopeEnrolled = "enrolled"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"false"`

	// Encoder
	Encoder       string `envconfig:"ENCODER" default:"deepface"`
	DeepFaceURL   string `envconfig:"DEEPFACE_URL" default:"http://localhost:5000"`
	DeepFaceModel string `envconfig:"DEEPFACE_MODEL" default:"Dlib"`
	FaceDetector  string `envconfig:"FACE_DETECTOR" default:"none"`
	AWSRegion     string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Matching
	MatchTolerance float64 `envconfig:"MATCH_TOLERANCE" default:"0.5"`
	MatchWorkers   int     `envconfig:"MATCH_WORKERS" default:"4"`

	// Session
	AbsenceScope               string        `envconfig:"ABSENCE_SCOPE" default:"roster"`
	PersistAbsentees           bool          `envconfig:"PERSIST_ABSENTEES" default:"true"`
	SessionMaxDuration         time.Duration `envconfig:"SESSION_MAX_DURATION" default:"5m"`
	MaxConsecutiveEncodeErrors int           `envconfig:"MAX_CONSECUTIVE_ENCODE_ERRORS" default:"5"`
	SessionStatusTTL           time.Duration `envconfig:"SESSION_STATUS_TTL" default:"24h"`
	CacheCleanupInterval       time.Duration `envconfig:"CACHE_CLEANUP_INTERVAL" default:"10m"`

	// Capture
	CaptureMode      string        `envconfig:"CAPTURE_MODE" default:"snapshot"`
	CaptureURL       string        `envconfig:"CAPTURE_URL" default:"http://localhost:8080/shot.jpg"`
	CaptureDir       string        `envconfig:"CAPTURE_DIR" default:"data/frames"`
	CaptureInterval  time.Duration `envconfig:"CAPTURE_INTERVAL" default:"200ms"`
	CaptureMaxFrames int           `envconfig:"CAPTURE_MAX_FRAMES" default:"0"`

	// Export
	ExportDir string `envconfig:"EXPORT_DIR" default:"data/attendance_records"`

	// Webhooks
	WebhookURLs         []string      `envconfig:"WEBHOOK_URLS"`
	WebhookSecret       string        `envconfig:"WEBHOOK_SECRET"`
	WebhookMaxAttempts  int           `envconfig:"WEBHOOK_MAX_ATTEMPTS" default:"5"`
	WebhookPollInterval time.Duration `envconfig:"WEBHOOK_POLL_INTERVAL" default:"5s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.MatchTolerance <= 0 {
		return fmt.Errorf("MATCH_TOLERANCE must be positive, got %v", c.MatchTolerance)
	}
	switch c.AbsenceScope {
	case AbsenceScopeRoster, AbsenceScopeEnrolled:
	default:
		return fmt.Errorf("ABSENCE_SCOPE must be %q or %q, got %q", AbsenceScopeRoster, AbsenceScopeEnrolled, c.AbsenceScope)
	}
	switch c.Encoder {
	case "deepface", "mock":
	default:
		return fmt.Errorf("unknown ENCODER %q", c.Encoder)
	}
	switch c.FaceDetector {
	case "none", "deepface", "rekognition":
	default:
		return fmt.Errorf("unknown FACE_DETECTOR %q", c.FaceDetector)
	}
	switch c.CaptureMode {
	case "snapshot", "directory":
	default:
		return fmt.Errorf("unknown CAPTURE_MODE %q", c.CaptureMode)
	}
	if len(c.WebhookURLs) > 0 && c.WebhookSecret == "" {
		return fmt.Errorf("WEBHOOK_SECRET is required when WEBHOOK_URLS is set")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
