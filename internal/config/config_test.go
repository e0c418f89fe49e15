package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name: "loads with all required vars",
			envVars: map[string]string{
				"PORT":            "8080",
				"ENV":             "production",
				"DATABASE_URL":    "postgres://localhost/test",
				"MATCH_TOLERANCE": "0.45",
				"ABSENCE_SCOPE":   "enrolled",
			},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 8080 &&
					c.Environment == "production" &&
					c.DatabaseURL == "postgres://localhost/test" &&
					c.MatchTolerance == 0.45 &&
					c.AbsenceScope == AbsenceScopeEnrolled
			},
		},
		{
			name: "uses defaults when optional vars missing",
			envVars: map[string]string{
				"DATABASE_URL": "postgres://localhost/test",
			},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 3000 &&
					c.Environment == "development" &&
					c.Encoder == "deepface" &&
					c.MatchTolerance == 0.5 &&
					c.AbsenceScope == AbsenceScopeRoster &&
					c.PersistAbsentees &&
					c.CaptureInterval == 200*time.Millisecond &&
					c.SessionMaxDuration == 5*time.Minute &&
					c.DeepFaceModel == "Dlib" &&
					!c.AutoMigrate
			},
		},
		{
			name:    "fails when DATABASE_URL missing",
			envVars: map[string]string{},
			wantErr: true,
			check:   nil,
		},
		{
			name: "fails on unknown absence scope",
			envVars: map[string]string{
				"DATABASE_URL":  "postgres://localhost/test",
				"ABSENCE_SCOPE": "everyone",
			},
			wantErr: true,
		},
		{
			name: "fails on non positive tolerance",
			envVars: map[string]string{
				"DATABASE_URL":    "postgres://localhost/test",
				"MATCH_TOLERANCE": "0",
			},
			wantErr: true,
		},
		{
			name: "fails on unknown encoder",
			envVars: map[string]string{
				"DATABASE_URL": "postgres://localhost/test",
				"ENCODER":      "openface",
			},
			wantErr: true,
		},
		{
			name: "fails on unknown detector",
			envVars: map[string]string{
				"DATABASE_URL":  "postgres://localhost/test",
				"FACE_DETECTOR": "opencv",
			},
			wantErr: true,
		},
		{
			name: "fails on unknown capture mode",
			envVars: map[string]string{
				"DATABASE_URL": "postgres://localhost/test",
				"CAPTURE_MODE": "usb",
			},
			wantErr: true,
		},
		{
			name: "parses webhook endpoints",
			envVars: map[string]string{
				"DATABASE_URL":   "postgres://localhost/test",
				"WEBHOOK_URLS":   "http://erp.local/hook,http://lms.local/hook",
				"WEBHOOK_SECRET": "s3cret",
			},
			check: func(c *Config) bool {
				return len(c.WebhookURLs) == 2 &&
					c.WebhookURLs[1] == "http://lms.local/hook" &&
					c.WebhookMaxAttempts == 5 &&
					c.WebhookPollInterval == 5*time.Second
			},
		},
		{
			name: "fails on webhook endpoints without secret",
			envVars: map[string]string{
				"DATABASE_URL": "postgres://localhost/test",
				"WEBHOOK_URLS": "http://erp.local/hook",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Load() config check failed, got: %+v", cfg)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"development", "development", true},
		{"production", "production", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"production", "production", true},
		{"development", "development", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsProduction(); got != tt.want {
				t.Errorf("IsProduction() = %v, want %v", got, tt.want)
			}
		})
	}
}
