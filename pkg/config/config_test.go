package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Retry.MaxAttempts != 6 {
		t.Errorf("Expected default max attempts to be 6, got %d", config.Retry.MaxAttempts)
	}

	if len(config.Retry.ThrottleMarkers) != 1 || config.Retry.ThrottleMarkers[0] != "Throttling" {
		t.Errorf("Expected default throttle marker to be Throttling, got %v", config.Retry.ThrottleMarkers)
	}

	if config.Dashboard.Region != "eu-west-1" {
		t.Errorf("Expected default dashboard region to be eu-west-1, got %s", config.Dashboard.Region)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AWSDASH_ACCOUNT_ID", "123456789012")
	t.Setenv("AWSDASH_PROFILE", "ops")
	t.Setenv("AWSDASH_RETRY_MAX_ATTEMPTS", "4")
	t.Setenv("AWSDASH_LISTEN_ADDR", ":8080")
	t.Setenv("AWSDASH_DASHBOARD_REGION", "us-east-1")
	t.Setenv("AWSDASH_REQUESTS_PER_MINUTE", "30")
	t.Setenv("AWSDASH_LOG_LEVEL", "debug")
	t.Setenv("AWSDASH_LOG_FILE", "/tmp/awsdash.log")
	t.Setenv("AWSDASH_LOG_CONSOLE", "true")

	config := DefaultConfig()
	err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.AWS.AccountID != "123456789012" {
		t.Errorf("Expected account ID to be 123456789012, got %s", config.AWS.AccountID)
	}
	if config.AWS.Profile != "ops" {
		t.Errorf("Expected profile to be ops, got %s", config.AWS.Profile)
	}
	if config.Retry.MaxAttempts != 4 {
		t.Errorf("Expected max attempts to be 4, got %d", config.Retry.MaxAttempts)
	}
	if config.Dashboard.ListenAddr != ":8080" {
		t.Errorf("Expected listen address to be :8080, got %s", config.Dashboard.ListenAddr)
	}
	if config.Dashboard.Region != "us-east-1" {
		t.Errorf("Expected dashboard region to be us-east-1, got %s", config.Dashboard.Region)
	}
	if config.Dashboard.RequestsPerMin != 30 {
		t.Errorf("Expected requests per minute to be 30, got %d", config.Dashboard.RequestsPerMin)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
	if config.Logging.File != "/tmp/awsdash.log" {
		t.Errorf("Expected log file to be /tmp/awsdash.log, got %s", config.Logging.File)
	}
	if !config.Logging.Console {
		t.Error("Expected console logging to be enabled")
	}
}

func TestLoadFromEnvRejectsBadNumbers(t *testing.T) {
	t.Setenv("AWSDASH_RETRY_MAX_ATTEMPTS", "six")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err == nil {
		t.Error("Expected an error for a non-numeric max attempts value")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "no regions",
			mutate:    func(c *Config) { c.AWS.Regions = nil },
			wantError: true,
		},
		{
			name:      "unsupported service",
			mutate:    func(c *Config) { c.AWS.Regions["eu-west-1"] = []string{"s3"} },
			wantError: true,
		},
		{
			name:      "short account id",
			mutate:    func(c *Config) { c.AWS.AccountID = "1234" },
			wantError: true,
		},
		{
			name:      "zero attempts",
			mutate:    func(c *Config) { c.Retry.MaxAttempts = 0 },
			wantError: true,
		},
		{
			name:      "no throttle markers",
			mutate:    func(c *Config) { c.Retry.ThrottleMarkers = nil },
			wantError: true,
		},
		{
			name:      "dashboard region without ec2",
			mutate:    func(c *Config) { c.Dashboard.Region = UniversalRegion },
			wantError: true,
		},
		{
			name:      "universal region without signing region",
			mutate:    func(c *Config) { c.AWS.UniversalSigningRegion = "" },
			wantError: true,
		},
		{
			name:      "disabled logging",
			mutate:    func(c *Config) { c.Logging.Level = "disabled" },
			wantError: false,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "invalid" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"log-level":  "error",
		"log-file":   "/flag/awsdash.log",
		"console":    true,
		"profile":    "flag-profile",
		"listen":     ":9000",
		"region":     "us-east-1",
		"account-id": "210987654321",
	}

	config.MergeCommandLineFlags(flags)

	if config.Logging.Level != "error" {
		t.Errorf("Expected log level to be error, got %s", config.Logging.Level)
	}
	if config.Logging.File != "/flag/awsdash.log" {
		t.Errorf("Expected log file to be /flag/awsdash.log, got %s", config.Logging.File)
	}
	if !config.Logging.Console {
		t.Error("Expected console logging to be enabled")
	}
	if config.AWS.Profile != "flag-profile" {
		t.Errorf("Expected profile to be flag-profile, got %s", config.AWS.Profile)
	}
	if config.Dashboard.ListenAddr != ":9000" {
		t.Errorf("Expected listen address to be :9000, got %s", config.Dashboard.ListenAddr)
	}
	if config.Dashboard.Region != "us-east-1" {
		t.Errorf("Expected region to be us-east-1, got %s", config.Dashboard.Region)
	}
	if config.AWS.AccountID != "210987654321" {
		t.Errorf("Expected account ID to be 210987654321, got %s", config.AWS.AccountID)
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "awsdash.yaml")

	config := DefaultConfig()
	config.AWS.AccountID = "123456789012"
	config.Retry.ThrottleMarkers = []string{"Throttling", "RequestLimitExceeded"}
	config.Dashboard.ReadTimeout = 3 * time.Second

	if err := config.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Expected config file to exist: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected file mode 0600, got %o", info.Mode().Perm())
	}

	loadedConfig := DefaultConfig()
	if err := loadedConfig.LoadFromFile(configPath); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedConfig.AWS.AccountID != "123456789012" {
		t.Errorf("Expected loaded account ID to be 123456789012, got %s", loadedConfig.AWS.AccountID)
	}
	if len(loadedConfig.Retry.ThrottleMarkers) != 2 {
		t.Errorf("Expected 2 throttle markers, got %v", loadedConfig.Retry.ThrottleMarkers)
	}
	if loadedConfig.Dashboard.ReadTimeout != 3*time.Second {
		t.Errorf("Expected read timeout to be 3s, got %v", loadedConfig.Dashboard.ReadTimeout)
	}
}

func TestDefaultLogFile(t *testing.T) {
	tests := []struct {
		binary   string
		expected string
	}{
		{"/usr/local/bin/awsdash", "/var/log/aws_dash/awsdash.log"},
		{"./dashboard.py", "/var/log/aws_dash/dashboard.log"},
		{"awsdash.exe", "/var/log/aws_dash/awsdash.log"},
	}

	for _, tt := range tests {
		if got := DefaultLogFile(tt.binary); got != tt.expected {
			t.Errorf("DefaultLogFile(%q) = %q, want %q", tt.binary, got, tt.expected)
		}
	}
}
