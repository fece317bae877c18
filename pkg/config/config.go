package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// UniversalRegion is the pseudo-region that holds global services such as IAM.
const UniversalRegion = "universal"

// Config holds all configuration options for the dashboard
type Config struct {
	// AWS connection settings
	AWS AWSConfig `yaml:"aws" json:"aws"`

	// Retry policy for remote API calls
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// HTTP status page settings
	Dashboard DashboardConfig `yaml:"dashboard" json:"dashboard"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// AWSConfig describes which regions and services the dashboard talks to
type AWSConfig struct {
	// Regions maps a region name to the services connected in it
	Regions map[string][]string `yaml:"regions" json:"regions"`
	// UniversalSigningRegion is the real region used to sign calls made
	// against the universal pseudo-region
	UniversalSigningRegion string `yaml:"universal_signing_region" json:"universal_signing_region"`
	// AccountID is the account the credentials are required to belong to
	AccountID string `yaml:"account_id" json:"account_id"`
	// Profile names a stored credential profile (empty uses the default chain)
	Profile string `yaml:"profile" json:"profile"`
}

// RetryConfig holds the backoff invoker policy
type RetryConfig struct {
	MaxAttempts     int      `yaml:"max_attempts" json:"max_attempts"`
	ThrottleMarkers []string `yaml:"throttle_markers" json:"throttle_markers"`
}

// DashboardConfig holds HTTP server configuration
type DashboardConfig struct {
	ListenAddr      string        `yaml:"listen_addr" json:"listen_addr"`
	Region          string        `yaml:"region" json:"region"`
	RequestsPerMin  int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	File    string `yaml:"file" json:"file"`
	Console bool   `yaml:"console" json:"console"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		AWS: AWSConfig{
			Regions: map[string][]string{
				"eu-west-1":     {"ec2"},
				"us-east-1":     {"ec2"},
				UniversalRegion: {"iam"},
			},
			UniversalSigningRegion: "us-east-1",
		},
		Retry: RetryConfig{
			MaxAttempts:     6,
			ThrottleMarkers: []string{"Throttling"},
		},
		Dashboard: DashboardConfig{
			ListenAddr:      "127.0.0.1:5000",
			Region:          "eu-west-1",
			RequestsPerMin:  0, // 0 disables the request guard
			ReadTimeout:     10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			File:    "",
			Console: false,
		},
	}
}

// DefaultLogFile returns the system log path for a binary,
// /var/log/aws_dash/<basename>.log.
func DefaultLogFile(binary string) string {
	base := filepath.Base(binary)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join("/var/log/aws_dash", base+".log")
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if accountID := os.Getenv("AWSDASH_ACCOUNT_ID"); accountID != "" {
		c.AWS.AccountID = accountID
	}
	if profile := os.Getenv("AWSDASH_PROFILE"); profile != "" {
		c.AWS.Profile = profile
	}

	if attempts := os.Getenv("AWSDASH_RETRY_MAX_ATTEMPTS"); attempts != "" {
		val, err := strconv.Atoi(attempts)
		if err != nil {
			return fmt.Errorf("AWSDASH_RETRY_MAX_ATTEMPTS: %w", err)
		}
		c.Retry.MaxAttempts = val
	}

	if addr := os.Getenv("AWSDASH_LISTEN_ADDR"); addr != "" {
		c.Dashboard.ListenAddr = addr
	}
	if region := os.Getenv("AWSDASH_DASHBOARD_REGION"); region != "" {
		c.Dashboard.Region = region
	}
	if rpm := os.Getenv("AWSDASH_REQUESTS_PER_MINUTE"); rpm != "" {
		val, err := strconv.Atoi(rpm)
		if err != nil {
			return fmt.Errorf("AWSDASH_REQUESTS_PER_MINUTE: %w", err)
		}
		c.Dashboard.RequestsPerMin = val
	}

	if logLevel := os.Getenv("AWSDASH_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("AWSDASH_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}
	if console := os.Getenv("AWSDASH_LOG_CONSOLE"); console != "" {
		c.Logging.Console = strings.ToLower(console) == "true"
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// yaml.v3 merges map keys into the default table, so a region table
	// in the file replaces the defaults here.
	var file struct {
		AWS struct {
			Regions map[string][]string `yaml:"regions"`
		} `yaml:"aws"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if file.AWS.Regions != nil {
		c.AWS.Regions = file.AWS.Regions
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		"awsdash.yaml",
		".awsdash.yaml",
		".awsdash.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "awsdash", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".awsdash.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

var accountIDPattern = regexp.MustCompile(`^[0-9]{12}$`)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if len(c.AWS.Regions) == 0 {
		errs = append(errs, errors.New("at least one region must be configured"))
	}
	for region, services := range c.AWS.Regions {
		if len(services) == 0 {
			errs = append(errs, fmt.Errorf("region %s has no services", region))
		}
		for _, svc := range services {
			if svc != "ec2" && svc != "iam" {
				errs = append(errs, fmt.Errorf("region %s: unsupported service %q", region, svc))
			}
		}
	}
	if _, ok := c.AWS.Regions[UniversalRegion]; ok && c.AWS.UniversalSigningRegion == "" {
		errs = append(errs, errors.New("universal signing region is required"))
	}
	if c.AWS.AccountID != "" && !accountIDPattern.MatchString(c.AWS.AccountID) {
		errs = append(errs, errors.New("account ID must be 12 digits"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry max attempts must be positive"))
	}
	if len(c.Retry.ThrottleMarkers) == 0 {
		errs = append(errs, errors.New("at least one throttle marker is required"))
	}

	if c.Dashboard.ListenAddr == "" {
		errs = append(errs, errors.New("dashboard listen address is required"))
	}
	if c.Dashboard.Region == "" {
		errs = append(errs, errors.New("dashboard region is required"))
	} else if !hasService(c.AWS.Regions[c.Dashboard.Region], "ec2") {
		errs = append(errs, fmt.Errorf("dashboard region %s has no ec2 connection", c.Dashboard.Region))
	}
	if c.Dashboard.RequestsPerMin < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func hasService(services []string, want string) bool {
	for _, s := range services {
		if s == want {
			return true
		}
	}
	return false
}

// ThrottleMarkersHint is written above retry.throttle_markers by Save.
// EC2 throttles with RequestLimitExceeded, which the default marker does
// not match.
const ThrottleMarkersHint = `# EC2 reports throttling as RequestLimitExceeded. To retry it as well:
# throttle_markers: [Throttling, RequestLimitExceeded]`

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	var doc yaml.Node
	if err := doc.Encode(c); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, retrySection := mappingEntry(&doc, "retry")
	if key, _ := mappingEntry(retrySection, "throttle_markers"); key != nil {
		key.HeadComment = ThrottleMarkersHint
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// mappingEntry returns the key and value nodes of key in a mapping node
func mappingEntry(n *yaml.Node, key string) (*yaml.Node, *yaml.Node) {
	if n != nil && n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n == nil || n.Kind != yaml.MappingNode {
		return nil, nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i], n.Content[i+1]
		}
	}
	return nil, nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
	if console, ok := flags["console"].(bool); ok && console {
		c.Logging.Console = true
	}
	if profile, ok := flags["profile"].(string); ok && profile != "" {
		c.AWS.Profile = profile
	}
	if addr, ok := flags["listen"].(string); ok && addr != "" {
		c.Dashboard.ListenAddr = addr
	}
	if region, ok := flags["region"].(string); ok && region != "" {
		c.Dashboard.Region = region
	}
	if accountID, ok := flags["account-id"].(string); ok && accountID != "" {
		c.AWS.AccountID = accountID
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".awsdash.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
