package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"

	"awsdash/pkg/auth"
	"awsdash/pkg/cloud"
	"awsdash/pkg/config"
	"awsdash/pkg/logger"
	"awsdash/pkg/retry"
	"awsdash/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	logFile    string
	console    bool
	profile    string
	noColor    bool
)

// errSilent marks an error that has already been reported to the user
var errSilent = errors.New("")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "awsdash",
	Short: "A small EC2 status dashboard",
	Long: `awsdash lists EC2 instances as an HTML status page or in the terminal,
and checks which AWS account the current credentials belong to.

Every AWS call is retried with exponential backoff while AWS reports
throttling: up to 6 attempts, sleeping 2^n seconds plus jitter in between.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.SetColor(false)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			ui.PrintError("Error", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./awsdash.yaml or ~/.config/awsdash/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append JSON log records to this file")
	rootCmd.PersistentFlags().BoolVar(&console, "console", false, "mirror file logging to the console")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "stored credential profile to use")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.SetVersionTemplate(`awsdash {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// globalFlags collects the persistent flags for config.Load
func globalFlags() map[string]interface{} {
	return map[string]interface{}{
		"log-level": logLevel,
		"log-file":  logFile,
		"console":   console,
		"profile":   profile,
	}
}

// app holds what every AWS-facing command needs
type app struct {
	cfg      *config.Config
	log      logger.Logger
	invoker  *retry.Invoker
	registry *cloud.Registry
}

// newApp loads configuration, opens the logger and builds the client
// registry. Callers must call close.
func newApp(ctx context.Context, flags map[string]interface{}) (*app, error) {
	merged := globalFlags()
	for k, v := range flags {
		merged[k] = v
	}

	cfg, err := config.Load(configFile, merged)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	creds, err := resolveCredentials(cfg.AWS.Profile)
	if err != nil {
		_ = log.Close()
		return nil, err
	}

	registry, err := cloud.NewRegistry(ctx, cfg.AWS, creds, log)
	if err != nil {
		_ = log.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      log,
		invoker:  retry.NewInvoker(retry.PolicyFromConfig(cfg.Retry), log),
		registry: registry,
	}, nil
}

func (a *app) close() {
	_ = a.log.Close()
}

// resolveCredentials returns a static provider for a stored profile, or
// nil to use the SDK default chain when no profile is selected.
func resolveCredentials(name string) (aws.CredentialsProvider, error) {
	if name == "" {
		return nil, nil
	}

	manager, err := auth.NewManager("")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	p, err := manager.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %q: %w", name, err)
	}
	return cloud.CredentialsFromProfile(p), nil
}

// defaultLogFile returns the conventional log file for this binary when its
// directory exists, so servers log there without extra flags.
func defaultLogFile() string {
	path := config.DefaultLogFile(os.Args[0])
	if info, err := os.Stat(filepath.Dir(path)); err == nil && info.IsDir() {
		return path
	}
	return ""
}
