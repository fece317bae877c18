package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"awsdash/pkg/cloud"
	"awsdash/pkg/dashboard"
	"awsdash/pkg/ui"
)

var (
	serveListen string
	serveRegion string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the instance status page",
	Long: `Serve an HTML page listing the EC2 instances of the dashboard region.

Routes:
  GET /         one line per instance: "Name (id) [state] <br />"
  GET /healthz  liveness check

A listing that stays throttled through every retry answers 503. Other AWS
errors answer 502. When dashboard.requests_per_minute is set, requests over
the limit are rejected with 429.`,
	Example: `  # Serve on the default address
  awsdash serve

  # Serve us-east-1 on all interfaces
  awsdash serve --listen :8080 --region us-east-1`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (default 127.0.0.1:5000)")
	serveCmd.Flags().StringVarP(&serveRegion, "region", "r", "", "region to list (default eu-west-1)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flags := map[string]interface{}{
		"listen": serveListen,
		"region": serveRegion,
	}
	if logFile == "" {
		flags["log-file"] = defaultLogFile()
	}

	a, err := newApp(ctx, flags)
	if err != nil {
		return err
	}
	defer a.close()

	client, err := a.registry.EC2(a.cfg.Dashboard.Region)
	if err != nil {
		return err
	}
	inventory := cloud.NewInventory(client, a.invoker, a.log)

	ui.PrintBanner()
	ui.PrintInfo("Listening", "http://"+a.cfg.Dashboard.ListenAddr)
	ui.PrintInfo("Region", a.cfg.Dashboard.Region)

	return dashboard.NewServer(a.cfg.Dashboard, inventory, a.log).ListenAndServe(ctx)
}
