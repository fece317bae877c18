package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"awsdash/pkg/cloud"
	"awsdash/pkg/retry"
	"awsdash/pkg/ui"
)

var instancesRegion string

// instancesCmd represents the instances command
var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List EC2 instances in the terminal",
	Args:  cobra.NoArgs,
	Example: `  awsdash instances
  awsdash instances --region us-east-1`,
	RunE: runInstances,
}

func init() {
	rootCmd.AddCommand(instancesCmd)
	instancesCmd.Flags().StringVarP(&instancesRegion, "region", "r", "", "region to list (default is dashboard.region)")
}

func runInstances(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, map[string]interface{}{"region": instancesRegion})
	if err != nil {
		return err
	}
	defer a.close()

	client, err := a.registry.EC2(a.cfg.Dashboard.Region)
	if err != nil {
		return err
	}

	instances, err := cloud.NewInventory(client, a.invoker, a.log).Instances(ctx)
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			return fmt.Errorf("AWS kept throttling, giving up: %w", err)
		}
		return err
	}

	ui.PrintInstances(instances)
	return nil
}
