package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"awsdash/pkg/cloud"
	"awsdash/pkg/config"
	"awsdash/pkg/ui"
)

var accountRegion string

// accountCmd represents the account command
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Inspect the AWS account of the current credentials",
}

// accountCheckCmd represents the account check command
var accountCheckCmd = &cobra.Command{
	Use:   "check [account-id]",
	Short: "Check that the credentials belong to the required account",
	Long: `Resolve the account ID of the calling IAM user and compare it with the
required account ID, given as an argument or as aws.account_id.

Exits with status 1 when the accounts differ.`,
	Example: `  awsdash account check 123456789012`,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runAccountCheck,
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountCheckCmd)
	accountCheckCmd.Flags().StringVar(&accountRegion, "iam-region", config.UniversalRegion, "registry region holding the IAM client")
}

func runAccountCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	flags := map[string]interface{}{}
	if len(args) > 0 {
		flags["account-id"] = args[0]
	}

	a, err := newApp(ctx, flags)
	if err != nil {
		return err
	}
	defer a.close()

	required := a.cfg.AWS.AccountID
	if required == "" {
		return errors.New("no account ID given: pass one as an argument or set aws.account_id")
	}

	client, err := a.registry.IAM(accountRegion)
	if err != nil {
		return err
	}

	result, err := cloud.NewAccountChecker(client, a.invoker, a.log).Check(ctx, required)
	if err != nil {
		return fmt.Errorf("account check failed: %w", err)
	}

	ui.PrintInfo("Your account ID", result.ActualID)
	ui.PrintInfo("Required account ID", result.RequiredID)
	if !result.Match {
		ui.PrintError("Account mismatch")
		return errSilent
	}

	ui.PrintSuccess("Account matches")
	return nil
}
