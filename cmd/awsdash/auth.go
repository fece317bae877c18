package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"awsdash/pkg/auth"
	"awsdash/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored AWS credential profiles",
	Long: `Manage stored AWS access keys.

Profiles are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY (read only)

Select a profile for any command with --profile.`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Store an access key pair",
	Long: `Store an AWS access key pair under a profile name.

You will be prompted for:
  - Access key ID
  - Secret access key (hidden)
  - Session token (optional, hidden)`,
	Example: `  # Store the default profile
  awsdash auth login

  # Store a named profile
  awsdash auth login prod`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout <profile>",
	Short: "Remove a stored profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	Long:  `List stored profiles with masked keys.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager("")
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := auth.DefaultProfileName
	if len(args) > 0 {
		name = args[0]
	}

	ui.PrintBanner()
	auth.ShowAccessKeyGuide(os.Stdout)
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Access key ID: ")
	accessKey, err := readLine(reader)
	if err != nil {
		return fmt.Errorf("failed to read access key ID: %w", err)
	}

	fmt.Print("Secret access key: ")
	secretKey, err := readSecret(reader)
	if err != nil {
		return fmt.Errorf("failed to read secret access key: %w", err)
	}

	fmt.Print("Session token (optional): ")
	sessionToken, err := readSecret(reader)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read session token: %w", err)
	}

	p := &auth.Profile{
		Name:            name,
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		SessionToken:    sessionToken,
	}
	if err := manager.Store(p); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Stored profile %s", name))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager("")
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if err := manager.Delete(args[0]); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Removed profile %s", args[0]))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager("")
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	profiles, err := manager.List()
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		ui.PrintWarning("No stored profiles. Run 'awsdash auth login' to add one.")
		return nil
	}

	for _, p := range profiles {
		s := p.Sanitize()
		ui.PrintInfo(s.Name, fmt.Sprintf("%s  (updated %s)", s.AccessKeyID, s.LastModified.Format("2006-01-02 15:04")))
	}
	return nil
}

func readLine(reader *bufio.Reader) (string, error) {
	input, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// readSecret reads a value without echo when stdin is a terminal
func readSecret(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}
	return readLine(reader)
}
