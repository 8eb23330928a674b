// ABOUTME: CLI commands for accounts: register, login, and list.
// ABOUTME: Passwords are read without echo when stdin is a terminal.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/harperreed/labtrack/internal/auth"
)

var (
	userPassword string
	userSave     bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
	Long: `Manage labtrack accounts.

Each account has its own documents and metric history. The HTTP API
authenticates with these credentials; CLI commands act as --user or the
default_user saved by 'user login --save'.`,
}

var userRegisterCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		u, err := auth.NewService(repo).Register(args[0], password)
		if err != nil {
			return fmt.Errorf("failed to register %s: %w", args[0], err)
		}

		color.Green("✓ Registered %s", u.Username)
		fmt.Printf("  %s\n", color.New(color.Faint).Sprint(u.ID.String()[:8]))
		return nil
	},
}

var userLoginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Check credentials, optionally saving the default user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		u, err := auth.NewService(repo).Login(args[0], password)
		if err != nil {
			return err
		}

		if userSave {
			cfg.DefaultUser = u.Username
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			color.Green("✓ Logged in as %s (saved as default user)", u.Username)
			return nil
		}

		color.Green("✓ Logged in as %s", u.Username)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := repo.ListUsers()
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		if len(users) == 0 {
			fmt.Println("No users registered.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, u := range users {
			fmt.Printf("%s %s %s\n",
				faint.Sprint(u.ID.String()[:8]),
				padRight(u.Username, 20),
				faint.Sprint(u.CreatedAt.Format("2006-01-02")))
		}
		return nil
	},
}

// readPassword returns --password, a no-echo terminal prompt, or one line of stdin.
func readPassword(prompt string) (string, error) {
	if userPassword != "" {
		return userPassword, nil
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	for _, c := range []*cobra.Command{userRegisterCmd, userLoginCmd} {
		c.Flags().StringVar(&userPassword, "password", "", "password (prompted when omitted)")
	}
	userLoginCmd.Flags().BoolVar(&userSave, "save", false, "save as default user in config")

	userCmd.AddCommand(userRegisterCmd)
	userCmd.AddCommand(userLoginCmd)
	userCmd.AddCommand(userListCmd)
	rootCmd.AddCommand(userCmd)
}
