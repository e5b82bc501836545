// cmd/shelfwise/auth.go
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vasujain275/shelfwise-sub000/internal/api"
)

// readPassword securely reads a password with masking
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

func readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return "", scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func newLoginCmd(a *app) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if username == "" {
				if username, err = readLine("Username: "); err != nil {
					return err
				}
			}
			password, err := readPassword("Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			tokens, err := a.client.Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login failed: %s", api.UserMessage(err))
			}
			if err := saveToken(tokens.AccessToken); err != nil {
				return fmt.Errorf("signed in but failed to store token: %w", err)
			}
			a.session.InspectToken(tokens.AccessToken)

			if err := a.session.Initialize(cmd.Context()); err != nil {
				return err
			}
			if profile, ok := a.session.Profile(); ok {
				fmt.Printf("Signed in as %s (%s)\n", profile.FullName, profile.UserRole)
			} else {
				fmt.Println("Signed in.")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "login username (employee id)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := a.session.Logout(cmd.Context())
			clearToken()
			if err != nil {
				fmt.Println("Signed out locally; the server session could not be invalidated.")
				return nil
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Initialize(cmd.Context()); err != nil {
				return err
			}
			profile, ok := a.session.Profile()
			if !ok {
				fmt.Println("Not signed in.")
				return nil
			}
			fmt.Printf("%s <%s>\n", profile.FullName, profile.Email)
			fmt.Printf("Employee ID:  %s\n", profile.EmployeeID)
			fmt.Printf("Role:         %s\n", profile.UserRole)
			fmt.Printf("Open loans:   %d\n", profile.CurrentBorrowedBooksCount)
			if expiry, ok := a.session.TokenExpiry(); ok {
				fmt.Printf("Session ends: %s\n", expiry.Local().Format("Jan 02, 2006 15:04"))
			}
			return nil
		},
	}
}
