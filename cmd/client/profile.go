package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/atinyakov/TodoKeeper/internal/validation"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(true)
		if err != nil {
			return err
		}
		u, err := c.Profile(cmd.Context())
		if err != nil {
			return err
		}
		phone := "-"
		if u.PhoneNumber != nil {
			phone = *u.PhoneNumber
		}
		tw := newTable()
		fmt.Fprintf(tw, "ID\t%d\n", u.ID)
		fmt.Fprintf(tw, "Username\t%s\n", u.Username)
		fmt.Fprintf(tw, "Name\t%s %s\n", u.FirstName, u.LastName)
		fmt.Fprintf(tw, "Email\t%s\n", u.Email)
		fmt.Fprintf(tw, "Phone\t%s\n", phone)
		fmt.Fprintf(tw, "Role\t%s\n", u.Role)
		return tw.Flush()
	},
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := readPassword(cmd, "Current password: ")
		if err != nil {
			return err
		}
		next, err := readPassword(cmd, "New password: ")
		if err != nil {
			return err
		}
		c, err := newClient(true)
		if err != nil {
			return err
		}
		if err := c.ChangePassword(cmd.Context(), validation.PasswordChange{CurrentPassword: current, NewPassword: next}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Password changed.")
		return nil
	},
}

var phoneCmd = &cobra.Command{
	Use:   "phone <number>",
	Short: "Change your phone number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := readPassword(cmd, "Current password: ")
		if err != nil {
			return err
		}
		c, err := newClient(true)
		if err != nil {
			return err
		}
		return c.ChangePhone(cmd.Context(), validation.PhoneChange{CurrentPassword: current, NewPhone: args[0]})
	},
}

var stdinReader = bufio.NewReader(os.Stdin)

// readPassword reads one line from stdin. Input is echoed; pipe it in for scripts.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := stdinReader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
