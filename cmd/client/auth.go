package main

import (
	"fmt"

	"github.com/atinyakov/TodoKeeper/internal/client"
	"github.com/atinyakov/TodoKeeper/internal/validation"
	"github.com/spf13/cobra"
)

var (
	regEmail string
	regFirst string
	regLast  string
	regRole  string
)

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pw, err := readPassword(cmd, "Password: ")
		if err != nil {
			return err
		}
		c, err := newClient(false)
		if err != nil {
			return err
		}
		u, err := c.Register(cmd.Context(), validation.Registration{
			Username:  args[0],
			Email:     regEmail,
			FirstName: regFirst,
			LastName:  regLast,
			Password:  pw,
			Role:      regRole,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (id %d, role %s)\n", u.Username, u.ID, u.Role)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and store the access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pw, err := readPassword(cmd, "Password: ")
		if err != nil {
			return err
		}
		c, err := newClient(false)
		if err != nil {
			return err
		}
		tok, err := c.Login(cmd.Context(), args[0], pw)
		if err != nil {
			return err
		}
		s := &client.Session{BaseURL: c.BaseURL, Username: args[0], Token: tok}
		if err := s.Save(sessionPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", args[0])
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return client.ClearSession(sessionPath)
	},
}
