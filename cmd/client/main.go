// Package main implements the TodoKeeper command-line client.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/atinyakov/TodoKeeper/internal/client"
	"github.com/spf13/cobra"
)

var (
	version   string
	buildDate string
)

var (
	baseURL     string
	caFile      string
	sessionPath string
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "todokeeper",
	Short:        "TodoKeeper client",
	Version:      cmp.Or(version, "N/A") + " (built " + cmp.Or(buildDate, "N/A") + ")",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", cmp.Or(os.Getenv("TODOKEEPER_URL"), "http://localhost:8080"), "server base URL")
	rootCmd.PersistentFlags().StringVar(&caFile, "ca", "", "CA certificate for a self-signed server")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", client.DefaultSessionPath(), "session file")

	registerCmd.Flags().StringVar(&regEmail, "email", "", "email address")
	registerCmd.Flags().StringVar(&regFirst, "first-name", "", "first name")
	registerCmd.Flags().StringVar(&regLast, "last-name", "", "last name")
	registerCmd.Flags().StringVar(&regRole, "role", "", "role (user or admin)")

	todoAddCmd.Flags().StringVar(&addDescription, "description", "", "todo description")
	todoAddCmd.Flags().IntVarP(&addPriority, "priority", "p", 0, "priority 1-5 (prompts when unset)")

	todosCmd.AddCommand(todoListCmd, todoAddCmd, todoDoneCmd, todoRmCmd)
	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, todosCmd, profileCmd, passwdCmd, phoneCmd)
}

// newClient builds an API client, attaching the saved token when authed is set.
func newClient(authed bool) (*client.Client, error) {
	hc, err := client.NewHTTPClient(caFile)
	if err != nil {
		return nil, err
	}
	c := client.New(baseURL, hc)
	if !authed {
		return c, nil
	}

	s, err := client.LoadSession(sessionPath)
	if err != nil {
		return nil, fmt.Errorf("%w: run `todokeeper login` first", err)
	}
	if s.BaseURL != "" && !cmdFlagChanged("url") {
		c.BaseURL = s.BaseURL
	}
	c.Token = s.Token
	return c, nil
}

func cmdFlagChanged(name string) bool {
	f := rootCmd.PersistentFlags().Lookup(name)
	return f != nil && f.Changed
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid todo id %q", arg)
	}
	return id, nil
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}
