package main

import (
	"fmt"
	"os"

	"github.com/atinyakov/TodoKeeper/internal/client"
	"github.com/atinyakov/TodoKeeper/internal/validation"
	"github.com/spf13/cobra"
)

var (
	addDescription string
	addPriority    int
)

var todosCmd = &cobra.Command{
	Use:   "todos",
	Short: "Manage your todos",
}

var todoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your todos",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(true)
		if err != nil {
			return err
		}
		todos, err := c.ListTodos(cmd.Context())
		if err != nil {
			return err
		}
		if len(todos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No todos.")
			return nil
		}
		tw := newTable()
		fmt.Fprintln(tw, "ID\tDONE\tPRIO\tTITLE\tDESCRIPTION")
		for _, t := range todos {
			done := " "
			if t.Complete {
				done = "x"
			}
			fmt.Fprintf(tw, "%d\t[%s]\t%d\t%s\t%s\n", t.ID, done, t.Priority, t.Title, t.Description)
		}
		return tw.Flush()
	},
}

var todoAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a todo (prompts unless a title and --priority are given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in validation.TodoInput
		if len(args) == 1 && addPriority != 0 {
			in = validation.TodoInput{Title: args[0], Description: addDescription, Priority: addPriority}
		} else {
			var err error
			in, err = client.PromptTodo(os.Stdin, cmd.OutOrStdout())
			if err != nil {
				return err
			}
		}

		c, err := newClient(true)
		if err != nil {
			return err
		}
		t, err := c.CreateTodo(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created todo %d\n", t.ID)
		return nil
	},
}

var todoDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a todo complete",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := newClient(true)
		if err != nil {
			return err
		}
		t, err := c.GetTodo(cmd.Context(), id)
		if err != nil {
			return err
		}
		return c.UpdateTodo(cmd.Context(), id, validation.TodoInput{
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority,
			Complete:    true,
		})
	},
}

var todoRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		c, err := newClient(true)
		if err != nil {
			return err
		}
		return c.DeleteTodo(cmd.Context(), id)
	},
}
