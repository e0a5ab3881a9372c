package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/TodoKeeper/internal/validation"
)

// PromptTodo reads title, description and priority line by line from in,
// writing prompts to out. An empty priority defaults to 3.
func PromptTodo(in io.Reader, out io.Writer) (validation.TodoInput, error) {
	scanner := bufio.NewScanner(in)
	read := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	var t validation.TodoInput
	var err error
	if t.Title, err = read("Title: "); err != nil {
		return t, err
	}
	if t.Description, err = read("Description: "); err != nil {
		return t, err
	}
	raw, err := read("Priority (1-5) [3]: ")
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return t, err
	}
	if raw == "" {
		t.Priority = 3
	} else if t.Priority, err = strconv.Atoi(raw); err != nil {
		return t, fmt.Errorf("priority must be a number: %w", err)
	}

	if err := validation.ValidateTodo(&t); err != nil {
		return t, err
	}
	return t, nil
}
