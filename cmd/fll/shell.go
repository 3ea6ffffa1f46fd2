package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nobletooth/fll/pkg/list"
)

var errInvalidArgument = errors.New("invalid argument")

// shell is a line oriented command loop over a single list of strings.
type shell struct {
	list    *list.CursorList[string]
	scanner *bufio.Scanner
	out     io.Writer
}

func newShell(in io.Reader, out io.Writer) *shell {
	return &shell{list: list.New[string](), scanner: bufio.NewScanner(in), out: out}
}

// prompt writes `msg` and returns the next input line. Returns io.EOF once the input is drained.
func (s *shell) prompt(msg string) (string, error) {
	if _, err := io.WriteString(s.out, msg); err != nil {
		return "", err
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.scanner.Text()), nil
}

func (s *shell) promptIndex() (int, error) {
	line, err := s.prompt("enter index: ")
	if err != nil {
		return 0, err
	}
	index, err := strconv.Atoi(line)
	if err != nil {
		return 0, errInvalidArgument
	}
	return index, nil
}

// execute runs a single command and returns what should be printed for it.
func (s *shell) execute(command string) (string, error) {
	switch command {
	case "ab", "af", "al":
		item, err := s.prompt("enter item: ")
		if err != nil {
			return "", err
		}
		switch command {
		case "ab":
			s.list.PushBack(item)
		case "af":
			s.list.PushFront(item)
		default:
			return "", s.list.PushAtCursor(item)
		}
		return "", nil
	case "g":
		index, err := s.promptIndex()
		if err != nil {
			return "", err
		}
		value, err := s.list.Get(index)
		if err != nil {
			return "", err
		}
		return "Value: " + value, nil
	case "l":
		value, err := s.list.CursorValue()
		if err != nil {
			return "", err
		}
		index, err := s.list.CursorIndex()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Cursor: %s at index %d", value, index), nil
	case "n":
		return fmt.Sprintf("Number of elements: %d", s.list.Len()), nil
	case "rb":
		_, err := s.list.PopBack()
		return "", err
	case "rf":
		_, err := s.list.PopFront()
		return "", err
	case "rl":
		_, err := s.list.PopAtCursor()
		return "", err
	case "s":
		index, err := s.promptIndex()
		if err != nil {
			return "", err
		}
		item, err := s.prompt("enter item: ")
		if err != nil {
			return "", err
		}
		return "", s.list.Set(index, item)
	default:
		return "Invalid command", nil
	}
}

// run loops over commands until `q` or the end of the input.
func (s *shell) run() error {
	for {
		if _, err := fmt.Fprintf(s.out, "List: %s\n", s.list); err != nil {
			return err
		}
		command, err := s.prompt("enter command: ")
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
		if command == "q" {
			return nil
		}

		result, err := s.execute(command)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, errInvalidArgument):
			result = "Invalid argument entered"
		case errors.Is(err, list.ErrOutOfRange):
			result = err.Error()
		case err != nil:
			slog.Error("Shell command failed.", "command", command, "error", err)
			return err
		}
		if _, err := fmt.Fprintf(s.out, "%s\n\n", result); err != nil {
			return err
		}
	}
}
