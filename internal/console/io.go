// SPDX-License-Identifier: MIT

// Package console implements the question-and-answer helper used by the
// interactive commands: prompts with defaults, validation and re-asking,
// confirmations, choices and styled status output.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// ErrAborted is returned when input ends before a valid answer was given
	ErrAborted = errors.New("input aborted")
	// ErrMissingValue is returned when a required question has no answer and no default
	ErrMissingValue = errors.New("a value is required")
)

// Validator checks an answer and returns its normalized form
type Validator func(string) (string, error)

// IO asks questions on an input stream and writes prompts and messages to an output stream
type IO struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool

	questionStyle lipgloss.Style
	defaultStyle  lipgloss.Style
	successStyle  lipgloss.Style
	commentStyle  lipgloss.Style
	errorStyle    lipgloss.Style
}

// New creates an IO. When interactive is false every question resolves to its default.
func New(in io.Reader, out io.Writer, interactive bool) *IO {
	renderer := lipgloss.NewRenderer(out)
	return &IO{
		in:            bufio.NewReader(in),
		out:           out,
		interactive:   interactive,
		questionStyle: renderer.NewStyle().Foreground(lipgloss.Color("2")),
		defaultStyle:  renderer.NewStyle().Foreground(lipgloss.Color("3")),
		successStyle:  renderer.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("2")),
		commentStyle:  renderer.NewStyle().Faint(true),
		errorStyle:    renderer.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1")),
	}
}

// Interactive reports whether questions read from the input stream
func (c *IO) Interactive() bool {
	return c.interactive
}

// Ask asks a question that requires a non-empty answer. An empty answer takes the default.
func (c *IO) Ask(question, def string, validate Validator) (string, error) {
	return c.ask(question, def, validate, false)
}

// AskEmpty asks a question whose answer may be left empty
func (c *IO) AskEmpty(question, def string, validate Validator) (string, error) {
	return c.ask(question, def, validate, true)
}

func (c *IO) ask(question, def string, validate Validator, allowEmpty bool) (string, error) {
	if !c.interactive {
		value, err := resolve(def, validate, allowEmpty)
		if err != nil {
			return "", fmt.Errorf("%s: %w", question, err)
		}
		return value, nil
	}

	for {
		c.prompt(question, def)

		line, err := c.readLine()
		if err != nil {
			return "", err
		}
		if line == "" {
			line = def
		}

		value, err := resolve(line, validate, allowEmpty)
		if err != nil {
			c.Error(err.Error())
			continue
		}
		return value, nil
	}
}

func resolve(value string, validate Validator, allowEmpty bool) (string, error) {
	if value == "" {
		if allowEmpty {
			return "", nil
		}
		return "", ErrMissingValue
	}
	if validate == nil {
		return value, nil
	}
	return validate(value)
}

// Confirm asks a yes/no question
func (c *IO) Confirm(question string, def bool) (bool, error) {
	if !c.interactive {
		return def, nil
	}

	hint := "yes"
	if !def {
		hint = "no"
	}

	for {
		c.prompt(question+" (yes/no)", hint)

		line, err := c.readLine()
		if err != nil {
			return false, err
		}

		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			c.Error(fmt.Sprintf("Please answer yes or no, got %q.", line))
		}
	}
}

// ChoiceNoList asks for one of the given choices without printing them up front
func (c *IO) ChoiceNoList(question string, choices []string, def string) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("%s: no choices available", question)
	}

	return c.Ask(question, def, func(answer string) (string, error) {
		if slices.Contains(choices, answer) {
			return answer, nil
		}
		return "", fmt.Errorf("Value %q is invalid. Available values: %s", answer, strings.Join(choices, ", "))
	})
}

// Comment writes a low-emphasis note
func (c *IO) Comment(message string) {
	fmt.Fprintln(c.out, c.commentStyle.Render(" // "+message))
}

// Success writes a success block
func (c *IO) Success(message string) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.successStyle.Render(" [OK] "+message+" "))
	fmt.Fprintln(c.out)
}

// Error writes an error block
func (c *IO) Error(message string) {
	fmt.Fprintln(c.out, c.errorStyle.Render(" [ERROR] "+message+" "))
}

// Writeln writes a plain line
func (c *IO) Writeln(message string) {
	fmt.Fprintln(c.out, message)
}

func (c *IO) prompt(question, def string) {
	text := " " + c.questionStyle.Render(question)
	if def != "" {
		text += " [" + c.defaultStyle.Render(def) + "]"
	}
	fmt.Fprintf(c.out, "%s:\n > ", text)
}

// readLine reads one trimmed line, returning ErrAborted once input is exhausted
func (c *IO) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out)
			return "", ErrAborted
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
