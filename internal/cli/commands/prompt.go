package commands

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// Prompter asks the user for input. Commands only prompt when Interactive
// reports true; otherwise missing values are errors.
type Prompter interface {
	Interactive() bool
	Input(label string, validate func(string) error) (string, error)
	Password(label string) (string, error)
	Select(label string, items []string) (int, error)
}

// terminalPrompter prompts on the controlling terminal
type terminalPrompter struct{}

func (terminalPrompter) Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (terminalPrompter) Input(label string, validate func(string) error) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}
	value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("%s prompt cancelled: %w", label, err)
	}
	return value, nil
}

func (terminalPrompter) Password(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

func (terminalPrompter) Select(label string, items []string) (int, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "{{ . | green }}",
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("selection cancelled: %w", err)
	}
	return index, nil
}
