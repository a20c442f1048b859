// Package ui provides UI components for interactive flows
package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/deployah-dev/activation/internal/activation"
)

// ErrAborted is returned when the user cancels a form.
var ErrAborted = errors.New("aborted by user")

// CreateInputGroup creates an input group for a form
func CreateInputGroup(title, placeholder, description string, validator func(string) error, value *string) *huh.Group {
	input := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Description(description).
		Value(value)

	if validator != nil {
		input.Validate(validator)
	}

	return huh.NewGroup(input)
}

// CreateStepGroup asks for the id, title and detail of a checklist step
func CreateStepGroup(idValidator func(string) error, titleValidator func(string) error, step *activation.Step) *huh.Group {
	return huh.NewGroup(
		huh.NewInput().
			Title("Step ID").
			Placeholder("connect-code-host").
			Description("Lowercase letters, digits, '-' and '_'").
			Validate(idValidator).
			Value(&step.ID),
		huh.NewInput().
			Title("Title").
			Placeholder("Connect a code host").
			Validate(titleValidator).
			Value(&step.Title),
		huh.NewText().
			Title("Detail").
			Description("Shown when the step is expanded. Supports templates like {{ .Title }}").
			Lines(3).
			Value(&step.Detail),
	)
}

// CreateConfirmGroup creates a confirm group for a form
func CreateConfirmGroup(title, description, affirmative, negative string, value *bool) *huh.Group {
	return huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative(affirmative).
			Negative(negative).
			Value(value),
	)
}

// CreateInputForm creates an input form
func CreateInputForm(title, placeholder, description string, validator func(string) error, value *string) *huh.Form {
	return huh.NewForm(CreateInputGroup(title, placeholder, description, validator, value))
}

// CreateConfirmForm creates a confirm form
func CreateConfirmForm(title, description, affirmative, negative string, value *bool) *huh.Form {
	return huh.NewForm(CreateConfirmGroup(title, description, affirmative, negative, value))
}

// CreateMultiSelectForm creates a multi-select form
func CreateMultiSelectForm(title, description string, options []huh.Option[string], value *[]string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(title).
				Description(description).
				Options(options...).
				Value(value),
		),
	)
}

// StepOptions lists steps as form options. Steps whose done state equals
// done are left out; the remaining ones are labelled with their title.
func StepOptions(steps []activation.Step, completion activation.Completion, done bool) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(steps))
	for _, step := range steps {
		if completion.Done(step.ID) == done {
			continue
		}
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", step.Title, step.ID), step.ID))
	}
	return options
}

// CollectWithForm runs form, mapping a user abort to ErrAborted
func CollectWithForm(form *huh.Form, errorMsg string) error {
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("%s: %w", errorMsg, err)
	}
	return nil
}
