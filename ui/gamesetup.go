package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// SetupPrompt is the input line used to answer the setup questions and the
// tie-breaker question.
type SetupPrompt struct {
	field    *tview.InputField
	onSubmit func(string)
}

// NewSetupPrompt creates an input line that hands each entered line to onSubmit.
func NewSetupPrompt(colors Colors, onSubmit func(string)) *SetupPrompt {
	s := &SetupPrompt{
		field:    tview.NewInputField(),
		onSubmit: onSubmit,
	}
	s.field.SetLabelColor(colors.Label)
	s.field.SetFieldBackgroundColor(tcell.PaletteColor(238))
	s.field.SetFieldTextColor(colors.Title)
	s.field.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := s.field.GetText()
		s.field.SetText("")
		s.field.SetLabel("")
		s.onSubmit(text)
	})
	return s
}

// Ask shows the question as the field label and clears any previous answer.
func (s *SetupPrompt) Ask(question string) {
	s.field.SetLabel(question)
	s.field.SetText("")
}

// Field returns the underlying tview component.
func (s *SetupPrompt) Field() *tview.InputField {
	return s.field
}
