package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// formField is one input of a form. Fields with options are choices cycled
// with left/right instead of typed.
type formField struct {
	label       string
	value       string
	placeholder string
	secret      bool
	options     []string
	choice      int
}

func textField(label, placeholder string) formField {
	return formField{label: label, placeholder: placeholder}
}

func secretField(label string) formField {
	return formField{label: label, secret: true}
}

func choiceField(label string, options []string) formField {
	return formField{label: label, options: options}
}

// text returns the typed value, or the selected option.
func (f formField) text() string {
	if len(f.options) > 0 {
		return f.options[f.choice]
	}
	return strings.TrimSpace(f.value)
}

// formModel is the shared keyboard form used by login, register and the add
// dialogs.
type formModel struct {
	title      string
	fields     []formField
	focus      int
	status     string
	submitting bool
}

func newForm(title string, fields ...formField) formModel {
	return formModel{title: title, fields: fields}
}

// value returns the text of the field labelled label.
func (f formModel) value(label string) string {
	for _, fld := range f.fields {
		if fld.label == label {
			return fld.text()
		}
	}
	return ""
}

// choice returns the selected option index of the field labelled label.
func (f formModel) choice(label string) int {
	for _, fld := range f.fields {
		if fld.label == label {
			return fld.choice
		}
	}
	return 0
}

// update applies a key and reports whether the form asks to be submitted.
func (f formModel) update(msg tea.KeyMsg) (formModel, bool) {
	if f.submitting || len(f.fields) == 0 {
		return f, false
	}
	f.status = ""
	fld := &f.fields[f.focus]

	switch msg.String() {
	case "ctrl+s":
		return f, true
	case "enter":
		if f.focus == len(f.fields)-1 {
			return f, true
		}
		f.focus++
	case "tab", "down":
		f.focus = (f.focus + 1) % len(f.fields)
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
	case "left":
		if n := len(fld.options); n > 0 {
			fld.choice = (fld.choice - 1 + n) % n
		}
	case "right":
		if n := len(fld.options); n > 0 {
			fld.choice = (fld.choice + 1) % n
		}
	default:
		if len(fld.options) == 0 {
			fld.value = editRune(fld.value, msg.String())
		}
	}
	return f, false
}

// fail ends a submission with a status message.
func (f formModel) fail(status string) formModel {
	f.submitting = false
	f.status = status
	return f
}

func (f formModel) View() string {
	var b strings.Builder
	if f.title != "" {
		fmt.Fprintf(&b, "\n %s\n\n", sectionHeaderStyle.Render(f.title))
	}

	width := 0
	for _, fld := range f.fields {
		width = max(width, len(fld.label))
	}

	for i, fld := range f.fields {
		cursor := " "
		labelStyle := metaStyle
		if i == f.focus {
			cursor = accentStyle.Render("▸")
			labelStyle = selectedStyle
		}

		var value string
		switch {
		case len(fld.options) > 0:
			value = "‹ " + normalStyle.Render(fld.options[fld.choice]) + " ›"
		case fld.value == "" && i != f.focus:
			value = inputPlaceholderStyle.Render(fld.placeholder)
		case fld.secret:
			value = normalStyle.Render(mask(fld.value))
		default:
			value = normalStyle.Render(fld.value)
		}
		if i == f.focus && len(fld.options) == 0 {
			value += accentStyle.Render("█")
		}
		fmt.Fprintf(&b, " %s %s  %s\n", cursor, labelStyle.Render(padRight(fld.label, width)), value)
	}

	b.WriteString("\n")
	switch {
	case f.submitting:
		b.WriteString(" " + dimStyle.Render("working..."))
	case f.status != "":
		b.WriteString(" " + errorStyle.Render(f.status))
	}
	return b.String()
}

func (f formModel) helpKeys() string {
	return helpBar(
		[2]string{"tab", "next"},
		[2]string{"←/→", "choose"},
		[2]string{"enter", "submit"},
		[2]string{"esc", "cancel"},
	)
}
