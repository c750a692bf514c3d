package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEditRuneAddCharacters(t *testing.T) {
	tests := []struct {
		name  string
		start string
		key   string
		want  string
	}{
		{"append to empty", "", "a", "a"},
		{"append letter", "hel", "l", "hell"},
		{"append digit", "12", "3", "123"},
		{"append space", "rent", " ", "rent "},
		{"append at sign", "ada", "@", "ada@"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := editRune(tc.start, tc.key)
			if got != tc.want {
				t.Errorf("editRune(%q, %q) = %q, want %q", tc.start, tc.key, got, tc.want)
			}
		})
	}
}

func TestEditRuneBackspace(t *testing.T) {
	tests := []struct {
		name  string
		start string
		want  string
	}{
		{"backspace on single char", "a", ""},
		{"backspace on longer string", "hello", "hell"},
		{"backspace on empty does nothing", "", ""},
		{"backspace removes whole rune", "café", "caf"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := editRune(tc.start, "backspace")
			if got != tc.want {
				t.Errorf("editRune(%q, 'backspace') = %q, want %q", tc.start, got, tc.want)
			}
		})
	}
}

func TestEditRuneIgnoresNonPrintableKeys(t *testing.T) {
	for _, key := range []string{"enter", "esc", "up", "down", "left", "right", "ctrl+c", "ctrl+s", "tab", "shift+tab"} {
		t.Run(key, func(t *testing.T) {
			if got := editRune("hello", key); got != "hello" {
				t.Errorf("editRune(%q, %q) = %q, want unchanged", "hello", key, got)
			}
		})
	}
}

func TestEditRuneMaxInputLen(t *testing.T) {
	atLimit := strings.Repeat("a", maxInputLen)
	if got := editRune(atLimit, "b"); got != atLimit {
		t.Errorf("editRune at limit grew to %d runes", len([]rune(got)))
	}
	if got := editRune(atLimit, "backspace"); len(got) != maxInputLen-1 {
		t.Errorf("backspace at limit left %d runes, want %d", len(got), maxInputLen-1)
	}
}

func TestTruncateToHeightLimitsLines(t *testing.T) {
	result := truncateToHeight("line1\nline2\nline3\nline4\nline5\n", 3)
	if strings.Count(result, "\n") > 3 {
		t.Errorf("truncateToHeight kept %d lines, want <= 3", strings.Count(result, "\n"))
	}
	if strings.Contains(result, "line4") {
		t.Errorf("truncateToHeight result should not contain line4: %q", result)
	}
	if got := truncateToHeight("a\nb", 0); got != "a\nb" {
		t.Errorf("truncateToHeight with no limit = %q", got)
	}
}

func TestMask(t *testing.T) {
	if got := mask("pässword"); got != "••••••••" {
		t.Errorf("mask() = %q, want 8 bullets", got)
	}
	if got := mask(""); got != "" {
		t.Errorf("mask(\"\") = %q", got)
	}
}

func TestFormNavigationAndSubmit(t *testing.T) {
	f := newForm("test",
		textField("email", ""),
		choiceField("type", []string{"income", "expense"}),
	)

	for _, r := range "ada@example.com" {
		f, _ = f.update(keyRunes(string(r)))
	}
	if got := f.value("email"); got != "ada@example.com" {
		t.Errorf("email = %q", got)
	}

	f, _ = f.update(tea.KeyMsg{Type: tea.KeyTab})
	if f.focus != 1 {
		t.Fatalf("focus = %d after tab, want 1", f.focus)
	}

	f, _ = f.update(keyRunes("x"))
	if got := f.value("type"); got != "income" {
		t.Errorf("typing into a choice changed it to %q", got)
	}
	f, _ = f.update(tea.KeyMsg{Type: tea.KeyRight})
	if got := f.value("type"); got != "expense" {
		t.Errorf("type = %q after right, want expense", got)
	}
	f, _ = f.update(tea.KeyMsg{Type: tea.KeyRight})
	if f.choice("type") != 0 {
		t.Errorf("choice did not wrap, got %d", f.choice("type"))
	}

	var submit bool
	f, submit = f.update(tea.KeyMsg{Type: tea.KeyEnter})
	if !submit {
		t.Error("enter on the last field should submit")
	}

	f.focus = 0
	if _, submit = f.update(tea.KeyMsg{Type: tea.KeyEnter}); submit {
		t.Error("enter on the first field should move on, not submit")
	}
	if _, submit = f.update(tea.KeyMsg{Type: tea.KeyCtrlS}); !submit {
		t.Error("ctrl+s should submit from any field")
	}
}

func TestFormIgnoresKeysWhileSubmitting(t *testing.T) {
	f := newForm("test", textField("name", ""))
	f.submitting = true
	f, submit := f.update(keyRunes("a"))
	if submit || f.value("name") != "" {
		t.Error("form accepted input while submitting")
	}
	if !strings.Contains(f.View(), "working...") {
		t.Errorf("submitting form view = %q", f.View())
	}
}

func TestFormMasksSecrets(t *testing.T) {
	f := newForm("test", secretField("password"))
	f.fields[0].value = "hunter22"
	if strings.Contains(f.View(), "hunter22") {
		t.Error("secret field rendered in clear")
	}
}

func TestEditRuneClearLine(t *testing.T) {
	if got := editRune("secret", "ctrl+u"); got != "" {
		t.Errorf("editRune ctrl+u = %q, want empty", got)
	}
}
