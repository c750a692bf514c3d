package tui

import (
	"strings"
	"unicode/utf8"
)

// maxInputLen caps form fields, in runes.
const maxInputLen = 200

// editRune applies one keystroke to a field value: backspace drops the last
// rune, ctrl+u clears the field, a single printable rune is appended while
// the value is under maxInputLen. Any other key leaves the value alone.
func editRune(text, key string) string {
	switch {
	case key == "backspace":
		_, size := utf8.DecodeLastRuneInString(text)
		return text[:len(text)-size]
	case key == "ctrl+u":
		return ""
	case utf8.RuneCountInString(key) != 1:
		return text
	case utf8.RuneCountInString(text) >= maxInputLen:
		return text
	default:
		return text + key
	}
}

// truncateToHeight keeps at most maxLines lines of s. maxLines <= 0 keeps everything.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	parts := strings.SplitAfterN(s, "\n", maxLines+1)
	if len(parts) <= maxLines {
		return s
	}
	return strings.Join(parts[:maxLines], "")
}

// mask hides a secret, one bullet per rune.
func mask(s string) string {
	return strings.Repeat("•", utf8.RuneCountInString(s))
}
