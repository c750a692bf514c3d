package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/naveenspark/moneta/pkg/domain"
)

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces to width runes, truncating when longer.
func padRight(s string, width int) string {
	s = truncStr(s, width)
	return s + strings.Repeat(" ", width-utf8.RuneCountInString(s))
}

// formatMoney renders an amount with two decimals and thousands separators.
func formatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}

// errText renders an error for a status line.
func errText(err error) string {
	if err == nil {
		return ""
	}
	return errorStyle.Render("error: " + err.Error())
}

// typeOptions lists type names for a choice field, in backend order.
func typeOptions(types []domain.Type) []string {
	opts := make([]string, len(types))
	for i, t := range types {
		opts[i] = string(t.Name)
	}
	return opts
}

// categoryOptions lists "none" followed by every category name.
func categoryOptions(categories []domain.Category) []string {
	return append([]string{"none"}, categoryNames(categories)...)
}

// categoryAt maps a categoryOptions index back to a category ID; 0 is none.
func categoryAt(categories []domain.Category, choice int) *int {
	if choice <= 0 || choice > len(categories) {
		return nil
	}
	id := categories[choice-1].ID
	return &id
}

// parseAmount reads a positive money amount, accepting a comma decimal mark.
func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not an amount", s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("amount must be greater than zero")
	}
	return v, nil
}

// firstProblem renders the first validation problem of err, or err itself.
func firstProblem(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		return verr.Fields[0].String()
	}
	return err.Error()
}
