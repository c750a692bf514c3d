package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/naveenspark/moneta/pkg/domain"
)

// anyOptions lists "any" followed by names; index 0 means no restriction.
func anyOptions(names []string) []string {
	return append([]string{"any"}, names...)
}

func categoryNames(categories []domain.Category) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return names
}

// typeIndex returns the position of type id in types, or 0.
func typeIndex(types []domain.Type, id int) int {
	for i, t := range types {
		if t.ID == id {
			return i
		}
	}
	return 0
}

// categoryChoice is the inverse of categoryAt.
func categoryChoice(categories []domain.Category, id *int) int {
	if id == nil {
		return 0
	}
	for i, c := range categories {
		if c.ID == *id {
			return i + 1
		}
	}
	return 0
}

// firstTypeChoice picks the one type a filter form can show, as an anyOptions index.
func firstTypeChoice(types []domain.Type, ids []int) int {
	if len(ids) == 0 {
		return 0
	}
	for i, t := range types {
		if t.ID == ids[0] {
			return i + 1
		}
	}
	return 0
}

func firstCategoryChoice(categories []domain.Category, ids []int) int {
	if len(ids) == 0 {
		return 0
	}
	return categoryChoice(categories, &ids[0])
}

func idsAt(choice int, ids func(int) int, n int) []int {
	if choice <= 0 || choice > n {
		return nil
	}
	return []int{ids(choice - 1)}
}

func dateText(d *domain.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func numberText(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func firstText(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// optionalDate parses a date field left empty to mean unset.
func optionalDate(label, s string) (*domain.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%s must look like 2025-01-31", label)
	}
	return &d, nil
}

// optionalNumber parses a number field left empty to mean unset.
func optionalNumber(label, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", label, s)
	}
	return &v, nil
}

func checkRange(from, to string, lo, hi *float64) error {
	if lo != nil && hi != nil && *lo > *hi {
		return fmt.Errorf("%s must not exceed %s", from, to)
	}
	return nil
}

func checkDates(from, to string, lo, hi *domain.Date) error {
	if lo != nil && hi != nil && hi.Before(*lo) {
		return fmt.Errorf("%s must not be after %s", from, to)
	}
	return nil
}

func withValue(f formField, value string) formField {
	f.value = value
	return f
}

func withChoice(f formField, choice int) formField {
	if choice >= 0 && choice < len(f.options) {
		f.choice = choice
	}
	return f
}

// -- transactions --

func transactionFilterForm(types []domain.Type, categories []domain.Category, f domain.TransactionFilters) formModel {
	return newForm("Filter transactions",
		withValue(textField("date from", "YYYY-MM-DD"), dateText(f.DateAfter)),
		withValue(textField("date to", "YYYY-MM-DD"), dateText(f.DateBefore)),
		withChoice(choiceField("type", anyOptions(typeOptions(types))), firstTypeChoice(types, f.TypeIDs)),
		withChoice(choiceField("category", anyOptions(categoryNames(categories))), firstCategoryChoice(categories, f.CategoryIDs)),
		withValue(textField("value from", "0.00"), numberText(f.ValueAbove)),
		withValue(textField("value to", "0.00"), numberText(f.ValueBelow)),
		withValue(textField("comment", "contains"), firstText(f.Comments)),
	)
}

func transactionFiltersFromForm(form formModel, types []domain.Type, categories []domain.Category) (domain.TransactionFilters, error) {
	var f domain.TransactionFilters
	var err error
	if f.DateAfter, err = optionalDate("date from", form.value("date from")); err != nil {
		return f, err
	}
	if f.DateBefore, err = optionalDate("date to", form.value("date to")); err != nil {
		return f, err
	}
	if err := checkDates("date from", "date to", f.DateAfter, f.DateBefore); err != nil {
		return f, err
	}
	if f.ValueAbove, err = optionalNumber("value from", form.value("value from")); err != nil {
		return f, err
	}
	if f.ValueBelow, err = optionalNumber("value to", form.value("value to")); err != nil {
		return f, err
	}
	if err := checkRange("value from", "value to", f.ValueAbove, f.ValueBelow); err != nil {
		return f, err
	}
	f.TypeIDs = idsAt(form.choice("type"), func(i int) int { return types[i].ID }, len(types))
	f.CategoryIDs = idsAt(form.choice("category"), func(i int) int { return categories[i].ID }, len(categories))
	if c := form.value("comment"); c != "" {
		f.Comments = []string{c}
	}
	return f, nil
}

// transactionFilterLabel describes the active filters, or "all".
func transactionFilterLabel(f domain.TransactionFilters, types []domain.Type, categories []domain.Category) string {
	var parts []string
	if len(f.TypeIDs) > 0 {
		parts = append(parts, idName(types, f.TypeIDs[0]))
	}
	if len(f.CategoryIDs) > 0 {
		parts = append(parts, domain.CategoryNames(categories)[f.CategoryIDs[0]])
	}
	parts = appendRange(parts, "date", dateText(f.DateAfter), dateText(f.DateBefore))
	parts = appendRange(parts, "value", numberText(f.ValueAbove), numberText(f.ValueBelow))
	if c := firstText(f.Comments); c != "" {
		parts = append(parts, fmt.Sprintf("%q", c))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ", ")
}

// -- goals --

func goalFilterForm(types []domain.Type, categories []domain.Category, f domain.GoalFilters) formModel {
	return newForm("Filter goals",
		withValue(textField("starts from", "YYYY-MM-DD"), dateText(f.StartDateAfter)),
		withValue(textField("starts to", "YYYY-MM-DD"), dateText(f.StartDateBefore)),
		withValue(textField("ends from", "YYYY-MM-DD"), dateText(f.EndDateAfter)),
		withValue(textField("ends to", "YYYY-MM-DD"), dateText(f.EndDateBefore)),
		withChoice(choiceField("type", anyOptions(typeOptions(types))), firstTypeChoice(types, f.TypeIDs)),
		withChoice(choiceField("category", anyOptions(categoryNames(categories))), firstCategoryChoice(categories, f.CategoryIDs)),
		withValue(textField("target from", "0.00"), numberText(f.TargetAbove)),
		withValue(textField("target to", "0.00"), numberText(f.TargetBelow)),
		withValue(textField("name", "contains"), firstText(f.Names)),
	)
}

func goalFiltersFromForm(form formModel, types []domain.Type, categories []domain.Category) (domain.GoalFilters, error) {
	var f domain.GoalFilters
	dates := []struct {
		label string
		dst   **domain.Date
	}{
		{"starts from", &f.StartDateAfter},
		{"starts to", &f.StartDateBefore},
		{"ends from", &f.EndDateAfter},
		{"ends to", &f.EndDateBefore},
	}
	for _, d := range dates {
		v, err := optionalDate(d.label, form.value(d.label))
		if err != nil {
			return f, err
		}
		*d.dst = v
	}
	if err := checkDates("starts from", "starts to", f.StartDateAfter, f.StartDateBefore); err != nil {
		return f, err
	}
	if err := checkDates("ends from", "ends to", f.EndDateAfter, f.EndDateBefore); err != nil {
		return f, err
	}

	var err error
	if f.TargetAbove, err = optionalNumber("target from", form.value("target from")); err != nil {
		return f, err
	}
	if f.TargetBelow, err = optionalNumber("target to", form.value("target to")); err != nil {
		return f, err
	}
	if err := checkRange("target from", "target to", f.TargetAbove, f.TargetBelow); err != nil {
		return f, err
	}
	f.TypeIDs = idsAt(form.choice("type"), func(i int) int { return types[i].ID }, len(types))
	f.CategoryIDs = idsAt(form.choice("category"), func(i int) int { return categories[i].ID }, len(categories))
	if n := form.value("name"); n != "" {
		f.Names = []string{n}
	}
	return f, nil
}

func goalFilterLabel(f domain.GoalFilters, types []domain.Type, categories []domain.Category) string {
	var parts []string
	if len(f.TypeIDs) > 0 {
		parts = append(parts, idName(types, f.TypeIDs[0]))
	}
	if len(f.CategoryIDs) > 0 {
		parts = append(parts, domain.CategoryNames(categories)[f.CategoryIDs[0]])
	}
	parts = appendRange(parts, "start", dateText(f.StartDateAfter), dateText(f.StartDateBefore))
	parts = appendRange(parts, "end", dateText(f.EndDateAfter), dateText(f.EndDateBefore))
	parts = appendRange(parts, "target", numberText(f.TargetAbove), numberText(f.TargetBelow))
	if n := firstText(f.Names); n != "" {
		parts = append(parts, fmt.Sprintf("%q", n))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ", ")
}

func idName(types []domain.Type, id int) string {
	if name, ok := domain.TypeNames(types)[id]; ok {
		return string(name)
	}
	return "?"
}

func appendRange(parts []string, label, from, to string) []string {
	switch {
	case from == "" && to == "":
		return parts
	case to == "":
		return append(parts, label+" > "+from)
	case from == "":
		return append(parts, label+" < "+to)
	}
	return append(parts, label+" "+from+" .. "+to)
}
