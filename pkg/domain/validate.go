package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(f reflect.Value) any {
			if d, ok := f.Interface().(Date); ok {
				return d.Time
			}
			return nil
		}, Date{})
		v.RegisterStructValidation(validateGoalWindow, GoalInput{})
		validate = v
	})
	return validate
}

func validateGoalWindow(sl validator.StructLevel) {
	g := sl.Current().Interface().(GoalInput)
	if g.StartDate.IsZero() || g.EndDate.IsZero() {
		return
	}
	if !g.EndDate.After(g.StartDate) {
		sl.ReportError(g.EndDate, "end_date", "EndDate", "after_start", "")
	}
}

// ValidationError lists the fields of a payload that failed validation.
type ValidationError struct {
	Fields []FieldProblem
}

// FieldProblem is one failed rule on one field.
type FieldProblem struct {
	Field string
	Rule  string
	Param string
}

func (p FieldProblem) String() string {
	switch p.Rule {
	case "required":
		return p.Field + " is required"
	case "email":
		return p.Field + " must be an email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", p.Field, p.Param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", p.Field, p.Param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", p.Field, p.Param)
	case "after_start":
		return p.Field + " must be later than start_date"
	default:
		return fmt.Sprintf("%s failed %s", p.Field, p.Rule)
	}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.String()
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// Validate checks a payload against its struct tags.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("domain.Validate: %w", err)
	}
	out := &ValidationError{Fields: make([]FieldProblem, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldProblem{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}
