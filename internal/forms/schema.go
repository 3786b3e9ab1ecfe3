// Package forms declares the input schema for each route as data and
// validates submissions with a pure function. Handlers re-render forms with
// the returned field errors; nothing here touches storage or the session.
package forms

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"expensesheet/internal/core"
)

type RuleKind int

const (
	Required RuleKind = iota
	Email
	Decimal
	DateISO
	MaxLen
	MinLen
)

// Rule is one declarative constraint on a field.
type Rule struct {
	Kind RuleKind
	N    int // length bound for MaxLen/MinLen
}

// Field names a form input and lists its rules in evaluation order.
type Field struct {
	Name  string
	Label string
	Rules []Rule
}

// Schema is the full declared input of one route.
type Schema struct {
	Name   string
	Fields []Field
}

// FieldError reports a single failed constraint.
type FieldError struct {
	Field   string
	Message string
}

// Result carries the sanitized values and any field errors.
type Result struct {
	Values map[string]string
	Errors []FieldError
}

// OK reports whether validation passed.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// ErrorFor returns the first error message for a field, or "".
func (r Result) ErrorFor(name string) string {
	for _, e := range r.Errors {
		if e.Field == name {
			return e.Message
		}
	}
	return ""
}

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate applies a schema to submitted form values. It is a pure
// function: same input, same result, no side effects.
func Validate(form url.Values, s Schema) Result {
	res := Result{Values: make(map[string]string, len(s.Fields))}
	for _, f := range s.Fields {
		v := sanitize(form.Get(f.Name))
		res.Values[f.Name] = v
		for _, rule := range f.Rules {
			if msg := check(v, f, rule); msg != "" {
				res.Errors = append(res.Errors, FieldError{Field: f.Name, Message: msg})
				break
			}
		}
	}
	return res
}

func check(v string, f Field, r Rule) string {
	switch r.Kind {
	case Required:
		if v == "" {
			return f.Label + " is required"
		}
	case Email:
		if v != "" && !emailRe.MatchString(v) {
			return f.Label + " must be a valid email address"
		}
	case Decimal:
		if v != "" {
			if _, err := core.ParseDecimalToCents(v); err != nil {
				return f.Label + " must be a positive amount like 12.34"
			}
		}
	case DateISO:
		if v != "" {
			if _, err := core.ParseDate(v); err != nil {
				return f.Label + " must be a date in YYYY-MM-DD format"
			}
		}
	case MaxLen:
		if len(v) > r.N {
			return f.Label + " must be at most " + strconv.Itoa(r.N) + " characters"
		}
	case MinLen:
		if v != "" && len(v) < r.N {
			return f.Label + " must be at least " + strconv.Itoa(r.N) + " characters"
		}
	}
	return ""
}

// sanitize trims whitespace and strips control characters except
// tab/newline/carriage return.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
