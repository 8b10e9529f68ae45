package workflow

import (
	"fmt"
	"strings"
)

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FieldErrors collects rejected fields in submission order. Fields returns
// a map keyed by field name and Flat a plain message list for summaries.
type FieldErrors struct {
	errs []FieldError
}

// Error lets a non-empty FieldErrors travel as a data error from
// services to the HTTP layer.
func (e *FieldErrors) Error() string {
	return "validation error"
}

// Add appends a field error.
func (e *FieldErrors) Add(field, code, message string) {
	e.errs = append(e.errs, FieldError{Field: field, Code: code, Message: message})
}

// Empty reports whether no field was rejected.
func (e *FieldErrors) Empty() bool {
	return e == nil || len(e.errs) == 0
}

// All returns the errors in submission order.
func (e *FieldErrors) All() []FieldError {
	if e == nil {
		return nil
	}
	return e.errs
}

// Fields returns a field → message map. The first error per field wins.
func (e *FieldErrors) Fields() map[string]string {
	out := map[string]string{}
	if e == nil {
		return out
	}
	for _, fe := range e.errs {
		if _, ok := out[fe.Field]; !ok {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

// Flat returns the messages in submission order.
func (e *FieldErrors) Flat() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.errs))
	for _, fe := range e.errs {
		out = append(out, fe.Message)
	}
	return out
}

// Rule validates one aspect of a draft value.
type Rule[T any] func(value T, errs *FieldErrors)

// Validate applies every rule and returns the collected errors.
func Validate[T any](value T, rules ...Rule[T]) *FieldErrors {
	errs := &FieldErrors{}
	for _, rule := range rules {
		rule(value, errs)
	}
	return errs
}

// Required rejects blank values after trimming.
func Required[T any](field string, get func(T) string) Rule[T] {
	return func(value T, errs *FieldErrors) {
		if strings.TrimSpace(get(value)) == "" {
			errs.Add(field, "required", fmt.Sprintf("%s is required", field))
		}
	}
}

// Positive rejects zero and negative quantities.
func Positive[T any](field string, get func(T) float64) Rule[T] {
	return func(value T, errs *FieldErrors) {
		if get(value) <= 0 {
			errs.Add(field, "not_positive", fmt.Sprintf("%s must be greater than zero", field))
		}
	}
}

// NonNegative rejects negative quantities only.
func NonNegative[T any](field string, get func(T) float64) Rule[T] {
	return func(value T, errs *FieldErrors) {
		if get(value) < 0 {
			errs.Add(field, "negative", fmt.Sprintf("%s must not be negative", field))
		}
	}
}

// NumberIn rejects values outside the inclusive range.
func NumberIn[T any](field string, get func(T) float64, min, max float64) Rule[T] {
	return func(value T, errs *FieldErrors) {
		if v := get(value); v < min || v > max {
			errs.Add(field, "out_of_range", fmt.Sprintf("%s must be between %v and %v", field, min, max))
		}
	}
}

// NoDuplicate rejects a key already present in existing, comparing
// case-insensitively on trimmed values.
func NoDuplicate[T any](field string, get func(T) string, existing []string) Rule[T] {
	return func(value T, errs *FieldErrors) {
		key := NormalizeKey(get(value))
		if key == "" {
			return
		}
		for _, have := range existing {
			if NormalizeKey(have) == key {
				errs.Add(field, "duplicate", fmt.Sprintf("%s already exists", field))
				return
			}
		}
	}
}

// NormalizeKey lowercases a trimmed natural key for comparison.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
