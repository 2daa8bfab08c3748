package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation rule patterns
var (
	// Email validation pattern, applied to the lowercased address
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,24}$`

	// Club slugs are lowercase words joined by single hyphens
	SlugPattern = `^[a-z0-9]+(?:-[a-z0-9]+)*$`

	// Name validation min/max length, in characters
	NameMinLength = 2
	NameMaxLength = 200
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
	Slug  *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
	Slug:  regexp.MustCompile(SlugPattern),
}

// StringValidation checks one string value against a set of rules
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation. Surrounding whitespace
// is ignored.
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    strings.TrimSpace(value),
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return !v.Required
	}

	length := utf8.RuneCountInString(v.Value)
	if v.MinLen > 0 && length < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && length > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}
	return true
}

// IsValidEmail reports whether email is a well-formed address
func IsValidEmail(email string) bool {
	return NewStringValidation(strings.ToLower(email)).
		WithMaxLength(255).
		WithPattern(CompiledPatterns.Email).
		Validate()
}

// IsValidSlug reports whether slug is a well-formed club slug
func IsValidSlug(slug string) bool {
	return NewStringValidation(slug).
		WithMaxLength(100).
		WithPattern(CompiledPatterns.Slug).
		Validate()
}

// IsValidName reports whether name is a plausible person or club name
func IsValidName(name string) bool {
	return NewStringValidation(name).
		WithMinLength(NameMinLength).
		WithMaxLength(NameMaxLength).
		Validate()
}
