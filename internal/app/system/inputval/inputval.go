// Package inputval provides form input validation using waffle/pantry/validate.
//
// This package wraps pantry/validate to provide a convenient interface for
// validating HTTP form inputs with struct tags. Define an input struct with
// validate tags, populate it from form values, and call Validate to get
// user-friendly error messages.
//
// Example:
//
//	type RenameInput struct {
//	    Path    string `validate:"required,relpath" label:"Path"`
//	    NewName string `validate:"required,max=255" label:"New name"`
//	}
//
//	if res := inputval.Validate(input); res.HasErrors() {
//	    // res.First() gives the first error message for display
//	    redirectWithError(w, r, res.First())
//	    return
//	}
package inputval

import (
	"reflect"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dalemusser/inclouds/internal/app/system/navstate"
	"github.com/dalemusser/inclouds/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
)

// Result holds validation results with user-friendly messages.
type Result struct {
	Errors []FieldError
}

// FieldError represents a validation error for a single field.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first error message, or empty string if no errors.
func (r *Result) First() string {
	if len(r.Errors) > 0 {
		return r.Errors[0].Message
	}
	return ""
}

// All returns all error messages joined with "; ".
func (r *Result) All() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// customValidator is a singleton validator with custom rules registered.
var (
	customValidator *validate.Validator
	validatorOnce   sync.Once
)

// getValidator returns the singleton validator with custom rules.
func getValidator() *validate.Validator {
	validatorOnce.Do(func() {
		customValidator = validate.New(validate.WithStopOnFirstError())

		// entryname: a single path segment usable as a folder or file name
		customValidator.RegisterRuleFunc("entryname", func(value any) bool {
			if s, ok := value.(string); ok {
				return IsValidEntryName(s)
			}
			return false
		}, "entryname")

		// relpath: a path that stays inside the storage root
		customValidator.RegisterRuleFunc("relpath", func(value any) bool {
			if s, ok := value.(string); ok {
				return IsValidRelPath(s)
			}
			return false
		}, "relpath")

		// kind: "folder" or "file"
		customValidator.RegisterRuleFunc("kind", func(value any) bool {
			if s, ok := value.(string); ok {
				_, ok := models.ParseKind(s)
				return ok
			}
			return false
		}, "kind")

		// glob: a valid doublestar pattern
		customValidator.RegisterRuleFunc("glob", func(value any) bool {
			if s, ok := value.(string); ok {
				return doublestar.ValidatePattern(s)
			}
			return false
		}, "glob")
	})
	return customValidator
}

// Validate validates a struct and returns a Result with user-friendly errors.
// The struct should have `validate` tags for rules and optional `label` tags
// for user-friendly field names.
//
// Supported validation rules (from pantry/validate):
//   - required: field must not be empty
//   - oneof=a b c: field must be one of the specified values
//   - min=N: string length or numeric value must be >= N
//   - max=N: string length or numeric value must be <= N
//
// Custom validation rules (registered by this package):
//   - entryname: a single name without slashes, not "." or ".."
//   - relpath: a relative path that does not leave the storage root
//   - kind: "folder" or "file"
//   - glob: a valid search pattern
func Validate(s any) *Result {
	result := &Result{}

	v := getValidator()
	err := v.Struct(s)
	if err == nil {
		return result
	}

	// Get field labels from struct tags
	labels := getFieldLabels(s)

	if errs, ok := err.(validate.Errors); ok {
		for _, e := range errs {
			label := labels[e.Field]
			if label == "" {
				label = e.Field
			}

			msg := formatMessage(label, e.Rule, e.Param)
			result.Errors = append(result.Errors, FieldError{
				Field:   e.Field,
				Label:   label,
				Message: msg,
			})
		}
	}

	return result
}

// getFieldLabels extracts the "label" tag from struct fields.
func getFieldLabels(s any) map[string]string {
	labels := make(map[string]string)

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return labels
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		// Get the field name (use json tag if available)
		fieldName := field.Name
		if jsonTag := field.Tag.Get("json"); jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" && parts[0] != "-" {
				fieldName = parts[0]
			}
		}

		// Get the label
		if label := field.Tag.Get("label"); label != "" {
			labels[fieldName] = label
		}
	}

	return labels
}

// formatMessage creates a user-friendly message for a validation rule.
func formatMessage(label, rule, param string) string {
	switch rule {
	case "required":
		return label + " is required."
	case "oneof", "enum":
		return label + " must be one of: " + strings.ReplaceAll(param, " ", ", ") + "."
	case "min":
		return label + " must be at least " + param + " characters."
	case "max":
		return label + " must be at most " + param + " characters."
	case "entryname":
		return label + " cannot contain slashes or be \".\" or \"..\"."
	case "relpath":
		return label + " must stay inside the storage area."
	case "kind":
		return label + " must be folder or file."
	case "glob":
		return label + " is not a valid search pattern."
	default:
		return label + " is invalid."
	}
}

// IsValidEntryName checks that name can be used as a single folder or
// file name inside the storage tree.
func IsValidEntryName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	if name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}

// IsValidRelPath checks that p is relative and does not climb above the root.
func IsValidRelPath(p string) bool {
	_, err := navstate.Clean(p)
	return err == nil
}
