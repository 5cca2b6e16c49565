// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// Validators run in the service layer and in the chapter validation stage,
// never in storage. A failed chain is either turned into one 400 error
// ([Validator.ErrWith]) or flattened to "field: message" lines
// ([Validator.Messages]) when the caller reports failures per record, as bulk
// upload does.
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/chapterhub/internal/platform/apperr"
)

// ErrInvalidJSON is returned when the request body cannot be decoded.
var ErrInvalidJSON = apperr.MalformedPayload("Invalid JSON payload")

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// Range fails if the value is outside the [min, max] range (inclusive).
func (v *Validator) Range(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.add(field, fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf("Must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Int parses value as a base-10 integer and stores it in dst.
// On failure dst is left untouched and a field error is recorded.
func (v *Validator) Int(field, value string, dst *int) *Validator {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		v.add(field, "Must be an integer")
		return v
	}
	*dst = n
	return v
}

// Bool parses value as "true" or "false" and stores it in dst.
func (v *Validator) Bool(field, value string, dst *bool) *Validator {
	switch strings.TrimSpace(value) {
	case "true":
		*dst = true
	case "false":
		*dst = false
	default:
		v.add(field, "Must be a boolean")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("page", page < 1, "Must be greater than or equal to 1")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// ErrWith returns a [apperr.AppError] (VALIDATION_ERROR) carrying message and
// every recorded field failure, or nil if all rules passed.
func (v *Validator) ErrWith(message string) error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError(message, v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Len returns the number of failures recorded so far.
func (v *Validator) Len() int {
	return len(v.errs)
}

// Messages flattens the collected errors to "field: message" strings.
func (v *Validator) Messages() []string {
	out := make([]string, 0, len(v.errs))
	for _, fe := range v.errs {
		out = append(out, fe.Field+": "+fe.Message)
	}
	return out
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
