// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/taibuivan/chapterhub/internal/platform/validate"
	"github.com/taibuivan/chapterhub/pkg/pointer"
	"github.com/taibuivan/chapterhub/pkg/textnorm"
)

// # Query Parameters

const (
	ParamClass        = "class"
	ParamUnit         = "unit"
	ParamStatus       = "status"
	ParamSubject      = "subject"
	ParamWeakChapters = "weakChapters"
	ParamPage         = "page"
	ParamLimit        = "limit"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit inside int32 for every accepted limit.
	MaxPage = math.MaxInt32/MaxLimit + 1

	// MsgInvalidQuery is the top-level message of a rejected list query.
	MsgInvalidQuery = "Invalid query parameters"
)

// # Record Fields

const (
	FieldSubject       = "subject"
	FieldChapter       = "chapter"
	FieldClass         = "class"
	FieldUnit          = "unit"
	FieldStatus        = "status"
	FieldIsWeakChapter = "isWeakChapter"
)

// Column limits, kept in line with the CHECK constraints of core.chapter.
const (
	maxSubjectLen = 200
	maxChapterLen = 300
	maxClassLen   = 50
	maxUnitLen    = 200
)

var knownParams = map[string]bool{
	ParamClass:        true,
	ParamUnit:         true,
	ParamStatus:       true,
	ParamSubject:      true,
	ParamWeakChapters: true,
	ParamPage:         true,
	ParamLimit:        true,
}

/*
ValidateQuery checks and normalizes the list query string.

Unknown parameter names, repeated parameters, unknown statuses, non-boolean
weakChapters and out-of-range page or limit values are all rejected. Every
problem is reported, not only the first.

Returns:
  - QueryParams: normalized values with defaults applied
  - error: apperr VALIDATION_ERROR with per-field details
*/
func ValidateQuery(values url.Values) (QueryParams, error) {
	params := QueryParams{Page: DefaultPage, Limit: DefaultLimit}
	v := &validate.Validator{}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		raw := values[name]
		if !knownParams[name] {
			v.Custom(name, true, "Unknown parameter")
			continue
		}
		if len(raw) != 1 {
			v.Custom(name, true, "Must be a single value")
			continue
		}
		value := raw[0]

		switch name {
		case ParamClass:
			params.Class = textnorm.Clean(value)
			v.Required(name, params.Class)
		case ParamUnit:
			params.Unit = textnorm.Clean(value)
			v.Required(name, params.Unit)
		case ParamSubject:
			params.Subject = textnorm.Clean(value)
			v.Required(name, params.Subject)
		case ParamStatus:
			status := strings.TrimSpace(value)
			v.OneOf(name, status, Statuses()...)
			params.Status = Status(status)
		case ParamWeakChapters:
			var weak bool
			before := v.Len()
			v.Bool(name, value, &weak)
			if v.Len() == before {
				params.WeakChapters = pointer.To(weak)
			}
		case ParamPage:
			page := 0
			before := v.Len()
			v.Int(name, value, &page)
			if v.Len() == before {
				v.Custom(name, page < 1, "Must be greater than or equal to 1")
				v.Custom(name, page > MaxPage, fmt.Sprintf("Must be less than or equal to %d", MaxPage))
				params.Page = page
			}
		case ParamLimit:
			limit := 0
			before := v.Len()
			v.Int(name, value, &limit)
			if v.Len() == before {
				v.Range(name, limit, 1, MaxLimit)
				params.Limit = limit
			}
		}
	}

	if err := v.ErrWith(MsgInvalidQuery); err != nil {
		return QueryParams{}, err
	}

	return params, nil
}

// # Upload Records

// ValidChapter is an accepted upload record and its position in the batch.
type ValidChapter struct {
	Index   int
	Chapter NewChapter
}

// ValidationOutcome partitions an upload batch. Every input index appears in
// exactly one of the two slices, each kept in input order.
type ValidationOutcome struct {
	Valid   []ValidChapter
	Invalid []FailedChapter
}

/*
ValidateBatch checks every upload record independently.

subject, chapter, class and unit are required non-empty strings; status is
optional and must be a known value; isWeakChapter is optional and accepts
true/false, "true"/"false"/"1"/"0" and 1/0. A null optional field takes its
default. Strings are NFC-normalized and
whitespace-collapsed. Records that are not JSON objects are invalid.

The function is pure: the same input always yields the same outcome, and
re-validating the normalized output of a valid record yields the same record.
*/
func ValidateBatch(candidates []json.RawMessage) ValidationOutcome {
	var outcome ValidationOutcome

	for i, raw := range candidates {
		record, reasons, summary := validateRecord(raw)
		if len(reasons) > 0 {
			outcome.Invalid = append(outcome.Invalid, FailedChapter{
				Index:   i,
				Summary: summary,
				Reasons: reasons,
			})
			continue
		}
		outcome.Valid = append(outcome.Valid, ValidChapter{Index: i, Chapter: record})
	}

	return outcome
}

// validateRecord validates one raw record. reasons is empty when it is valid.
func validateRecord(raw json.RawMessage) (NewChapter, []string, RecordSummary) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil || fields == nil {
		return NewChapter{}, []string{"Record must be a JSON object"}, RecordSummary{}
	}

	summary := RecordSummary{
		Subject: rawString(fields[FieldSubject]),
		Chapter: rawString(fields[FieldChapter]),
		Class:   rawString(fields[FieldClass]),
	}

	v := &validate.Validator{}
	record := NewChapter{
		Subject: requiredString(v, fields, FieldSubject, maxSubjectLen),
		Name:    requiredString(v, fields, FieldChapter, maxChapterLen),
		Class:   requiredString(v, fields, FieldClass, maxClassLen),
		Unit:    requiredString(v, fields, FieldUnit, maxUnitLen),
		Status:  StatusNotStarted,
	}

	// Optional fields treat an explicit null as absent.
	if value := fields[FieldStatus]; value != nil {
		status, isString := value.(string)
		if !isString {
			v.Custom(FieldStatus, true, "Must be a string")
		} else {
			status = strings.TrimSpace(status)
			v.OneOf(FieldStatus, status, Statuses()...)
			record.Status = Status(status)
		}
	}

	if value := fields[FieldIsWeakChapter]; value != nil {
		weak, valid := coerceBool(value)
		v.Custom(FieldIsWeakChapter, !valid, "Must be a boolean")
		record.IsWeakChapter = weak
	}

	if v.HasErrors() {
		return NewChapter{}, v.Messages(), summary
	}

	return record, nil, summary
}

// requiredString reads, normalizes and checks a mandatory text field.
func requiredString(v *validate.Validator, fields map[string]any, name string, maxLen int) string {
	value, present := fields[name]
	if !present || value == nil {
		v.Required(name, "")
		return ""
	}

	text, ok := value.(string)
	if !ok {
		v.Custom(name, true, "Must be a string")
		return ""
	}

	clean := textnorm.Clean(text)
	v.Required(name, clean).MaxLen(name, clean, maxLen)
	return clean
}

// coerceBool accepts the boolean spellings upload files use in practice.
func coerceBool(value any) (bool, bool) {
	switch typed := value.(type) {
	case bool:
		return typed, true
	case string:
		switch strings.TrimSpace(typed) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	case json.Number:
		switch typed.String() {
		case "1":
			return true, true
		case "0":
			return false, true
		}
	}
	return false, false
}

// rawString returns value when it is a string, for echoing back in failures.
func rawString(value any) string {
	text, _ := value.(string)
	return text
}
