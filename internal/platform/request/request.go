// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and size limits.
Every body reader caps input at [constants.MaxBodyBytes].
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/chapterhub/internal/platform/apperr"
	"github.com/taibuivan/chapterhub/internal/platform/constants"
	"github.com/taibuivan/chapterhub/internal/platform/ctxutil"
	"github.com/taibuivan/chapterhub/internal/platform/sec"
	"github.com/taibuivan/chapterhub/internal/platform/validate"
)

// MsgTooLarge is the client message for bodies over the size limit.
const MsgTooLarge = "Request body exceeds the 10 MB limit"

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, PAYLOAD_TOO_LARGE over the limit
*/
func DecodeJSON(request *http.Request, target any) error {
	body := http.MaxBytesReader(nil, request.Body, constants.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		if isTooLarge(err) {
			return apperr.PayloadTooLarge(MsgTooLarge)
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ReadBody returns the raw request body, capped at the size limit.
*/
func ReadBody(request *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(nil, request.Body, constants.MaxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		if isTooLarge(err) {
			return nil, apperr.PayloadTooLarge(MsgTooLarge)
		}
		return nil, apperr.MalformedPayload("Unable to read request body")
	}
	return data, nil
}

/*
IsMultipart reports whether the request carries a multipart/form-data body.
*/
func IsMultipart(request *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(request.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

/*
FormFile reads an uploaded file from a multipart form.

Returns:
  - []byte: File contents
  - bool: false when the form has no such file field
  - error: Size limit or malformed form errors
*/
func FormFile(request *http.Request, field string) ([]byte, bool, error) {
	request.Body = http.MaxBytesReader(nil, request.Body, constants.MaxBodyBytes)

	if err := request.ParseMultipartForm(constants.MaxBodyBytes); err != nil {
		if isTooLarge(err) {
			return nil, false, apperr.PayloadTooLarge(MsgTooLarge)
		}
		return nil, false, apperr.MalformedPayload("Invalid multipart form")
	}

	file, _, err := request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, false, nil
		}
		return nil, false, apperr.MalformedPayload("Invalid multipart form")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, false, apperr.MalformedPayload("Unable to read uploaded file")
	}

	return data, true, nil
}

/*
ID retrieves a named URL parameter (UUID) from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Claims extracts the authenticated user claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

// isTooLarge reports whether err came from an exhausted [http.MaxBytesReader].
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
