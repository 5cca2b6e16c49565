// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/chapterhub/internal/platform/apperr"
	"github.com/taibuivan/chapterhub/internal/platform/ctxutil"
	"github.com/taibuivan/chapterhub/internal/platform/middleware"
	requestutil "github.com/taibuivan/chapterhub/internal/platform/request"
	"github.com/taibuivan/chapterhub/internal/platform/respond"
	"github.com/taibuivan/chapterhub/internal/platform/sec"
	"github.com/taibuivan/chapterhub/pkg/slice"
)

const (
	// UploadField is the multipart field carrying a JSON document.
	UploadField = "file"

	MsgInvalidFile = "Invalid JSON file format"
	MsgNoData      = "No chapters data provided"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// # Handler Implementation

// Handler implements the HTTP layer for the chapter catalogue.
type Handler struct {
	service *Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the chapter endpoints to a router mounted at the
// collection path. Upload requires an admin token; reads are public.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.ListChapters)
	router.Get("/{id}", handler.GetChapter)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/", handler.UploadChapters)
	})
}

// # Chapter Retrieval

/*
GET /api/v1/chapters.

Description: Returns a filtered, paginated list of chapters, newest first.

Request:
  - class, unit, subject: string (equality filters)
  - status: not-started | in-progress | completed
  - weakChapters: true | false
  - page: int (default 1)
  - limit: int (1-100, default 10)

Response:
  - 200: ListResult
  - 400: VALIDATION_ERROR: Invalid query parameters
*/
func (handler *Handler) ListChapters(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.ListChapters(request.Context(), request.URL.Query())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, result)
}

// chapterResponse is the single-chapter envelope.
type chapterResponse struct {
	Success bool     `json:"success"`
	Data    *Chapter `json:"data"`
	Cached  bool     `json:"cached"`
}

/*
GET /api/v1/chapters/{id}.

Response:
  - 200: {success, data, cached}
  - 404: NOT_FOUND: Chapter not found
*/
func (handler *Handler) GetChapter(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.GetChapter(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, chapterResponse{
		Success: true,
		Data:    result.Chapter,
		Cached:  result.Cached,
	})
}

// # Bulk Upload

type uploadedChapter struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Chapter string `json:"chapter"`
	Class   string `json:"class"`
}

type failedChapter struct {
	Index   int           `json:"index"`
	Chapter RecordSummary `json:"chapter"`
	Errors  []string      `json:"errors"`
}

type uploadData struct {
	UploadedCount    int               `json:"uploadedCount"`
	FailedCount      int               `json:"failedCount"`
	UploadedChapters []uploadedChapter `json:"uploadedChapters"`
	FailedChapters   []failedChapter   `json:"failedChapters"`
}

type uploadResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    uploadData `json:"data"`
}

/*
POST /api/v1/chapters.

Description: Bulk-creates chapters from a JSON array body or from a JSON
document sent as the multipart field "file". Records are validated one by
one; invalid or rejected records are listed with their batch index.

Response:
  - 201: uploadResponse (also when some or all records failed)
  - 400: MALFORMED_PAYLOAD: Invalid JSON file format / No chapters data provided
  - 401: UNAUTHORIZED: Missing or invalid token
  - 403: FORBIDDEN: Not an admin
  - 413: PAYLOAD_TOO_LARGE
*/
func (handler *Handler) UploadChapters(writer http.ResponseWriter, request *http.Request) {
	candidates, err := readCandidates(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.UploadChapters(request.Context(), candidates)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if claims := requestutil.Claims(request); claims != nil {
		ctxutil.GetLogger(request.Context()).Info("chapter_upload_completed",
			slog.String("uploaded_by", claims.UserID),
			slog.Int("uploaded", len(result.Uploaded)),
			slog.Int("failed", len(result.Failed)),
		)
	}

	data := uploadData{
		UploadedCount: len(result.Uploaded),
		FailedCount:   len(result.Failed),
		UploadedChapters: slice.Map(result.Uploaded, func(chapter *Chapter) uploadedChapter {
			return uploadedChapter{
				ID:      chapter.ID,
				Subject: chapter.Subject,
				Chapter: chapter.Name,
				Class:   chapter.Class,
			}
		}),
		FailedChapters: slice.Map(result.Failed, func(failed FailedChapter) failedChapter {
			return failedChapter{
				Index:   failed.Index,
				Chapter: failed.Summary,
				Errors:  failed.Reasons,
			}
		}),
	}

	respond.JSON(writer, http.StatusCreated, uploadResponse{
		Success: true,
		Message: fmt.Sprintf("%d chapters uploaded", len(result.Uploaded)),
		Data:    data,
	})
}

/*
readCandidates extracts the raw record list from either payload shape.

A multipart request must carry a "file" field holding a JSON array; anything
else in that field is an invalid file. A plain body must be a JSON array.
*/
func readCandidates(request *http.Request) ([]json.RawMessage, error) {
	if requestutil.IsMultipart(request) {
		content, found, err := requestutil.FormFile(request, UploadField)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, apperr.MalformedPayload(MsgNoData)
		}

		content = bytes.TrimPrefix(content, utf8BOM)

		var candidates []json.RawMessage
		if err := json.Unmarshal(content, &candidates); err != nil || candidates == nil {
			return nil, apperr.MalformedPayload(MsgInvalidFile)
		}
		return candidates, nil
	}

	body, err := requestutil.ReadBody(request)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, apperr.MalformedPayload(MsgNoData)
	}

	var candidates []json.RawMessage
	if err := json.Unmarshal(trimmed, &candidates); err != nil {
		return nil, apperr.MalformedPayload("Invalid JSON payload")
	}

	return candidates, nil
}
