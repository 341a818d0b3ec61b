package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Un3xpecteed/Search-Engine/internal/analytics"
	"github.com/Un3xpecteed/Search-Engine/internal/indexer/store"
	"github.com/Un3xpecteed/Search-Engine/internal/ingestion"
	"github.com/Un3xpecteed/Search-Engine/internal/ingestion/validator"
	apperrors "github.com/Un3xpecteed/Search-Engine/pkg/errors"
	"github.com/Un3xpecteed/Search-Engine/pkg/logger"
	"github.com/Un3xpecteed/Search-Engine/pkg/middleware"
)

// DocumentIndexer ingests a document into the inverted index.
type DocumentIndexer interface {
	AddDocument(ctx context.Context, name, content string) (*store.Document, error)
}

// DocumentFinder looks up a single indexed document by name.
type DocumentFinder interface {
	DocumentByName(ctx context.Context, name string) (*store.Document, error)
}

// EventTracker receives analytics events; satisfied by the Kafka-backed
// collector.
type EventTracker interface {
	Track(event any)
}

type Handler struct {
	indexer DocumentIndexer
	finder  DocumentFinder
	events  EventTracker
	logger  *slog.Logger
}

func New(indexer DocumentIndexer, finder DocumentFinder, events EventTracker) *Handler {
	return &Handler{
		indexer: indexer,
		finder:  finder,
		events:  events,
		logger:  slog.Default().With("component", "ingestion-handler"),
	}
}

// Upload handles POST /api/v1/documents. Write-path failures map to typed
// HTTP statuses: validation 400, empty content 422, duplicate name 409,
// store failure 500.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req ingestion.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validator.ValidateUploadRequest(&req); err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.indexer.AddDocument(ctx, req.Name, req.Content)
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		if statusCode >= http.StatusInternalServerError {
			log.Error("document upload failed", "name", req.Name, "error", err)
			h.writeError(w, statusCode, "upload failed")
			return
		}
		log.Info("document upload rejected",
			"name", req.Name,
			"status_code", statusCode,
			"reason", err.Error(),
		)
		h.writeError(w, statusCode, err.Error())
		return
	}

	log.Info("document uploaded",
		"doc_id", doc.ID,
		"name", doc.Name,
		"word_count", doc.WordCount,
	)
	if h.events != nil {
		h.events.Track(analytics.IndexEvent{
			Type:       analytics.EventIndexDoc,
			DocumentID: doc.ID,
			Name:       doc.Name,
			WordCount:  doc.WordCount,
			LatencyMs:  time.Since(start).Milliseconds(),
			Timestamp:  time.Now().UTC(),
			RequestID:  middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusCreated, ingestion.DocumentResponse{
		ID:        doc.ID,
		Name:      doc.Name,
		WordCount: doc.WordCount,
	})
}

// GetDocument handles GET /api/v1/documents/{name}, returning the indexed
// document's metadata (never its content).
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		h.writeError(w, http.StatusBadRequest, "document name is required")
		return
	}

	doc, err := h.finder.DocumentByName(r.Context(), name)
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		if statusCode >= http.StatusInternalServerError {
			logger.FromContext(r.Context()).Error("document lookup failed", "name", name, "error", err)
			h.writeError(w, statusCode, "lookup failed")
			return
		}
		h.writeError(w, statusCode, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, ingestion.DocumentResponse{
		ID:        doc.ID,
		Name:      doc.Name,
		WordCount: doc.WordCount,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
