package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/finsight/finsight/internal/document"
	"github.com/finsight/finsight/internal/semantic"
)

// maxBodyBytes caps request bodies; batch ingestion of a few hundred
// documents fits comfortably.
const maxBodyBytes = 4 << 20 // 4 MiB

type documentHandler struct {
	service Service
	logger  *slog.Logger
}

// documentRequest is one document to ingest.
type documentRequest struct {
	Content     string         `json:"content"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	WorkspaceID string         `json:"workspace_id"`
	Type        string         `json:"type,omitempty"`
}

func (r documentRequest) item() semantic.Item {
	return semantic.Item{
		Content:     r.Content,
		Metadata:    r.Metadata,
		WorkspaceID: r.WorkspaceID,
		Type:        r.Type,
	}
}

// documentResponse mirrors a stored document. The embedding vector is
// internal and never serialized.
type documentResponse struct {
	ID          string         `json:"id"`
	Content     string         `json:"content"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	WorkspaceID string         `json:"workspace_id"`
	Type        string         `json:"type"`
	CreatedAt   time.Time      `json:"created_at"`
}

func toDocumentResponse(doc document.Document) documentResponse {
	return documentResponse{
		ID:          doc.ID,
		Content:     doc.Content,
		Metadata:    doc.Metadata,
		WorkspaceID: doc.WorkspaceID,
		Type:        string(doc.Type),
		CreatedAt:   doc.CreatedAt,
	}
}

type batchRequest struct {
	Documents []documentRequest `json:"documents"`
}

type batchFailureResponse struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type batchResponse struct {
	Stored   []documentResponse     `json:"stored"`
	Failures []batchFailureResponse `json:"failures,omitempty"`
}

type searchRequest struct {
	Query       string `json:"query"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	// Limit distinguishes absent (service default) from explicit zero
	// (rejected).
	Limit *int `json:"limit,omitempty"`
}

type searchResultResponse struct {
	Document documentResponse `json:"document"`
	Score    float64          `json:"score"`
}

type searchResponse struct {
	Results []searchResultResponse `json:"results"`
}

// decodeBody decodes a JSON request body, rejecting unknown fields and
// oversized payloads.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// storeOne handles POST /api/v1/documents.
func (h *documentHandler) storeOne(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "malformed request body: "+err.Error())
		return
	}

	doc, err := h.service.StoreOne(r.Context(), req.item())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

// storeBatch handles POST /api/v1/documents/batch.
//
// Returns 200 even when some items failed; the failure report tells the
// caller which. Only a malformed body or an aborted context turns into an
// error status.
func (h *documentHandler) storeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "malformed request body: "+err.Error())
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "batch is empty")
		return
	}

	items := make([]semantic.Item, len(req.Documents))
	for i, d := range req.Documents {
		items[i] = d.item()
	}

	stored, failures, err := h.service.StoreBatch(r.Context(), items)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	resp := batchResponse{Stored: make([]documentResponse, len(stored))}
	for i, doc := range stored {
		resp.Stored[i] = toDocumentResponse(doc)
	}
	for _, f := range failures {
		resp.Failures = append(resp.Failures, batchFailureResponse{
			Index: f.Index,
			Error: failureMessage(f.Err),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// failureMessage renders a batch failure for the client. Invalid input is
// safe to echo; infrastructure failures are reduced to their category.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, document.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, document.ErrEmbeddingUnavailable):
		return "embedding provider unavailable"
	case errors.Is(err, document.ErrPersistence):
		return "storage failure"
	default:
		return "internal error"
	}
}

// search handles POST /api/v1/search.
func (h *documentHandler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "malformed request body: "+err.Error())
		return
	}

	var opts []semantic.SearchOption
	if req.WorkspaceID != "" {
		opts = append(opts, semantic.WithWorkspace(req.WorkspaceID))
	}
	if req.Limit != nil {
		opts = append(opts, semantic.WithLimit(*req.Limit))
	}

	results, err := h.service.SearchText(r.Context(), req.Query, opts...)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	resp := searchResponse{Results: make([]searchResultResponse, len(results))}
	for i, res := range results {
		resp.Results[i] = searchResultResponse{
			Document: toDocumentResponse(res.Document),
			Score:    res.Score,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// stats handles GET /api/v1/stats.
func (h *documentHandler) stats(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.URL.Query().Get("workspace")

	count, err := h.service.Count(r.Context(), workspaceID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"workspace": workspaceID,
		"documents": count,
	})
}
