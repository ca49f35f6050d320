package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storybook/internal/book"
	"storybook/internal/domain"
	"storybook/internal/stream"
)

type bookGenerateRequest struct {
	JobID string `json:"jobId"`
}

// BookGenerate streams the per-scene page generation for a persisted job.
// Re-invoking it is safe: finished pages replay from the store and only the
// missing ones hit the image provider.
func (a *App) BookGenerate(w http.ResponseWriter, r *http.Request) {
	var req bookGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.JobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "jobId required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.Config.BookTimeout)
	defer cancel()

	emitter := stream.NewEmitter(w)
	defer emitter.Close()

	if err := a.Books.Generate(ctx, req.JobID, emitter); err != nil {
		a.Logger.Error().Err(err).Str("job_id", req.JobID).Msg("book generation failed")
		a.streamError(w, emitter, err)
	}
}

// BookDownload assembles the persisted scenes of a job into a printable PDF.
func (a *App) BookDownload(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "jobID required")
		return
	}

	data, err := book.AssemblePDF(r.Context(), a.Repo, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "no scenes found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("pdf assembly failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to assemble book")
		return
	}

	short := jobID
	if len(short) > 8 {
		short = short[:8]
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"coloring_book_%s.pdf\"", short))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
