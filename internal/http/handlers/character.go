package handlers

import (
	"context"
	"io"
	"net/http"

	"storybook/internal/stream"
)

// Photo uploads beyond this size are refused before any provider call.
const maxUploadBytes = 10 << 20

// CharacterGenerate turns an uploaded photo into the coloring-book
// character reference over a server-sent-event stream. The resulting image
// is what the wizard later receives as characterImage.
func (a *App) CharacterGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image file required")
		return
	}
	defer func() {
		_ = file.Close()
	}()
	photo, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable image upload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.Config.CharacterTimeout)
	defer cancel()

	emitter := stream.NewEmitter(w)
	defer emitter.Close()

	if err := a.Characters.Create(ctx, photo, emitter); err != nil {
		a.Logger.Error().Err(err).Msg("character generation failed")
		a.streamError(w, emitter, err)
	}
}
