package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"storybook/internal/book"
	"storybook/internal/character"
	"storybook/internal/domain"
	"storybook/internal/infra"
	"storybook/internal/story"
	"storybook/internal/stream"
)

type App struct {
	Repo       domain.JobRepository
	Wizard     *story.Wizard
	Books      *book.Generator
	Characters *character.Creator
	Config     *infra.Config
	Logger     infra.Logger
}

func NewApp(repo domain.JobRepository, wizard *story.Wizard, books *book.Generator, characters *character.Creator, cfg *infra.Config, logger infra.Logger) *App {
	return &App{Repo: repo, Wizard: wizard, Books: books, Characters: characters, Config: cfg, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

// streamError terminates a streaming request. Failures before the first
// event become a plain JSON status; once the channel is open the caller gets
// exactly one terminal error event instead, never a silently closed stream.
func (a *App) streamError(w http.ResponseWriter, emitter *stream.Emitter, err error) {
	message := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		message = "generation timed out"
	}
	if !emitter.Sent() {
		switch {
		case errors.Is(err, domain.ErrValidation):
			a.error(w, http.StatusBadRequest, "bad_request", message)
		case errors.Is(err, domain.ErrNotFound):
			a.error(w, http.StatusNotFound, "not_found", message)
		default:
			a.error(w, http.StatusInternalServerError, "internal", message)
		}
		return
	}
	if err := emitter.Send(stream.Error(message)); err != nil {
		a.Logger.Warn().Err(err).Msg("terminal error event dropped")
	}
}
