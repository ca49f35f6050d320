package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"storybook/internal/domain"
	"storybook/internal/story"
	"storybook/internal/stream"
)

type storyboardRequest struct {
	Action               string   `json:"action"`
	StoryType            string   `json:"storyType"`
	CharacterName        string   `json:"characterName"`
	CharacterDescription string   `json:"characterDescription"`
	CharacterImage       string   `json:"characterImage"`
	UserInput            string   `json:"userInput"`
	PlotPoints           []string `json:"plotPoints"`
	InteractionNumber    int      `json:"interactionNumber"`
}

// Storyboard drives one wizard turn over a server-sent-event stream. The
// final continue call transparently performs the full story expansion, so
// its stream carries the generating, scene and complete events too.
func (a *App) Storyboard(w http.ResponseWriter, r *http.Request) {
	var req storyboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.Config.ExpansionTimeout)
	defer cancel()

	emitter := stream.NewEmitter(w)
	defer emitter.Close()

	turn := story.TurnRequest{
		StoryType:            domain.StoryType(req.StoryType),
		CharacterName:        req.CharacterName,
		CharacterDescription: req.CharacterDescription,
		CharacterImage:       req.CharacterImage,
		UserInput:            req.UserInput,
		PlotPoints:           req.PlotPoints,
		InteractionNumber:    req.InteractionNumber,
	}

	var err error
	switch req.Action {
	case "start":
		err = a.Wizard.Start(ctx, turn, emitter)
	case "continue":
		err = a.Wizard.Continue(ctx, turn, emitter)
	case "redo":
		err = a.Wizard.Redo(ctx, turn, emitter)
	default:
		err = fmt.Errorf("%w: invalid action %q", domain.ErrValidation, req.Action)
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("action", req.Action).Msg("storyboard turn failed")
		a.streamError(w, emitter, err)
	}
}
