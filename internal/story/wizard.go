package story

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"storybook/internal/domain"
	"storybook/internal/stream"
)

// State is the explicit wizard state tag. The conversation itself lives on
// the caller's side (accumulated plot points echo back each turn), so the
// current state is derived from the request and every operation is checked
// against the transition table before it runs.
type State string

const (
	StateAwaitingSelection State = "awaiting-selection"
	StateCollecting        State = "collecting"
	StateReadyToExpand     State = "ready-to-expand"
	StateExpanding         State = "expanding"
	StateComplete          State = "complete"
	StateError             State = "error"
)

var transitions = map[State]map[State]bool{
	StateAwaitingSelection: {StateCollecting: true},
	StateCollecting:        {StateCollecting: true, StateReadyToExpand: true, StateError: true},
	StateReadyToExpand:     {StateExpanding: true, StateError: true},
	StateExpanding:         {StateComplete: true, StateError: true},
}

func advance(from, to State) (State, error) {
	if !transitions[from][to] {
		return from, fmt.Errorf("%w: illegal transition %s -> %s", domain.ErrValidation, from, to)
	}
	return to, nil
}

// TurnRequest carries one wizard turn. PlotPoints holds the answers
// accumulated on previous turns; InteractionNumber is the 1-based turn the
// caller believes it is answering.
type TurnRequest struct {
	StoryType            domain.StoryType
	CharacterName        string
	CharacterDescription string
	CharacterImage       string
	UserInput            string
	PlotPoints           []string
	InteractionNumber    int
}

// Wizard drives the conversational collection of plot points and, on the
// final answer, creates the job and runs story expansion inline so the last
// continue call streams the whole story.
type Wizard struct {
	repo     domain.JobRepository
	expander *Expander
	logger   zerolog.Logger
}

func NewWizard(repo domain.JobRepository, expander *Expander, logger zerolog.Logger) *Wizard {
	return &Wizard{repo: repo, expander: expander, logger: logger}
}

// Start validates the selection and emits the first prompt.
func (w *Wizard) Start(ctx context.Context, req TurnRequest, sink stream.Sink) error {
	cfg, err := w.config(req)
	if err != nil {
		return err
	}
	if _, err := advance(StateAwaitingSelection, StateCollecting); err != nil {
		return err
	}
	return sink.Send(stream.Prompt(1, cfg.Prompt(1, req.CharacterName), nil, false))
}

// Continue records one answer. Before the final turn it emits the next
// prompt; on the final turn it creates the job and expands the story,
// terminating the stream with the complete event.
func (w *Wizard) Continue(ctx context.Context, req TurnRequest, sink stream.Sink) error {
	cfg, err := w.config(req)
	if err != nil {
		return err
	}
	if strings.TrimSpace(req.UserInput) == "" {
		return fmt.Errorf("%w: answer must not be empty", domain.ErrValidation)
	}
	collected := len(req.PlotPoints)
	if collected >= domain.PlotPointCount {
		return fmt.Errorf("%w: all %d plot points already collected", domain.ErrValidation, domain.PlotPointCount)
	}
	if req.InteractionNumber != collected+1 {
		return fmt.Errorf("%w: expected turn %d, got %d", domain.ErrValidation, collected+1, req.InteractionNumber)
	}

	state := StateCollecting
	points := append(append([]string(nil), req.PlotPoints...), req.UserInput)

	if len(points) < domain.PlotPointCount {
		if state, err = advance(state, StateCollecting); err != nil {
			return err
		}
		next := len(points) + 1
		return sink.Send(stream.Prompt(next, cfg.Prompt(next, req.CharacterName), points, false))
	}

	if state, err = advance(state, StateReadyToExpand); err != nil {
		return err
	}
	job := &domain.Job{
		ID:                   uuid.NewString(),
		CharacterName:        req.CharacterName,
		CharacterDescription: req.CharacterDescription,
		CharacterImage:       req.CharacterImage,
		StoryType:            req.StoryType,
		PlotPoints:           points,
		Status:               domain.JobStatusGenerating,
	}
	if err := w.repo.CreateJob(ctx, job); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	w.logger.Info().Str("job_id", job.ID).Str("story_type", string(job.StoryType)).Msg("job created")

	if state, err = advance(state, StateExpanding); err != nil {
		return err
	}
	message := fmt.Sprintf("Creating your personalized %d-scene story...", w.expander.sceneCount)
	if err := sink.Send(stream.GeneratingStory(message, job.ID, points)); err != nil {
		return err
	}

	summaries, err := w.expander.Expand(ctx, job, sink)
	if err != nil {
		_, _ = advance(state, StateError)
		return err
	}
	if _, err = advance(state, StateComplete); err != nil {
		return err
	}
	return sink.Send(stream.StoryComplete(job.ID, summaries))
}

// Redo discards the most recent answer and re-emits the preceding prompt,
// clamped to turn 1. It is only legal before the job exists; once all plot
// points are collected the job has been created and redo fails closed.
func (w *Wizard) Redo(ctx context.Context, req TurnRequest, sink stream.Sink) error {
	cfg, err := w.config(req)
	if err != nil {
		return err
	}
	if req.InteractionNumber < 1 {
		return fmt.Errorf("%w: interaction number is required", domain.ErrValidation)
	}
	if len(req.PlotPoints) >= domain.PlotPointCount {
		return fmt.Errorf("%w: cannot redo after the story has been created", domain.ErrValidation)
	}
	if _, err := advance(StateCollecting, StateCollecting); err != nil {
		return err
	}
	points := req.PlotPoints
	if len(points) > 0 {
		points = points[:len(points)-1]
	}
	turn := req.InteractionNumber - 1
	if turn < 1 {
		turn = 1
	}
	return sink.Send(stream.Prompt(turn, cfg.Prompt(turn, req.CharacterName), points, true))
}

func (w *Wizard) config(req TurnRequest) (Config, error) {
	if req.StoryType == "" || strings.TrimSpace(req.CharacterName) == "" {
		return Config{}, fmt.Errorf("%w: story type and character name are required", domain.ErrValidation)
	}
	cfg, ok := ConfigFor(req.StoryType)
	if !ok {
		return Config{}, fmt.Errorf("%w: invalid story type %q", domain.ErrValidation, req.StoryType)
	}
	return cfg, nil
}
