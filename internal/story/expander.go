package story

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"storybook/internal/domain"
	"storybook/internal/providers/textgen"
	"storybook/internal/stream"
)

// SceneCount is the fixed length of an expanded story.
const SceneCount = 25

// StyleSuffix closes every image prompt so all pages render in the same
// coloring-book style.
const StyleSuffix = "Coloring book style, black and white line art, thick bold outlines, no shading, white background."

// ExpanderOptions configures a story expander. SceneCount defaults to the
// package constant when zero.
type ExpanderOptions struct {
	Completer  textgen.Completer
	Repo       domain.JobRepository
	Logger     zerolog.Logger
	SceneCount int
}

// Expander performs the single-call story expansion: one structured request
// to the text-generation capability, defensive parsing, dense renumbering,
// one atomic scene batch write, then the job status flip to complete.
type Expander struct {
	completer  textgen.Completer
	repo       domain.JobRepository
	logger     zerolog.Logger
	sceneCount int
}

func NewExpander(opts ExpanderOptions) *Expander {
	count := opts.SceneCount
	if count <= 0 {
		count = SceneCount
	}
	return &Expander{
		completer:  opts.Completer,
		repo:       opts.Repo,
		logger:     opts.Logger,
		sceneCount: count,
	}
}

// Expand generates and persists the full story for a freshly created job.
// Display text is streamed per scene as it is accepted; image prompts never
// reach the sink. Any failure before the batch write leaves zero scenes
// persisted and the job stuck in generating, to be retried by re-running
// expansion.
func (e *Expander) Expand(ctx context.Context, job *domain.Job, sink stream.Sink) ([]stream.SceneSummary, error) {
	cfg, ok := ConfigFor(job.StoryType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown story type %q", domain.ErrValidation, job.StoryType)
	}

	raw, err := e.completer.Complete(ctx, textgen.Request{
		System:      buildSystemPrompt(job, cfg, e.sceneCount),
		User:        buildUserPrompt(job, cfg, e.sceneCount),
		Temperature: 0.8,
		MaxTokens:   16000,
	})
	if err != nil {
		return nil, fmt.Errorf("story generation: %w", err)
	}

	payloads, err := parseScenes(raw, e.sceneCount)
	if err != nil {
		e.logger.Error().Err(err).Str("job_id", job.ID).Msg("expansion parse failed")
		return nil, err
	}

	scenes := make([]domain.Scene, len(payloads))
	summaries := make([]stream.SceneSummary, len(payloads))
	for i, p := range payloads {
		prompt := strings.TrimSpace(p.ImagePrompt)
		if !strings.HasSuffix(prompt, StyleSuffix) {
			prompt = strings.TrimSuffix(prompt, ".") + ". " + StyleSuffix
		}
		scenes[i] = domain.Scene{
			JobID:       job.ID,
			SceneNumber: p.SceneNumber,
			StoryText:   strings.TrimSpace(p.StoryText),
			ImagePrompt: prompt,
		}
		summaries[i] = stream.SceneSummary{SceneNumber: p.SceneNumber, StoryText: scenes[i].StoryText}
		if err := sink.Send(stream.Scene(p.SceneNumber, scenes[i].StoryText)); err != nil {
			e.logger.Warn().Err(err).Int("scene", p.SceneNumber).Msg("scene event dropped")
		}
	}

	if err := e.repo.SaveScenes(ctx, job.ID, scenes); err != nil {
		return nil, fmt.Errorf("save scenes: %w", err)
	}
	if err := e.repo.UpdateJobStatus(ctx, job.ID, domain.JobStatusComplete); err != nil {
		return nil, fmt.Errorf("update job status: %w", err)
	}
	e.logger.Info().Str("job_id", job.ID).Int("scenes", len(scenes)).Msg("story expanded")
	return summaries, nil
}

func buildSystemPrompt(job *domain.Job, cfg Config, sceneCount int) string {
	description := job.CharacterDescription
	if description == "" {
		description = "A young child with a friendly smile"
	}
	points := paddedPlotPoints(job.PlotPoints)
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "You are a children's book author creating a %d-scene illustrated storybook.\n", sceneCount)
	fmt.Fprintf(sb, "Your task is to write a complete story with exactly %d scenes.\n\n", sceneCount)
	sb.WriteString("For EACH scene, you must provide:\n")
	sb.WriteString(`1. "storyText": A simple, child-friendly sentence (1-2 sentences max) that will be printed in the book` + "\n")
	sb.WriteString(`2. "imagePrompt": A detailed visual description (400-800 characters) for generating the coloring book illustration` + "\n\n")
	fmt.Fprintf(sb, "Character Details:\n- Name: %s\n- Description: %s\n\n", job.CharacterName, description)
	fmt.Fprintf(sb, "Story Type: %s\nTheme: %s\n\n", cfg.Name, cfg.Theme)
	sb.WriteString("The story should follow this arc based on user's choices:\n")
	fmt.Fprintf(sb, "- Goal/Quest: %s\n- Main Challenge: %s\n- Helper/Friend: %s\n- Resolution: %s\n\n", points[0], points[1], points[2], points[3])
	sb.WriteString("IMPORTANT for imagePrompt:\n")
	fmt.Fprintf(sb, "- Always include the character's name (%s) and physical description in the prompt.\n", job.CharacterName)
	fmt.Fprintf(sb, "- When new characters are introduced (friends, animals, siblings), EXPLICITLY describe them as distinct from %s.\n", job.CharacterName)
	fmt.Fprintf(sb, "- Describe the composition clearly (e.g., \"%s stands on the left, looking at the small cat on the right\").\n", job.CharacterName)
	fmt.Fprintf(sb, "- End each imagePrompt with: %q\n", StyleSuffix)
	fmt.Fprintf(sb, "- Maintain consistency in %s's appearance, but ensure other characters look completely different.\n\n", job.CharacterName)
	fmt.Fprintf(sb, "Respond with a JSON array of exactly %d scene objects. No markdown, just valid JSON.", sceneCount)
	return sb.String()
}

func buildUserPrompt(job *domain.Job, cfg Config, sceneCount int) string {
	points := paddedPlotPoints(job.PlotPoints)
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Create a %d-scene %s for %s.\n\n", sceneCount, strings.ToLower(cfg.Name), job.CharacterName)
	sb.WriteString("Plot points from the user:\n")
	fmt.Fprintf(sb, "1. Goal: %s\n2. Challenge: %s\n3. Helper: %s\n4. Resolution: %s\n\n", points[0], points[1], points[2], points[3])
	fmt.Fprintf(sb, "Generate the complete story now as a JSON array of %d scenes, each with \"sceneNumber\", \"storyText\", and \"imagePrompt\" fields.", sceneCount)
	return sb.String()
}

func paddedPlotPoints(points []string) [domain.PlotPointCount]string {
	padded := [domain.PlotPointCount]string{
		"an exciting adventure",
		"a difficult obstacle",
		"a new friend",
		"a happy ending",
	}
	for i := 0; i < len(points) && i < domain.PlotPointCount; i++ {
		if strings.TrimSpace(points[i]) != "" {
			padded[i] = points[i]
		}
	}
	return padded
}
