package book

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"storybook/internal/domain"
	"storybook/internal/providers/imagegen"
	"storybook/internal/stream"
)

// Generator renders the coloring-book page for every scene of a persisted
// job. The loop is idempotent: scenes whose page already exists are replayed
// from the store without an external call, a single page's failure never
// aborts the run, and a later invocation resumes exactly where a partial one
// left off because image writes are first-write-wins.
type Generator struct {
	repo   domain.JobRepository
	images imagegen.Generator
	logger zerolog.Logger
}

func NewGenerator(repo domain.JobRepository, images imagegen.Generator, logger zerolog.Logger) *Generator {
	return &Generator{repo: repo, images: images, logger: logger}
}

// Generate streams page progress for the job's scenes in ascending scene
// order and ends with a single terminal complete event. It returns
// domain.ErrNotFound before emitting anything when the job or its scenes are
// missing.
func (g *Generator) Generate(ctx context.Context, jobID string, sink stream.Sink) error {
	job, err := g.repo.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	scenes, err := g.repo.GetScenes(ctx, jobID)
	if err != nil {
		return err
	}
	if len(scenes) == 0 {
		return fmt.Errorf("%w: job %s has no scenes", domain.ErrNotFound, jobID)
	}

	message := fmt.Sprintf("Generating %d coloring book pages...", len(scenes))
	if err := sink.Send(stream.Started(len(scenes), message)); err != nil {
		return err
	}

	for _, scene := range scenes {
		if scene.HasImage() {
			// Cache hit: replay the stored page, no external call.
			if err := sink.Send(stream.Page(scene.SceneNumber, scene.StoryText, scene.ImageData)); err != nil {
				return err
			}
			continue
		}

		generating := fmt.Sprintf("Generating page %d...", scene.SceneNumber)
		if err := sink.Send(stream.PageGenerating(scene.SceneNumber, generating)); err != nil {
			return err
		}

		imageData, err := g.images.Generate(ctx, imagegen.GenerateRequest{
			Prompt:         scene.ImagePrompt,
			ReferenceImage: job.CharacterImage,
		})
		if err != nil {
			g.logger.Error().Err(err).Str("job_id", jobID).Int("scene", scene.SceneNumber).Msg("page generation failed")
			if err := sink.Send(stream.PageError(scene.SceneNumber, err.Error())); err != nil {
				return err
			}
			continue
		}

		// Persist before reporting; the page survives a dropped client.
		if err := g.repo.SetSceneImage(ctx, jobID, scene.SceneNumber, imageData); err != nil {
			g.logger.Error().Err(err).Str("job_id", jobID).Int("scene", scene.SceneNumber).Msg("page persist failed")
			if err := sink.Send(stream.PageError(scene.SceneNumber, "failed to store generated page")); err != nil {
				return err
			}
			continue
		}

		if err := sink.Send(stream.Page(scene.SceneNumber, scene.StoryText, imageData)); err != nil {
			return err
		}
	}

	return sink.Send(stream.BookComplete("All pages generated successfully!"))
}
