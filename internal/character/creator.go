package character

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"storybook/internal/domain"
	"storybook/internal/providers/imagegen"
	"storybook/internal/stream"
)

// Two-step transformation: the uploaded photo becomes a cartoon portrait,
// then the cartoon becomes the clean line-art rendition the wizard carries
// as the character reference image.
const (
	cartoonModel  = "gpt-image-1"
	cartoonPrompt = "Turn this person into a 3D Disney Pixar character. Cute, big eyes, smooth skin, vibrant colors. Keep the pose and expression matching the original. White background."
	lineArtPrompt = "Convert this 3D character into a clean, black and white coloring book page. Thick bold outlines, no shading, no grayscale, pure white background. Keep the character's details recognizable but simplified for coloring."

	partialRenders = 3
)

// Creator turns an uploaded photo into the coloring-book character image.
type Creator struct {
	images imagegen.Editor
	logger zerolog.Logger
}

func NewCreator(images imagegen.Editor, logger zerolog.Logger) *Creator {
	return &Creator{images: images, logger: logger}
}

// Create runs the two-step transformation. Progressive cartoon renders
// stream out as preview events while the first step is in flight; the
// stream terminates with a single complete event carrying the line art.
func (c *Creator) Create(ctx context.Context, photo []byte, sink stream.Sink) error {
	if len(photo) == 0 {
		return fmt.Errorf("%w: image is required", domain.ErrValidation)
	}

	if err := sink.Send(stream.CharacterStage("cartoon", "Generating cartoon...")); err != nil {
		return err
	}
	cartoon, err := c.images.Edit(ctx, imagegen.EditRequest{
		Image:         photo,
		Filename:      "photo.png",
		Model:         cartoonModel,
		Prompt:        cartoonPrompt,
		PartialImages: partialRenders,
	}, func(partial string) {
		if err := sink.Send(stream.CharacterPreview(partial)); err != nil {
			c.logger.Warn().Err(err).Msg("preview event dropped")
		}
	})
	if err != nil {
		return fmt.Errorf("cartoon render: %w", err)
	}

	if err := sink.Send(stream.CharacterStage("line-art", "Converting to coloring page...")); err != nil {
		return err
	}
	cartoonBytes, err := decodeDataURL(cartoon)
	if err != nil {
		return fmt.Errorf("cartoon render: %w", err)
	}
	lineArt, err := c.images.Edit(ctx, imagegen.EditRequest{
		Image:    cartoonBytes,
		Filename: "cartoon.png",
		Prompt:   lineArtPrompt,
	}, nil)
	if err != nil {
		return fmt.Errorf("line art render: %w", err)
	}
	c.logger.Info().Msg("character image created")
	return sink.Send(stream.CharacterComplete(lineArt))
}

func decodeDataURL(data string) ([]byte, error) {
	_, encoded, found := strings.Cut(data, "base64,")
	if !found {
		return nil, fmt.Errorf("not a base64 data url")
	}
	return base64.StdEncoding.DecodeString(encoded)
}
