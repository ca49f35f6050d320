package story

import (
	"encoding/json"
	"fmt"
	"strings"

	"storybook/internal/domain"
)

type scenePayload struct {
	SceneNumber int    `json:"sceneNumber"`
	StoryText   string `json:"storyText"`
	ImagePrompt string `json:"imagePrompt"`
}

// parseScenes turns a raw model response into exactly n scenes. The blob may
// arrive wrapped in code fences or surrounding prose; numbering embedded in
// the payload is discarded and scenes are renumbered densely 1..n by
// position, which defends against duplicate or off-by-one numbers from the
// upstream generator. A scene missing its story text or image prompt fails
// the whole parse.
func parseScenes(raw string, n int) ([]scenePayload, error) {
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrExpansionParse)
	}
	var scenes []scenePayload
	if err := json.Unmarshal([]byte(cleaned), &scenes); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExpansionParse, err)
	}
	if len(scenes) < n {
		return nil, fmt.Errorf("%w: got %d scenes, want %d", domain.ErrExpansionParse, len(scenes), n)
	}
	scenes = scenes[:n]
	for i := range scenes {
		if strings.TrimSpace(scenes[i].StoryText) == "" {
			return nil, fmt.Errorf("%w: scene %d has no story text", domain.ErrExpansionParse, i+1)
		}
		if strings.TrimSpace(scenes[i].ImagePrompt) == "" {
			return nil, fmt.Errorf("%w: scene %d has no image prompt", domain.ErrExpansionParse, i+1)
		}
		scenes[i].SceneNumber = i + 1
	}
	return scenes, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "[{")
	end := strings.LastIndexAny(text, "}]")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
