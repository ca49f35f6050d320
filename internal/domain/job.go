package domain

import "time"

// StoryType enumerates the supported story categories. Each type carries its
// own wizard prompts and thematic framing (see internal/story).
type StoryType string

const (
	StoryTypeAdventure StoryType = "adventure"
	StoryTypeHero      StoryType = "hero"
	StoryTypeExplorer  StoryType = "explorer"
	StoryTypeCareer    StoryType = "career"
)

// JobStatus enumerates job lifecycle states. Transitions are monotonic:
// pending -> generating -> complete, never backwards.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusGenerating JobStatus = "generating"
	JobStatusComplete   JobStatus = "complete"
)

// PlotPointCount is the number of wizard answers collected per job.
const PlotPointCount = 4

// Job is one complete conversation plus story instance. It is created exactly
// once, after the wizard has collected all plot points.
type Job struct {
	ID                   string
	CharacterName        string
	CharacterDescription string
	CharacterImage       string
	StoryType            StoryType
	PlotPoints           []string
	Status               JobStatus
	CreatedAt            time.Time
}

// Scene is one numbered unit of the expanded story. StoryText and ImagePrompt
// are set at expansion time and immutable thereafter. ImageData stays empty
// until the book generator renders the page; once set it is never overwritten.
type Scene struct {
	JobID       string
	SceneNumber int
	StoryText   string
	ImagePrompt string
	ImageData   string
}

// HasImage reports whether the scene's page has already been rendered.
func (s Scene) HasImage() bool {
	return s.ImageData != ""
}
