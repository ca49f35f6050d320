package stream

// Event payloads for the wizard and book streams. Every event is a
// self-contained record discriminated by its Type field; the Emitter frames
// each one as a single server-sent-event data line.

// SceneSummary is the caller-visible slice of a scene. The image prompt is
// internal-only and never leaves the server through the wizard stream.
type SceneSummary struct {
	SceneNumber int    `json:"sceneNumber"`
	StoryText   string `json:"storyText"`
}

// PromptEvent carries the next wizard question to the caller.
type PromptEvent struct {
	Type              string   `json:"type"`
	InteractionNumber int      `json:"interactionNumber"`
	Text              string   `json:"text"`
	PlotPoints        []string `json:"plotPoints,omitempty"`
	TotalInteractions int      `json:"totalInteractions"`
	IsRedo            bool     `json:"isRedo,omitempty"`
}

// GeneratingStoryEvent announces that full-story expansion has begun.
type GeneratingStoryEvent struct {
	Type       string   `json:"type"`
	Message    string   `json:"message"`
	JobID      string   `json:"jobId"`
	PlotPoints []string `json:"plotPoints"`
}

// SceneEvent streams one accepted scene's display text during expansion.
type SceneEvent struct {
	Type        string `json:"type"`
	SceneNumber int    `json:"sceneNumber"`
	StoryText   string `json:"storyText"`
}

// StoryCompleteEvent terminates a successful wizard/expansion stream.
type StoryCompleteEvent struct {
	Type        string         `json:"type"`
	JobID       string         `json:"jobId"`
	TotalScenes int            `json:"totalScenes"`
	Scenes      []SceneSummary `json:"scenes"`
}

// StartedEvent opens a book-generation stream.
type StartedEvent struct {
	Type       string `json:"type"`
	Message    string `json:"message,omitempty"`
	TotalPages int    `json:"totalPages"`
}

// PageGeneratingEvent announces that one page's image call is in flight.
type PageGeneratingEvent struct {
	Type        string `json:"type"`
	SceneNumber int    `json:"sceneNumber"`
	Message     string `json:"message,omitempty"`
}

// PageEvent delivers one rendered page, whether freshly generated or read
// back from the store.
type PageEvent struct {
	Type        string `json:"type"`
	SceneNumber int    `json:"sceneNumber"`
	StoryText   string `json:"storyText"`
	ImageData   string `json:"imageData"`
}

// PageErrorEvent reports a single page's failure; the loop continues.
type PageErrorEvent struct {
	Type        string `json:"type"`
	SceneNumber int    `json:"sceneNumber"`
	Message     string `json:"message"`
}

// BookCompleteEvent terminates a book-generation stream.
type BookCompleteEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// CharacterStageEvent announces one step of the character transformation.
type CharacterStageEvent struct {
	Type    string `json:"type"`
	Stage   string `json:"stage"`
	Message string `json:"message,omitempty"`
}

// CharacterPreviewEvent carries a progressive render of the cartoon step.
type CharacterPreviewEvent struct {
	Type  string `json:"type"`
	Image string `json:"image"`
}

// CharacterCompleteEvent terminates a character stream with the final
// coloring-book character image.
type CharacterCompleteEvent struct {
	Type  string `json:"type"`
	Image string `json:"image"`
}

// ErrorEvent is the terminal event of any failed stream.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func Prompt(interaction int, text string, plotPoints []string, redo bool) PromptEvent {
	return PromptEvent{
		Type:              "prompt",
		InteractionNumber: interaction,
		Text:              text,
		PlotPoints:        plotPoints,
		TotalInteractions: TotalInteractions,
		IsRedo:            redo,
	}
}

func GeneratingStory(message, jobID string, plotPoints []string) GeneratingStoryEvent {
	return GeneratingStoryEvent{Type: "generating", Message: message, JobID: jobID, PlotPoints: plotPoints}
}

func Scene(number int, text string) SceneEvent {
	return SceneEvent{Type: "scene", SceneNumber: number, StoryText: text}
}

func StoryComplete(jobID string, scenes []SceneSummary) StoryCompleteEvent {
	return StoryCompleteEvent{Type: "complete", JobID: jobID, TotalScenes: len(scenes), Scenes: scenes}
}

func Started(totalPages int, message string) StartedEvent {
	return StartedEvent{Type: "started", Message: message, TotalPages: totalPages}
}

func PageGenerating(number int, message string) PageGeneratingEvent {
	return PageGeneratingEvent{Type: "generating", SceneNumber: number, Message: message}
}

func Page(number int, text, imageData string) PageEvent {
	return PageEvent{Type: "page", SceneNumber: number, StoryText: text, ImageData: imageData}
}

func PageError(number int, message string) PageErrorEvent {
	return PageErrorEvent{Type: "page_error", SceneNumber: number, Message: message}
}

func BookComplete(message string) BookCompleteEvent {
	return BookCompleteEvent{Type: "complete", Message: message}
}

func CharacterStage(stage, message string) CharacterStageEvent {
	return CharacterStageEvent{Type: "generating", Stage: stage, Message: message}
}

func CharacterPreview(image string) CharacterPreviewEvent {
	return CharacterPreviewEvent{Type: "preview", Image: image}
}

func CharacterComplete(image string) CharacterCompleteEvent {
	return CharacterCompleteEvent{Type: "complete", Image: image}
}

func Error(message string) ErrorEvent {
	return ErrorEvent{Type: "error", Message: message}
}

// TotalInteractions counts the story-type selection plus the four wizard
// questions, as reported to the caller in prompt events.
const TotalInteractions = 5
