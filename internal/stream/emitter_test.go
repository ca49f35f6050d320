package stream

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEmitterFramesEvents(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	emitter := NewEmitter(rec)

	if emitter.Sent() {
		t.Fatal("Sent() true before any event")
	}
	if err := emitter.Send(Prompt(1, "What is Max searching for?", nil, false)); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if err := emitter.Send(Error("boom")); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if !emitter.Sent() {
		t.Fatal("Sent() false after events")
	}

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Fatalf("Cache-Control = %q, want no-cache", got)
	}

	body := rec.Body.String()
	frames := strings.Split(strings.TrimSuffix(body, "\n\n"), "\n\n")
	if len(frames) != 2 {
		t.Fatalf("frames = %d, want 2; body: %q", len(frames), body)
	}
	for _, frame := range frames {
		if !strings.HasPrefix(frame, "data: ") {
			t.Fatalf("frame missing data prefix: %q", frame)
		}
		if !json.Valid([]byte(strings.TrimPrefix(frame, "data: "))) {
			t.Fatalf("frame payload is not JSON: %q", frame)
		}
	}
}

func TestEmitterRefusesEventsAfterClose(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	emitter := NewEmitter(rec)

	if err := emitter.Send(BookComplete("done")); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	emitter.Close()
	emitter.Close() // closing twice is a no-op

	err := emitter.Send(Error("late"))
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("Send after close = %v, want ErrClosed", err)
	}
	if strings.Contains(rec.Body.String(), "late") {
		t.Fatal("event written after close")
	}
}

func TestEventPayloadShapes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		event any
		want  map[string]any
	}{
		{
			name:  "prompt",
			event: Prompt(2, "Next?", []string{"a key"}, false),
			want:  map[string]any{"type": "prompt", "interactionNumber": float64(2), "text": "Next?", "totalInteractions": float64(TotalInteractions)},
		},
		{
			name:  "scene",
			event: Scene(3, "Max climbs."),
			want:  map[string]any{"type": "scene", "sceneNumber": float64(3), "storyText": "Max climbs."},
		},
		{
			name:  "page",
			event: Page(7, "Max flies.", "data:image/png;base64,xx"),
			want:  map[string]any{"type": "page", "sceneNumber": float64(7), "storyText": "Max flies.", "imageData": "data:image/png;base64,xx"},
		},
		{
			name:  "page_error",
			event: PageError(7, "quota"),
			want:  map[string]any{"type": "page_error", "sceneNumber": float64(7), "message": "quota"},
		},
		{
			name:  "started",
			event: Started(25, ""),
			want:  map[string]any{"type": "started", "totalPages": float64(25)},
		},
		{
			name:  "character_stage",
			event: CharacterStage("cartoon", "Generating cartoon..."),
			want:  map[string]any{"type": "generating", "stage": "cartoon", "message": "Generating cartoon..."},
		},
		{
			name:  "character_preview",
			event: CharacterPreview("data:image/png;base64,xx"),
			want:  map[string]any{"type": "preview", "image": "data:image/png;base64,xx"},
		},
		{
			name:  "error",
			event: Error("nope"),
			want:  map[string]any{"type": "error", "message": "nope"},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			payload, err := json.Marshal(tc.event)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var decoded map[string]any
			if err := json.Unmarshal(payload, &decoded); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			for key, want := range tc.want {
				if decoded[key] != want {
					t.Fatalf("%s = %v, want %v", key, decoded[key], want)
				}
			}
		})
	}
}
