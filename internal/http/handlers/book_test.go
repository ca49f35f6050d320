package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"storybook/internal/domain"
)

const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func seedBookJob(repo *stubRepo, jobID string, total int, cached map[int]string) {
	repo.jobs[jobID] = &domain.Job{
		ID:            jobID,
		CharacterName: "Max",
		StoryType:     domain.StoryTypeAdventure,
		Status:        domain.JobStatusComplete,
	}
	var scenes []domain.Scene
	for n := 1; n <= total; n++ {
		scene := domain.Scene{
			JobID:       jobID,
			SceneNumber: n,
			StoryText:   "Max goes on.",
			ImagePrompt: "Max walking.",
			ImageData:   cached[n],
		}
		scenes = append(scenes, scene)
	}
	repo.scenes[jobID] = scenes
}

func TestBookGenerateUnknownJob(t *testing.T) {
	t.Parallel()
	router := testRouter(t, newStubRepo(), &stubCompleter{}, &stubImages{})
	rec := postJSON(t, router, "/api/book/generate", map[string]any{"jobId": "missing"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json (channel never opened)", ct)
	}
}

func TestBookGenerateMissingJobID(t *testing.T) {
	t.Parallel()
	router := testRouter(t, newStubRepo(), &stubCompleter{}, &stubImages{})
	rec := postJSON(t, router, "/api/book/generate", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBookGenerateStreamsPages(t *testing.T) {
	t.Parallel()
	repo := newStubRepo()
	seedBookJob(repo, "job-1", 4, map[int]string{1: "data:image/png;base64,cached-1"})
	images := &stubImages{}
	router := testRouter(t, repo, &stubCompleter{}, images)

	rec := postJSON(t, router, "/api/book/generate", map[string]any{"jobId": "job-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	events := decodeEvents(t, rec)

	if events[0]["type"] != "started" || int(events[0]["totalPages"].(float64)) != 4 {
		t.Fatalf("first event = %+v, want started with 4 pages", events[0])
	}
	if events[len(events)-1]["type"] != "complete" {
		t.Fatalf("terminal event = %+v, want complete", events[len(events)-1])
	}

	var pages, generating int
	for _, event := range events {
		switch event["type"] {
		case "page":
			pages++
		case "generating":
			generating++
		}
	}
	if pages != 4 {
		t.Fatalf("page events = %d, want 4", pages)
	}
	if generating != 3 {
		t.Fatalf("generating events = %d, want 3 (scene 1 is a cache hit)", generating)
	}
	if images.calls != 3 {
		t.Fatalf("external calls = %d, want 3", images.calls)
	}
}

func TestBookDownloadReturnsPDF(t *testing.T) {
	t.Parallel()
	repo := newStubRepo()
	seedBookJob(repo, "job-1", 2, map[int]string{1: "data:image/png;base64," + tinyPNG})
	router := testRouter(t, repo, &stubCompleter{}, &stubImages{})

	req := httptest.NewRequest(http.MethodGet, "/api/book/job-1/download", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("Content-Type = %q, want application/pdf", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("body does not look like a PDF document")
	}
}

func TestBookDownloadUnknownJob(t *testing.T) {
	t.Parallel()
	router := testRouter(t, newStubRepo(), &stubCompleter{}, &stubImages{})
	req := httptest.NewRequest(http.MethodGet, "/api/book/missing/download", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
