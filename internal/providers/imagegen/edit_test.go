package imagegen

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func sseResponse(body string) *http.Response {
	resp := jsonResponse(http.StatusOK, body)
	resp.Header.Set("Content-Type", "text/event-stream")
	return resp
}

func TestEditStreamsPartialImages(t *testing.T) {
	t.Parallel()
	var captured *http.Request
	gen, err := NewOpenAIGenerator(OpenAIOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			captured = r
			body := "data: {\"b64_json\":\"cDE=\"}\n\n" +
				"data: {\"data\":[{\"b64_json\":\"cDI=\"}]}\n\n" +
				"data: [DONE]\n\n"
			return sseResponse(body), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewOpenAIGenerator returned error: %v", err)
	}

	var partials []string
	final, err := gen.Edit(context.Background(), EditRequest{
		Image:         []byte("png bytes"),
		Prompt:        "make it a cartoon",
		Model:         "gpt-image-1",
		PartialImages: 3,
	}, func(img string) {
		partials = append(partials, img)
	})
	if err != nil {
		t.Fatalf("Edit returned error: %v", err)
	}
	if final != "data:image/png;base64,cDI=" {
		t.Fatalf("final image = %q, want the last streamed render", final)
	}
	if len(partials) != 2 {
		t.Fatalf("partial callbacks = %d, want 2", len(partials))
	}

	if captured.URL.Path != "/v1/images/edits" {
		t.Fatalf("path = %q, want /v1/images/edits", captured.URL.Path)
	}
	if err := captured.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart request: %v", err)
	}
	if got := captured.FormValue("model"); got != "gpt-image-1" {
		t.Fatalf("model = %q", got)
	}
	if got := captured.FormValue("stream"); got != "true" {
		t.Fatalf("stream field = %q, want true", got)
	}
	if got := captured.FormValue("partial_images"); got != "3" {
		t.Fatalf("partial_images = %q, want 3", got)
	}
	if captured.MultipartForm == nil || len(captured.MultipartForm.File["image"]) != 1 {
		t.Fatal("image file part missing from form")
	}
}

func TestEditSingleShot(t *testing.T) {
	t.Parallel()
	gen, err := NewOpenAIGenerator(OpenAIOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("parse multipart request: %v", err)
			}
			if r.FormValue("stream") != "" {
				t.Fatalf("stream field = %q, want absent", r.FormValue("stream"))
			}
			if r.FormValue("model") != defaultImageModel {
				t.Fatalf("model = %q, want the generator default", r.FormValue("model"))
			}
			return jsonResponse(http.StatusOK, `{"data":[{"b64_json":"ZmluYWw="}]}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewOpenAIGenerator returned error: %v", err)
	}

	final, err := gen.Edit(context.Background(), EditRequest{
		Image:  []byte("png bytes"),
		Prompt: "line art",
	}, nil)
	if err != nil {
		t.Fatalf("Edit returned error: %v", err)
	}
	if final != "data:image/png;base64,ZmluYWw=" {
		t.Fatalf("final image = %q", final)
	}
}

func TestEditErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		req  EditRequest
		rt   roundTripFunc
	}{
		{name: "no_image", req: EditRequest{Prompt: "x"}, rt: func(r *http.Request) (*http.Response, error) {
			t.Fatal("request sent without image data")
			return nil, nil
		}},
		{name: "transport", req: EditRequest{Image: []byte("x")}, rt: func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("connection reset")
		}},
		{name: "http_status", req: EditRequest{Image: []byte("x")}, rt: func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusBadRequest, `{"error":"bad image"}`), nil
		}},
		{name: "empty_stream", req: EditRequest{Image: []byte("x"), PartialImages: 2}, rt: func(r *http.Request) (*http.Response, error) {
			return sseResponse("data: [DONE]\n\n"), nil
		}},
		{name: "no_data", req: EditRequest{Image: []byte("x")}, rt: func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"data":[]}`), nil
		}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gen, err := NewOpenAIGenerator(OpenAIOptions{
				APIKey:     "dummy",
				HTTPClient: &http.Client{Transport: tc.rt},
			})
			if err != nil {
				t.Fatalf("NewOpenAIGenerator returned error: %v", err)
			}
			if _, err := gen.Edit(context.Background(), tc.req, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestEditStreamDiscardsJunkLines(t *testing.T) {
	t.Parallel()
	body := ": keepalive\n" +
		"data: not json\n\n" +
		"data: {\"b64_json\":\"b2s=\"}\n\n"
	final, err := readEditStream(strings.NewReader(body), nil)
	if err != nil {
		t.Fatalf("readEditStream returned error: %v", err)
	}
	if final != "data:image/png;base64,b2s=" {
		t.Fatalf("final image = %q", final)
	}
}
