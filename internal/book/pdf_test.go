package book

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"storybook/internal/domain"
)

// 1x1 transparent PNG.
const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func TestAssemblePDF(t *testing.T) {
	t.Parallel()
	repo := newFakeRepo()
	seedJob(repo, "job-1", 3, nil)
	// One rendered page, two still pending; the book downloads either way.
	repo.scenes["job-1"][0].ImageData = "data:image/png;base64," + tinyPNG

	data, err := AssemblePDF(context.Background(), repo, "job-1")
	if err != nil {
		t.Fatalf("AssemblePDF returned error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output does not look like a PDF document")
	}
}

func TestAssemblePDFUnknownJob(t *testing.T) {
	t.Parallel()
	_, err := AssemblePDF(context.Background(), newFakeRepo(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestDecodeDataURL(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "data:image/png;base64," + tinyPNG},
		{name: "empty", input: "", wantErr: true},
		{name: "no_marker", input: "plain text", wantErr: true},
		{name: "bad_base64", input: "data:image/png;base64,!!!", wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			data, err := decodeDataURL(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeDataURL returned error: %v", err)
			}
			if len(data) == 0 {
				t.Fatal("decoded image is empty")
			}
		})
	}
}
