package book

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"storybook/internal/domain"
)

// AssemblePDF renders every persisted scene of a job into a US-Letter PDF,
// one page per scene with the illustration on top and the story text beneath.
// Scenes whose image is still missing get a placeholder so a partially
// generated book still downloads.
func AssemblePDF(ctx context.Context, repo domain.JobRepository, jobID string) ([]byte, error) {
	scenes, err := repo.GetScenes(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(scenes) == 0 {
		return nil, fmt.Errorf("%w: job %s has no scenes", domain.ErrNotFound, jobID)
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pageWidth, _ := pdf.GetPageSize()

	for _, scene := range scenes {
		pdf.AddPage()

		img, err := decodeDataURL(scene.ImageData)
		if err == nil {
			name := fmt.Sprintf("scene-%d", scene.SceneNumber)
			opts := fpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
			// Centered 500pt square, matching the on-screen preview layout.
			pdf.ImageOptions(name, (pageWidth-500)/2, 60, 500, 500, false, opts, 0, "")
		} else {
			pdf.SetFont("Helvetica", "I", 14)
			pdf.SetY(300)
			pdf.CellFormat(pageWidth, 20, "[Image generating...]", "", 1, "C", false, 0, "")
		}

		pdf.SetFont("Helvetica", "", 16)
		pdf.SetY(600)
		pdf.SetX((pageWidth - 500) / 2)
		pdf.MultiCell(500, 21, scene.StoryText, "", "C", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeDataURL(data string) ([]byte, error) {
	if data == "" {
		return nil, fmt.Errorf("no image data")
	}
	_, encoded, found := strings.Cut(data, "base64,")
	if !found {
		return nil, fmt.Errorf("not a base64 data url")
	}
	return base64.StdEncoding.DecodeString(encoded)
}
