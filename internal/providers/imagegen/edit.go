package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"storybook/internal/stream"
)

// EditRequest describes one image-to-image transformation. When
// PartialImages is positive the upstream call streams progressive renders
// and the caller's onPartial callback sees each one as it arrives.
type EditRequest struct {
	Image         []byte
	Filename      string
	Prompt        string
	Model         string
	PartialImages int
}

// Editor transforms an input image under a prompt and returns the final
// render as a data URL.
type Editor interface {
	Edit(ctx context.Context, req EditRequest, onPartial func(dataURL string)) (string, error)
}

// imageEditEvent covers the payload shapes the edits endpoint emits across
// streaming and single-shot responses.
type imageEditEvent struct {
	B64JSON string `json:"b64_json"`
	Image   string `json:"image"`
	Data    []struct {
		B64JSON string `json:"b64_json"`
		Image   string `json:"image"`
	} `json:"data"`
}

func (e imageEditEvent) dataURL() string {
	b64 := e.B64JSON
	if b64 == "" {
		b64 = e.Image
	}
	if b64 == "" && len(e.Data) > 0 {
		b64 = e.Data[0].B64JSON
		if b64 == "" {
			b64 = e.Data[0].Image
		}
	}
	if b64 == "" {
		return ""
	}
	return "data:image/png;base64," + b64
}

// Edit posts a multipart images/edits request.
func (o *OpenAIGenerator) Edit(ctx context.Context, req EditRequest, onPartial func(string)) (string, error) {
	if len(req.Image) == 0 {
		return "", errors.New("image data is required")
	}
	model := req.Model
	if model == "" {
		model = o.model
	}
	filename := req.Filename
	if filename == "" {
		filename = "image.png"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := fw.Write(req.Image); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	fields := map[string]string{
		"model":         model,
		"prompt":        req.Prompt,
		"output_format": "png",
	}
	if req.PartialImages > 0 {
		fields["stream"] = "true"
		fields["partial_images"] = strconv.Itoa(req.PartialImages)
	}
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			return "", fmt.Errorf("build form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/images/edits", o.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("image edit failed: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	if req.PartialImages > 0 {
		return readEditStream(resp.Body, onPartial)
	}

	var out imageEditEvent
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	final := out.dataURL()
	if final == "" {
		return "", errors.New("no image data in response")
	}
	return final, nil
}

// readEditStream drains the upstream event stream, reporting every partial
// render and returning the last one as the final image. The [DONE] sentinel
// and unknown payloads fall through the decoder's junk filtering.
func readEditStream(r io.Reader, onPartial func(string)) (string, error) {
	decoder := stream.NewDecoder(r)
	var last string
	for {
		payload, err := decoder.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read stream: %w", err)
		}
		var event imageEditEvent
		if json.Unmarshal(payload, &event) != nil {
			continue
		}
		if img := event.dataURL(); img != "" {
			last = img
			if onPartial != nil {
				onPartial(img)
			}
		}
	}
	if last == "" {
		return "", errors.New("stream carried no image data")
	}
	return last, nil
}

var _ Editor = (*OpenAIGenerator)(nil)
