package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
)

// --- Vision service (/detect, /classify) ---

type FaceBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type DetectResp struct {
	Faces []FaceBox `json:"faces"`
}

type ClassifyResp struct {
	Label string    `json:"label"`
	Probs []float64 `json:"probs"`
}

// DetectFaces posts a frame as JPEG and returns the face rectangles found.
func (h *HTTP) DetectFaces(ctx context.Context, url string, frame image.Image) ([]image.Rectangle, error) {
	b, contentType, err := jpegForm(frame, "frame.jpg")
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/detect", b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("detect %s: %s", resp.Status, string(body))
	}

	var out DetectResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("detect decode: %w", err)
	}
	rects := make([]image.Rectangle, 0, len(out.Faces))
	for _, f := range out.Faces {
		rects = append(rects, image.Rect(f.X, f.Y, f.X+f.W, f.Y+f.H))
	}
	return rects, nil
}

// ClassifyFace posts a 48x48 grayscale crop and returns the winning label
// with the full probability vector.
func (h *HTTP) ClassifyFace(ctx context.Context, url string, face *image.Gray) (string, []float64, error) {
	b, contentType, err := jpegForm(face, "face.jpg")
	if err != nil {
		return "", nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/classify", b)
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := h.c.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", nil, fmt.Errorf("classify %s: %s", resp.Status, string(body))
	}

	var out ClassifyResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", nil, fmt.Errorf("classify decode: %w", err)
	}
	return out.Label, out.Probs, nil
}

// jpegForm packs an image into a one-field multipart body.
func jpegForm(img image.Image, name string) (*bytes.Buffer, string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", err
	}
	if err := jpeg.Encode(fw, img, nil); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &b, w.FormDataContentType(), nil
}

// Vision binds the model service URL to the shared HTTP client. It covers
// both detector and classifier roles of the capture pipeline.
type Vision struct {
	h   *HTTP
	url string
}

func NewVision(h *HTTP, url string) *Vision { return &Vision{h: h, url: url} }

func (v *Vision) Detect(ctx context.Context, frame image.Image) ([]image.Rectangle, error) {
	return v.h.DetectFaces(ctx, v.url, frame)
}

func (v *Vision) Classify(ctx context.Context, face *image.Gray) (string, []float64, error) {
	return v.h.ClassifyFace(ctx, v.url, face)
}
