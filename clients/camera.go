package clients

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
)

// --- Camera daemon (/health, /frame) ---

// CameraHealth probes the capture daemon. A non-200 answer means the video
// device could not be acquired.
func (h *HTTP) CameraHealth(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("camera %s: %s", resp.Status, string(body))
	}
	return nil
}

// CameraFrame fetches one encoded frame, normally JPEG.
func (h *HTTP) CameraFrame(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/frame", nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("camera %s: %s", resp.Status, string(body))
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("camera decode: %w", err)
	}
	return img, nil
}

// Camera binds a daemon URL to the shared HTTP client so the capture loop
// can use it as a frame source.
type Camera struct {
	h   *HTTP
	url string
}

func NewCamera(h *HTTP, url string) *Camera { return &Camera{h: h, url: url} }

func (c *Camera) Open(ctx context.Context) error { return c.h.CameraHealth(ctx, c.url) }

func (c *Camera) Frame(ctx context.Context) (image.Image, error) {
	return c.h.CameraFrame(ctx, c.url)
}
