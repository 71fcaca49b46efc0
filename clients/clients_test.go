package clients

import (
	"context"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCameraHealthAndFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/frame":
			w.Header().Set("Content-Type", "image/jpeg")
			if err := jpeg.Encode(w, image.NewRGBA(image.Rect(0, 0, 64, 48)), nil); err != nil {
				t.Errorf("encode frame: %v", err)
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cam := NewCamera(NewHTTP(), srv.URL)
	if err := cam.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	img, err := cam.Frame(context.Background())
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Fatalf("expected 64x48 frame, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestCameraHealthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no video device", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cam := NewCamera(NewHTTP(), srv.URL)
	err := cam.Open(context.Background())
	if err == nil {
		t.Fatalf("expected error from failing daemon")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "no video device") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
}

func TestDetectFacesPostsMultipartJPEG(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" {
			http.NotFound(w, r)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer f.Close()
		if hdr.Filename != "frame.jpg" {
			t.Errorf("expected frame.jpg, got %q", hdr.Filename)
		}
		if _, err := jpeg.Decode(f); err != nil {
			t.Errorf("uploaded frame is not JPEG: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"faces":[{"x":5,"y":6,"w":40,"h":30}]}`))
	}))
	defer srv.Close()

	v := NewVision(NewHTTP(), srv.URL)
	rects, err := v.Detect(context.Background(), image.NewGray(image.Rect(0, 0, 120, 90)))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(rects) != 1 {
		t.Fatalf("expected 1 rectangle, got %d", len(rects))
	}
	if want := image.Rect(5, 6, 45, 36); rects[0] != want {
		t.Fatalf("expected %v, got %v", want, rects[0])
	}
}

func TestClassifyFace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/classify" {
			http.NotFound(w, r)
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer f.Close()
		img, err := jpeg.Decode(f)
		if err != nil {
			t.Errorf("uploaded crop is not JPEG: %v", err)
		} else if b := img.Bounds(); b.Dx() != 48 || b.Dy() != 48 {
			t.Errorf("expected 48x48 crop, got %dx%d", b.Dx(), b.Dy())
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"label":"happy","probs":[0.01,0.01,0.02,0.9,0.02,0.02,0.02]}`))
	}))
	defer srv.Close()

	v := NewVision(NewHTTP(), srv.URL)
	label, probs, err := v.Classify(context.Background(), image.NewGray(image.Rect(0, 0, 48, 48)))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if label != "happy" {
		t.Fatalf("expected happy, got %q", label)
	}
	if len(probs) != 7 || probs[3] != 0.9 {
		t.Fatalf("expected full probability vector, got %v", probs)
	}
}

func TestVisionErrorPaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/detect":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"faces":`)) // truncated
		case "/classify":
			http.Error(w, "model not loaded", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	v := NewVision(NewHTTP(), srv.URL)
	if _, err := v.Detect(context.Background(), image.NewGray(image.Rect(0, 0, 10, 10))); err == nil || !strings.Contains(err.Error(), "detect decode") {
		t.Fatalf("expected detect decode error, got %v", err)
	}
	if _, _, err := v.Classify(context.Background(), image.NewGray(image.Rect(0, 0, 48, 48))); err == nil || !strings.Contains(err.Error(), "classify 500") {
		t.Fatalf("expected classify status error, got %v", err)
	}
}
