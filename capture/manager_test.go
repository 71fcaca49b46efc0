package capture

import (
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sdh-lab/interview-pipeline/emotion"
)

func TestMain(m *testing.M) {
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type fakeSource struct {
	mu      sync.Mutex
	openErr error
	opens   int
	img     image.Image
}

func (f *fakeSource) Open(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	return f.openErr
}

func (f *fakeSource) Frame(ctx context.Context) (image.Image, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Millisecond):
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.img == nil {
		return nil, errors.New("read failed")
	}
	return f.img, nil
}

func (f *fakeSource) setOpenErr(err error) {
	f.mu.Lock()
	f.openErr = err
	f.mu.Unlock()
}

func (f *fakeSource) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

type fakeDetector struct {
	rects []image.Rectangle
	err   error
}

func (f *fakeDetector) Detect(ctx context.Context, frame image.Image) ([]image.Rectangle, error) {
	return f.rects, f.err
}

type fakeClassifier struct {
	mu    sync.Mutex
	label string
	probs []float64
	err   error
	crops []image.Rectangle
}

func (f *fakeClassifier) Classify(ctx context.Context, face *image.Gray) (string, []float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.crops = append(f.crops, face.Bounds())
	if f.err != nil {
		return "", nil, f.err
	}
	return f.label, f.probs, nil
}

func (f *fakeClassifier) cropCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.crops)
}

func testFrame() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 120, 90))
}

func newTestManager(src FrameSource, det FaceDetector, cls Classifier, dir string) *Manager {
	return NewManager(Options{
		Source:     src,
		Detector:   det,
		Classifier: cls,
		FPS:        200,
		Interval:   20 * time.Millisecond,
		ExportsDir: dir,
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestBeginPublishesClassifiedObservations(t *testing.T) {
	src := &fakeSource{img: testFrame()}
	det := &fakeDetector{rects: []image.Rectangle{image.Rect(10, 10, 58, 58), image.Rect(0, 0, 30, 30)}}
	cls := &fakeClassifier{label: "happy", probs: []float64{0.01, 0.01, 0.02, 0.9, 0.02, 0.02, 0.02}}
	m := newTestManager(src, det, cls, t.TempDir())

	m.Begin("sess01")
	defer m.End("sess01")

	waitFor(t, "classified observation", func() bool {
		o := m.Latest()
		return o != nil && o.OK && o.Emotion == "happy"
	})
	o := m.Latest()
	if len(o.Probs) != 7 {
		t.Fatalf("expected 7 probabilities, got %d", len(o.Probs))
	}
	if o.At.IsZero() {
		t.Fatalf("expected observation timestamp to be set")
	}

	cls.mu.Lock()
	crop := cls.crops[0]
	cls.mu.Unlock()
	if crop.Dx() != 48 || crop.Dy() != 48 {
		t.Fatalf("expected 48x48 classifier input, got %dx%d", crop.Dx(), crop.Dy())
	}
}

func TestStatusTracksLifecycle(t *testing.T) {
	src := &fakeSource{img: testFrame()}
	m := newTestManager(src, &fakeDetector{}, &fakeClassifier{label: "neutral"}, t.TempDir())

	st := m.Status()
	if len(st.Active) != 0 || st.CameraRunning || st.LoggerRunning {
		t.Fatalf("expected idle status, got %+v", st)
	}

	m.Begin("beta")
	m.Begin("alpha")
	m.Begin("beta") // repeat adds nothing
	st = m.Status()
	if !st.CameraRunning || !st.LoggerRunning {
		t.Fatalf("expected workers running, got %+v", st)
	}
	if len(st.Active) != 2 || st.Active[0] != "alpha" || st.Active[1] != "beta" {
		t.Fatalf("expected sorted active sessions, got %v", st.Active)
	}
	waitFor(t, "camera open", func() bool { return src.openCount() == 1 })
	if got := src.openCount(); got != 1 {
		t.Fatalf("expected a single camera open, got %d", got)
	}

	m.End("alpha")
	if st = m.Status(); !st.CameraRunning {
		t.Fatalf("expected camera to keep running with a session left")
	}
	m.End("beta")
	if st = m.Status(); st.CameraRunning || st.LoggerRunning {
		t.Fatalf("expected workers stopped after last session, got %+v", st)
	}
}

func TestCameraOpenFailurePublishesError(t *testing.T) {
	src := &fakeSource{openErr: errors.New("device busy"), img: testFrame()}
	m := newTestManager(src, &fakeDetector{}, &fakeClassifier{}, t.TempDir())

	m.Begin("sess01")
	defer m.End("sess01")

	waitFor(t, "camera error state", func() bool {
		o := m.Latest()
		return o != nil && !o.OK
	})
	if o := m.Latest(); o.Err != "cannot open camera" {
		t.Fatalf("expected cannot open camera, got %q", o.Err)
	}
	waitFor(t, "sampler exit", func() bool { return !m.Status().CameraRunning })
	if !m.Status().LoggerRunning {
		t.Fatalf("expected logger to keep running after camera failure")
	}
}

func TestBeginRetriesFailedCamera(t *testing.T) {
	src := &fakeSource{openErr: errors.New("device busy"), img: testFrame()}
	m := newTestManager(src, &fakeDetector{}, &fakeClassifier{label: "neutral"}, t.TempDir())

	m.Begin("sess01")
	waitFor(t, "sampler exit", func() bool { return !m.Status().CameraRunning })
	m.End("sess01")

	src.setOpenErr(nil)
	m.Begin("sess01")
	defer m.End("sess01")

	waitFor(t, "recovered observation", func() bool {
		o := m.Latest()
		return o != nil && o.OK
	})
	if got := src.openCount(); got != 2 {
		t.Fatalf("expected 2 open attempts, got %d", got)
	}
}

func TestTicksWithoutUsableFace(t *testing.T) {
	cases := []struct {
		name  string
		rects []image.Rectangle
	}{
		{"no face", nil},
		{"face below minimum size", []image.Rectangle{image.Rect(0, 0, 12, 12)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{img: testFrame()}
			cls := &fakeClassifier{label: "happy"}
			m := newTestManager(src, &fakeDetector{rects: tc.rects}, cls, t.TempDir())

			m.Begin("sess01")
			defer m.End("sess01")

			waitFor(t, "idle observation", func() bool {
				o := m.Latest()
				return o != nil && o.OK
			})
			if o := m.Latest(); o.Emotion != "" || o.Probs != nil {
				t.Fatalf("expected unlabeled observation, got %+v", o)
			}
			if got := cls.cropCount(); got != 0 {
				t.Fatalf("expected classifier untouched, got %d calls", got)
			}
		})
	}
}

func TestClassifyErrorStillTicks(t *testing.T) {
	src := &fakeSource{img: testFrame()}
	det := &fakeDetector{rects: []image.Rectangle{image.Rect(0, 0, 48, 48)}}
	cls := &fakeClassifier{err: errors.New("model down")}
	m := newTestManager(src, det, cls, t.TempDir())

	m.Begin("sess01")
	defer m.End("sess01")

	waitFor(t, "observation despite classify error", func() bool {
		o := m.Latest()
		return o != nil && o.OK
	})
	if o := m.Latest(); o.Emotion != "" {
		t.Fatalf("expected no label on classify error, got %q", o.Emotion)
	}
}

func TestManagerWritesEmotionLog(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{img: testFrame()}
	det := &fakeDetector{rects: []image.Rectangle{image.Rect(10, 10, 58, 58)}}
	cls := &fakeClassifier{label: "happy", probs: []float64{0, 0, 0, 1, 0, 0, 0}}
	m := newTestManager(src, det, cls, dir)

	m.Begin("sess01")
	path := filepath.Join(dir, "emotion_sess01.txt")
	waitFor(t, "happy log line", func() bool {
		b, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		for _, ev := range emotion.ParseLog(string(b)) {
			if ev.Label == "happy" {
				return true
			}
		}
		return false
	})
	m.End("sess01")
}
