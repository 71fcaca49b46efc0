package capture

import (
	"context"
	"image"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// minFaceSize rejects detector output too small to classify reliably.
const minFaceSize = 20

// FrameSource provides camera frames. Open is called once per run.
type FrameSource interface {
	Open(ctx context.Context) error
	Frame(ctx context.Context) (image.Image, error)
}

// FaceDetector finds face rectangles in a frame.
type FaceDetector interface {
	Detect(ctx context.Context, frame image.Image) ([]image.Rectangle, error)
}

// Classifier labels a 48x48 grayscale face crop and returns the label with
// its per-class probabilities.
type Classifier interface {
	Classify(ctx context.Context, face *image.Gray) (string, []float64, error)
}

// Sampler pulls frames, finds the largest face and classifies it, publishing
// each result into the shared latest cell.
type Sampler struct {
	source     FrameSource
	detector   FaceDetector
	classifier Classifier
	fps        float64
	latest     *latestCell
	inferMu    sync.Mutex
	log        *logrus.Entry
}

func (s *Sampler) run(ctx context.Context) {
	if err := s.source.Open(ctx); err != nil {
		s.log.WithError(err).Error("camera open failed")
		s.latest.publish(Observation{OK: false, At: time.Now().UTC(), Err: "cannot open camera"})
		return
	}
	s.log.WithField("fps", s.fps).Info("camera opened")

	minInterval := time.Duration(float64(time.Second) / math.Max(s.fps, 1.0))
	var last time.Time
	failedReads := 0
	for {
		select {
		case <-ctx.Done():
			s.log.Info("camera loop stopped")
			return
		default:
		}
		frame, err := s.source.Frame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.log.Info("camera loop stopped")
				return
			}
			failedReads++
			if failedReads%30 == 0 {
				s.log.WithError(err).WithField("count", failedReads).Warn("frame read failing")
			}
			time.Sleep(50 * time.Millisecond)
			continue
		}
		failedReads = 0
		now := time.Now()
		if now.Sub(last) < minInterval {
			continue
		}
		last = now
		s.observe(ctx, frame)
	}
}

// observe classifies one frame. A detect or classify error costs only this
// tick; the observation still records that the camera is alive.
func (s *Sampler) observe(ctx context.Context, frame image.Image) {
	var label string
	var probs []float64

	gray := Grayscale(frame)
	faces, err := s.detector.Detect(ctx, gray)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.WithError(err).Warn("face detect failed")
		faces = nil
	}
	if r, ok := largestRegion(faces); ok && r.Dx() >= minFaceSize && r.Dy() >= minFaceSize {
		face := FaceCrop(gray, r)
		s.inferMu.Lock()
		label, probs, err = s.classifier.Classify(ctx, face)
		s.inferMu.Unlock()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.WithError(err).Warn("classify failed")
			label, probs = "", nil
		}
	}
	s.latest.publish(Observation{OK: true, At: time.Now().UTC(), Emotion: label, Probs: probs})
}
