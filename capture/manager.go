package capture

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultFPS      = 6.0
	defaultInterval = 10 * time.Second
	joinTimeout     = 2 * time.Second
)

// Options configure the capture stack.
type Options struct {
	Source     FrameSource
	Detector   FaceDetector
	Classifier Classifier

	// FPS caps how often the sampler classifies a frame.
	FPS float64
	// Interval is the gap between emotion log lines.
	Interval time.Duration
	// ExportsDir receives the per-session emotion logs.
	ExportsDir string
}

// Manager owns the sampler and writer lifecycles. One mutex covers the
// session set and the start/stop decisions so a Begin racing an emptying
// End can never strand a session without workers.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]struct{}

	sampler *Sampler
	writer  *Writer
	latest  *latestCell

	samplerStop context.CancelFunc
	samplerDone chan struct{}
	writerStop  context.CancelFunc
	writerDone  chan struct{}

	log *logrus.Entry
}

func NewManager(o Options) *Manager {
	if o.FPS <= 0 {
		o.FPS = defaultFPS
	}
	if o.Interval <= 0 {
		o.Interval = defaultInterval
	}
	latest := &latestCell{}
	m := &Manager{
		sessions: map[string]struct{}{},
		latest:   latest,
		log:      logrus.WithField("component", "capture"),
	}
	m.sampler = &Sampler{
		source:     o.Source,
		detector:   o.Detector,
		classifier: o.Classifier,
		fps:        o.FPS,
		latest:     latest,
		log:        logrus.WithField("component", "sampler"),
	}
	m.writer = &Writer{
		dir:      o.ExportsDir,
		interval: o.Interval,
		latest:   latest,
		log:      logrus.WithField("component", "emotion-writer"),
	}
	return m
}

// Begin adds a session and makes sure both workers run. Beginning a session
// that is already active is a no-op.
func (m *Manager) Begin(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = struct{}{}
	m.writer.setActive(m.sessionIDsLocked())
	m.startLocked()
	m.log.WithFields(logrus.Fields{"session": sessionID, "active": len(m.sessions)}).Info("capture session started")
}

// End removes a session. Removing the last one stops the writer first, then
// the sampler. Ending an unknown session only runs the empty-set check.
func (m *Manager) End(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	m.writer.setActive(m.sessionIDsLocked())
	m.log.WithFields(logrus.Fields{"session": sessionID, "active": len(m.sessions)}).Info("capture session stopped")
	if len(m.sessions) == 0 {
		m.stopLocked()
	}
}

// Status is the live capture state.
type Status struct {
	Active        []string     `json:"active_sessions"`
	CameraRunning bool         `json:"camera_running"`
	LoggerRunning bool         `json:"logger_running"`
	Latest        *Observation `json:"latest"`
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		Active:        m.sessionIDsLocked(),
		CameraRunning: running(m.samplerDone),
		LoggerRunning: running(m.writerDone),
		Latest:        m.latest.snapshot(),
	}
}

// Latest exposes the sampler's newest observation.
func (m *Manager) Latest() *Observation {
	return m.latest.snapshot()
}

func (m *Manager) sessionIDsLocked() []string {
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// startLocked (re)starts any worker that is not alive. A sampler that died
// on a failed camera open gets a fresh attempt on the next Begin.
func (m *Manager) startLocked() {
	if !running(m.samplerDone) {
		if m.samplerStop != nil {
			m.samplerStop()
		}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		m.samplerStop, m.samplerDone = cancel, done
		go func() {
			defer close(done)
			m.sampler.run(ctx)
		}()
	}
	if !running(m.writerDone) {
		if m.writerStop != nil {
			m.writerStop()
		}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		m.writerStop, m.writerDone = cancel, done
		go func() {
			defer close(done)
			m.writer.run(ctx)
		}()
	}
}

func (m *Manager) stopLocked() {
	if m.writerDone != nil {
		m.writerStop()
		m.join(m.writerDone, "writer")
		m.writerStop, m.writerDone = nil, nil
	}
	if m.samplerDone != nil {
		m.samplerStop()
		m.join(m.samplerDone, "sampler")
		m.samplerStop, m.samplerDone = nil, nil
	}
}

func (m *Manager) join(done chan struct{}, name string) {
	select {
	case <-done:
	case <-time.After(joinTimeout):
		m.log.WithField("worker", name).Warn("worker did not stop in time, abandoning")
	}
}

func running(done chan struct{}) bool {
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}
