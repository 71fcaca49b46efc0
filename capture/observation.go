// Package capture runs the live emotion pipeline: a sampler that turns
// camera frames into labeled observations, a writer that appends them to
// per-session logs, and a manager that owns both lifecycles.
package capture

import (
	"sync"
	"time"
)

// Observation is the most recent sampler output. OK distinguishes a live
// camera from a failed open; Emotion is empty when no face was visible.
type Observation struct {
	OK      bool      `json:"ok"`
	At      time.Time `json:"ts"`
	Emotion string    `json:"emotion,omitempty"`
	Probs   []float64 `json:"probs,omitempty"`
	Err     string    `json:"error,omitempty"`
}

// latestCell is a single-slot register: the sampler overwrites, readers take
// snapshots. Nobody waits on anybody.
type latestCell struct {
	mu  sync.RWMutex
	val *Observation
}

func (c *latestCell) publish(o Observation) {
	c.mu.Lock()
	c.val = &o
	c.mu.Unlock()
}

func (c *latestCell) snapshot() *Observation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.val == nil {
		return nil
	}
	o := *c.val
	return &o
}
