package clients

import (
	"net/http"
	"time"
)

type HTTP struct{ c *http.Client }

func NewHTTP() *HTTP { return &HTTP{c: &http.Client{Timeout: 60 * time.Second}} }

// NewHTTPWithTimeout serves latency-sensitive callers like the frame loop,
// where a hung request must fail fast.
func NewHTTPWithTimeout(d time.Duration) *HTTP { return &HTTP{c: &http.Client{Timeout: d}} }
