package provider

import (
	"sync"

	"github.com/Belphemur/AnimeProviders/internal/models"
)

// Emitter serialises callback invocations coming from concurrent resolvers
// and keeps the link summary counters
type Emitter struct {
	mu         sync.Mutex
	onSubtitle SubtitleCallback
	onStream   StreamCallback
	summary    models.LinkSummary
}

// NewEmitter wraps the caller callbacks; nil callbacks are ignored
func NewEmitter(onSubtitle SubtitleCallback, onStream StreamCallback) *Emitter {
	return &Emitter{onSubtitle: onSubtitle, onStream: onStream}
}

// Stream forwards s to the stream callback
func (e *Emitter) Stream(s models.StreamCandidate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.summary.Emitted++
	if e.onStream != nil {
		e.onStream(s)
	}
}

// Subtitle forwards s to the subtitle callback
func (e *Emitter) Subtitle(s models.SubtitleRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.onSubtitle != nil {
		e.onSubtitle(s)
	}
}

// Candidates records n discovered link candidates
func (e *Emitter) Candidates(n int) {
	e.mu.Lock()
	e.summary.Candidates += n
	e.mu.Unlock()
}

// Failed records a candidate that could not be resolved
func (e *Emitter) Failed() {
	e.mu.Lock()
	e.summary.Failed++
	e.mu.Unlock()
}

// Summary returns a snapshot of the counters
func (e *Emitter) Summary() models.LinkSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summary
}
