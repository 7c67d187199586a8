package session

import (
	"time"

	"go.uber.org/atomic"

	"github.com/ironsheep/scan-highlights/internal/geometry"
	"github.com/ironsheep/scan-highlights/internal/highlight"
)

// Snapshot is one frame's published highlights. It must not be modified after
// it has been passed to Store.Publish.
type Snapshot struct {
	Seq        uint64                `json:"seq"`
	Frame      highlight.FrameInfo   `json:"frame"`
	Viewport   geometry.Size         `json:"viewport"`
	Highlights []highlight.Highlight `json:"highlights"`
	Warnings   []highlight.Warning   `json:"warnings,omitempty"`
	BuiltAt    time.Time             `json:"builtAt"`
	BuildTime  time.Duration         `json:"buildTimeNs"`
}

// Store holds the most recent snapshot. The zero value is ready to use.
type Store struct {
	latest atomic.Pointer[Snapshot]
	seq    atomic.Uint64
}

// Publish stamps s with the next sequence number and makes it current.
func (st *Store) Publish(s *Snapshot) {
	s.Seq = st.seq.Inc()
	st.latest.Store(s)
}

// Latest returns the current snapshot, or nil before the first publish.
func (st *Store) Latest() *Snapshot {
	return st.latest.Load()
}

// Highlights returns the current highlights, or nil before the first publish.
func (st *Store) Highlights() []highlight.Highlight {
	if s := st.Latest(); s != nil {
		return s.Highlights
	}
	return nil
}
