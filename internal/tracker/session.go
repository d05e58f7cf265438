package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/rewired-gh/putcall/internal/models"
)

// Session owns the single tracker state for a running program and
// serializes the front-ends that drive it.
type Session struct {
	mu      sync.Mutex
	tracker *Tracker
	state   models.TrackerState
	now     func() time.Time
}

// NewSession restores persisted history and returns a ready session.
// A nil clock uses time.Now.
func NewSession(ctx context.Context, t *Tracker, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		tracker: t,
		state:   t.Restore(ctx, now()),
		now:     now,
	}
}

// Analyze runs one analysis and returns the rows to display. On invalid
// input the state is unchanged and the error wraps ErrNotNumeric.
func (s *Session) Analyze(ctx context.Context, putRaw, callRaw string) ([]models.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.tracker.Analyze(ctx, s.state, putRaw, callRaw, s.now())
	s.state = next
	return Render(s.state), err
}

func (s *Session) Reset(ctx context.Context) []models.Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.tracker.Reset(ctx, s.state)
	return Render(s.state)
}

func (s *Session) Rows() []models.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Render(s.state)
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Entries)
}

// Trend reports whether the newest analysis confirmed a trend.
func (s *Session) Trend() models.Trend {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Trend
}
