// Package retention runs the background purge loop that turns expired
// tombstones into hard deletes.
package retention

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"

	"seam/internal/ops"
)

// Policy describes one sweeper's retention behavior. Passed in explicitly
// at construction so tests and callers never reach into global config.
type Policy struct {
	Days     int
	Enabled  bool
	Interval time.Duration
}

// Sweeper periodically purges entities whose tombstones have outlived the
// retention window. The cutoff derives from the policy at each cycle, not
// from the previous run, so a skipped cycle is simply caught by the next.
type Sweeper struct {
	db     *sql.DB
	policy Policy

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewSweeper creates a sweeper. Call Start to begin sweeping.
func NewSweeper(database *sql.DB, policy Policy) *Sweeper {
	return &Sweeper{db: database, policy: policy}
}

// Start launches the sweep loop. Starting a disabled or already-running
// sweeper is a no-op.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || !s.policy.Enabled {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true
	go s.loop(s.stop, s.done)
}

// Stop halts the sweep loop and waits for an in-flight cycle to finish.
// Stopping a stopped sweeper is a no-op.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	stop, done := s.stop, s.done
	s.running = false
	s.mu.Unlock()

	close(stop)
	<-done
}

func (s *Sweeper) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.policy.Interval)
	defer ticker.Stop()

	// One immediate sweep so a long interval doesn't delay the first purge
	// after startup.
	s.sweep()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-stop:
			return
		}
	}
}

func (s *Sweeper) sweep() {
	ctx := context.Background()
	cutoff := ops.RetentionCutoff(s.policy.Days)

	out, err := ops.PurgeExpired(ctx, s.db, ops.PurgeExpiredInput{Cutoff: cutoff})
	if err != nil {
		log.Printf("retention: sweep failed: %v", err)
		return
	}
	if out.Documents+out.Segments+out.Folders+out.Failed > 0 {
		log.Printf("retention: purged %d documents, %d segments, %d folders (%d failed)",
			out.Documents, out.Segments, out.Folders, out.Failed)
	}
}
