// Package replica schedules periodic synchronization of an embedded replica
// with its remote primary. The sync itself belongs to the wrapped client
// library; this package only decides when to call it and reports failures
// without interrupting the schedule.
package replica

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/robfig/cron/v3"
)

// Syncable pulls changes from the primary into the local replica. It is
// implemented by the embedded-replica connector.
type Syncable interface {
	Sync() error
}

// Options configures a Syncer.
type Options struct {
	// Schedule is a cron expression. Interval shorthand works too, e.g.
	// "@every 30s".
	Schedule string

	// Out receives a line per sync attempt. Defaults to io.Discard.
	Out io.Writer
}

// Syncer runs Sync on a schedule until stopped.
type Syncer struct {
	target Syncable
	cron   *cron.Cron
	out    io.Writer

	mu      sync.Mutex
	started bool
}

// NewSyncer validates the schedule and builds a stopped Syncer.
func NewSyncer(target Syncable, opts Options) (*Syncer, error) {
	if target == nil {
		return nil, errors.New("replica: sync target is nil")
	}
	if opts.Schedule == "" {
		return nil, errors.New("replica: schedule is required")
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	s := &Syncer{
		target: target,
		cron:   cron.New(),
		out:    out,
	}
	if _, err := s.cron.AddFunc(opts.Schedule, s.syncOnce); err != nil {
		return nil, fmt.Errorf("replica: invalid schedule %q: %w", opts.Schedule, err)
	}
	return s, nil
}

// Start begins the schedule. Starting twice is a no-op.
func (s *Syncer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
}

// Stop halts the schedule and waits for an in-flight sync to finish.
func (s *Syncer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	s.started = false
}

// SyncNow runs one sync outside the schedule.
func (s *Syncer) SyncNow() error {
	if err := s.target.Sync(); err != nil {
		return fmt.Errorf("replica: sync: %w", err)
	}
	return nil
}

// syncOnce is the scheduled entry point. A failed sync is reported and the
// schedule keeps running; the replica just stays stale until the next tick.
func (s *Syncer) syncOnce() {
	if err := s.target.Sync(); err != nil {
		fmt.Fprintf(s.out, "replica sync failed: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, "replica synced")
}
