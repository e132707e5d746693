// Package session keeps uploaded telemetry documents in memory while a
// dashboard user works with them.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/telemetry"
)

// Entry is one uploaded document and its identity.
type Entry struct {
	ID       string
	Name     string
	Document *telemetry.Document
	Created  time.Time

	lastAccess time.Time
}

// Store is a bounded in-memory set of sessions with idle expiry.
type Store struct {
	ttl        time.Duration
	maxEntries int
	logger     *slog.Logger
	now        func() time.Time

	mu        sync.Mutex
	entries   map[string]*Entry
	evicted   uint64
	closeOnce sync.Once
}

// NewStore builds a Store. Sessions idle for longer than ttl are dropped;
// when maxEntries is reached the least recently used session is evicted.
func NewStore(ttl time.Duration, maxEntries int, logger *slog.Logger) (*Store, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be > 0")
	}
	if maxEntries <= 0 {
		return nil, fmt.Errorf("max entries must be > 0")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		ttl:        ttl,
		maxEntries: maxEntries,
		logger:     logger.With("component", "session_store"),
		now:        time.Now,
		entries:    make(map[string]*Entry),
	}, nil
}

// Put stores a document and returns its new session.
func (s *Store) Put(name string, doc *telemetry.Document) *Entry {
	now := s.now()
	entry := &Entry{
		ID:         uuid.NewString(),
		Name:       name,
		Document:   doc,
		Created:    now,
		lastAccess: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.entries) >= s.maxEntries {
		s.evictOldestLocked()
	}
	s.entries[entry.ID] = entry
	return entry
}

// Get returns the session and marks it as used.
func (s *Store) Get(id string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	entry.lastAccess = s.now()
	return entry, true
}

// Delete drops a session. It reports whether the session existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	return true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Evicted returns how many sessions were dropped by expiry or capacity.
func (s *Store) Evicted() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evicted
}

// Stats is a point-in-time view of the store.
type Stats struct {
	Sessions int
	Frames   int
	Evicted  uint64
}

// Stats returns the current session count, total frames held and evictions.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{Sessions: len(s.entries), Evicted: s.evicted}
	for _, entry := range s.entries {
		if entry.Document != nil {
			stats.Frames += len(entry.Document.Frames)
		}
	}
	return stats
}

// Run expires idle sessions until the context is canceled.
func (s *Store) Run(ctx context.Context) error {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("session janitor started", "ttl", s.ttl, "max_entries", s.maxEntries)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session janitor stopping", "reason", ctx.Err())
			return s.Close()
		case <-ticker.C:
			if n := s.Expire(); n > 0 {
				s.logger.Debug("expired idle sessions", "count", n)
			}
		}
	}
}

// Expire drops sessions idle for longer than the TTL and returns how many were removed.
func (s *Store) Expire() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.entries {
		if entry.lastAccess.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	s.evicted += uint64(removed)
	return removed
}

// Close drops every session. Safe for repeated use.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.entries = make(map[string]*Entry)
	})
	return nil
}

func (s *Store) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, entry := range s.entries {
		if oldestID == "" || entry.lastAccess.Before(oldest) {
			oldestID = id
			oldest = entry.lastAccess
		}
	}
	if oldestID == "" {
		return
	}
	delete(s.entries, oldestID)
	s.evicted++
	s.logger.Debug("evicted session at capacity", "session_id", oldestID)
}
