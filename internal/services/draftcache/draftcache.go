// Copyright 2025 The Tarifusta Authors
// Licensed under the EUPL-1.2

// Package draftcache holds freshly generated recipes between the
// generate call and a later fetch or save. Entries live in process
// memory only and never survive a restart.
package draftcache

import (
	"sync"
	"time"

	"github.com/tarifusta/tarifusta/internal/generation"
)

const (
	// DefaultTTL is how long a draft stays fetchable.
	DefaultTTL = time.Hour
	// sweepInterval is how often expired entries are reclaimed.
	sweepInterval = time.Minute
)

type entry struct {
	draft     *generation.Draft
	userID    int64
	expiresAt time.Time
}

// Cache is a concurrency-safe TTL store for recipe drafts. Expiry is
// checked on read; the background sweep is reclamation only, never the
// source of truth.
type Cache struct { //nolint:govet // fieldalignment not critical
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	stop    chan struct{}
	done    chan struct{}
}

// New creates a cache and starts its sweep goroutine. Call Stop on
// shutdown.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Put stores a draft for its owning account with an absolute expiry of
// now + TTL.
func (c *Cache) Put(id string, userID int64, draft *generation.Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = entry{
		draft:     draft,
		userID:    userID,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Get returns the draft if it is present, not expired and owned by the
// requesting account. An expired-but-not-yet-swept entry is a miss.
// Unlike a one-shot token store, entries stay readable until expiry so
// the client can re-fetch after view transitions.
func (c *Cache) Get(id string, userID int64) (*generation.Draft, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok || e.userID != userID || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.draft, true
}

// Stop terminates the sweep goroutine and waits for it to exit.
func (c *Cache) Stop() {
	close(c.stop)
	<-c.done
}

func (c *Cache) sweepLoop() {
	defer close(c.done)
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
		}
	}
}

// size reports the number of resident entries, swept or not.
func (c *Cache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
