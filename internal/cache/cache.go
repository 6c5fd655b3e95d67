// Package cache holds derived views of the document, such as annual
// summaries, so repeated reads skip recomputation.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"notebk/internal/log"
)

// Cache is a keyed store of derived values.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Clear drops every entry, for when the whole document is replaced.
	Clear()
	Size() int
}

// Cleaner is a cache that can drop its expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically cleans registered caches while the server runs.
type Manager struct {
	caches   []Cleaner
	logger   *log.Logger
	stop     chan struct{}
	done     chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{
		logger: logger.WithComponent(log.ComponentCache),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Register adds a cache to clean. Call before StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup cleans every registered cache once per interval until Stop.
func (m *Manager) StartCleanup(interval time.Duration) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanAll(); n > 0 {
				m.logger.Debug("Expired cache entries removed", "removed", n)
			}
		case <-m.stop:
			return
		}
	}
}

// CleanAll cleans every registered cache now and returns how many entries went.
func (m *Manager) CleanAll() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}

// Stop ends the cleanup routine started by StartCleanup and waits for it.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		if m.started.Load() {
			<-m.done
		}
	})
}
