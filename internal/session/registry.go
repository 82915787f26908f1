package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_cart/shop-cart/internal/cart"
	"github.com/fjod/go_cart/shop-cart/pkg/logger"
	"github.com/google/uuid"
)

const (
	// DefaultTTL is how long an untouched session survives
	DefaultTTL = 30 * time.Minute

	// DefaultCleanupInterval is how often the background cleanup runs
	DefaultCleanupInterval = time.Minute
)

var ErrSessionNotFound = errors.New("session not found")

// Gauge receives the number of open sessions after every change.
type Gauge interface {
	SetOpenSessions(n int)
}

// StoreFactory builds the cart for a new session.
type StoreFactory func() *cart.Store

type entry struct {
	store    *cart.Store
	lastSeen time.Time
}

// Registry owns every live cart, keyed by session id. A cart lives from Open
// until End or until it has been idle for longer than the TTL.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	newStore StoreFactory
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	gauge    Gauge
	log      *slog.Logger

	stopCleanup chan struct{}
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

type Option func(*Registry)

func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.ttl = ttl }
}

func WithCleanupInterval(d time.Duration) Option {
	return func(r *Registry) { r.interval = d }
}

func WithGauge(g Gauge) Option {
	return func(r *Registry) { r.gauge = g }
}

func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

func withClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry starts the cleanup goroutine; call Close to stop it.
func NewRegistry(newStore StoreFactory, opts ...Option) *Registry {
	r := &Registry{
		sessions:    make(map[string]*entry),
		newStore:    newStore,
		ttl:         DefaultTTL,
		interval:    DefaultCleanupInterval,
		now:         time.Now,
		log:         logger.Nop(),
		stopCleanup: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

// Open starts a session with an empty cart.
func (r *Registry) Open() (string, *cart.Store) {
	id := uuid.New().String()
	store := r.newStore()

	r.mu.Lock()
	r.sessions[id] = &entry{store: store, lastSeen: r.now()}
	n := len(r.sessions)
	r.mu.Unlock()

	r.report(n)
	r.log.Debug("session opened", slog.String("session_id", id))
	return id, store
}

// Get returns the cart for id and marks the session as used.
func (r *Registry) Get(id string) (*cart.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok || r.expired(e) {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = r.now()
	return e.store, nil
}

// End discards the session and its cart.
func (r *Registry) End(id string) error {
	r.mu.Lock()
	if _, ok := r.sessions[id]; !ok {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	r.report(n)
	r.log.Debug("session ended", slog.String("session_id", id))
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the background cleanup and waits for it to finish
func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		close(r.stopCleanup)
	})
	r.wg.Wait()
	return nil
}

func (r *Registry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.expireSessions()
		case <-r.stopCleanup:
			return
		}
	}
}

func (r *Registry) expireSessions() {
	r.mu.Lock()
	expired := 0
	for id, e := range r.sessions {
		if r.expired(e) {
			delete(r.sessions, id)
			expired++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if expired > 0 {
		r.report(n)
		r.log.Info("sessions expired", slog.Int("expired", expired), slog.Int("open", n))
	}
}

// must hold r.mu
func (r *Registry) expired(e *entry) bool {
	return r.now().Sub(e.lastSeen) > r.ttl
}

func (r *Registry) report(n int) {
	if r.gauge != nil {
		r.gauge.SetOpenSessions(n)
	}
}
