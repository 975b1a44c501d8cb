// Package cache memoizes an expensive load behind a pluggable freshness policy.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"quoteboard/internal/logging"

	"golang.org/x/sync/singleflight"
)

// Policy decides whether a value loaded at loadedAt is still fresh at now.
type Policy interface {
	Expired(loadedAt, now time.Time) bool
	String() string
}

type ttlPolicy struct{ ttl time.Duration }

func (p ttlPolicy) Expired(loadedAt, now time.Time) bool {
	return now.Sub(loadedAt) >= p.ttl
}

func (p ttlPolicy) String() string { return fmt.Sprintf("ttl(%s)", p.ttl) }

// TTL expires values ttl after they were loaded.
func TTL(ttl time.Duration) Policy {
	return ttlPolicy{ttl: ttl}
}

type manualPolicy struct{}

func (manualPolicy) Expired(time.Time, time.Time) bool { return false }
func (manualPolicy) String() string                    { return "manual" }

// Manual keeps values until Invalidate is called.
func Manual() Policy {
	return manualPolicy{}
}

// TTLOf returns the policy's ttl, or 0 for non-TTL policies.
func TTLOf(p Policy) time.Duration {
	if t, ok := p.(ttlPolicy); ok {
		return t.ttl
	}
	return 0
}

// LoadFunc produces a fresh value.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Option configures a Memo.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Memo holds the last successfully loaded value. Errors are never cached.
// Concurrent Gets that miss share a single load.
type Memo[T any] struct {
	load   LoadFunc[T]
	policy Policy
	now    func() time.Time
	group  singleflight.Group

	mu         sync.Mutex
	value      T
	loadedAt   time.Time
	valid      bool
	generation uint64
}

// New creates a Memo around load.
func New[T any](load LoadFunc[T], policy Policy, opts ...Option) *Memo[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if policy == nil {
		policy = Manual()
	}
	return &Memo[T]{load: load, policy: policy, now: o.now}
}

// Policy returns the freshness policy.
func (m *Memo[T]) Policy() Policy {
	return m.policy
}

// Get returns the cached value, loading it when absent or expired.
func (m *Memo[T]) Get(ctx context.Context) (T, error) {
	log := logging.Get(logging.CategoryCache)

	m.mu.Lock()
	if m.valid && !m.policy.Expired(m.loadedAt, m.now()) {
		v, at := m.value, m.loadedAt
		m.mu.Unlock()
		log.Debug("hit (loaded %s)", at.Format(time.RFC3339))
		return v, nil
	}
	gen := m.generation
	m.mu.Unlock()

	v, err, shared := m.group.Do(strconv.FormatUint(gen, 10), func() (interface{}, error) {
		log.Debug("miss, loading (generation %d, policy %s)", gen, m.policy)
		value, err := m.load(ctx)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		// An Invalidate during the load makes this result stale already.
		if m.generation == gen {
			m.value = value
			m.loadedAt = m.now()
			m.valid = true
		}
		m.mu.Unlock()
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if shared {
		log.Debug("joined in-flight load")
	}
	return v.(T), nil
}

// Invalidate drops the cached value; the next Get reloads.
func (m *Memo[T]) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valid = false
	m.generation++
	var zero T
	m.value = zero
	logging.Get(logging.CategoryCache).Debug("invalidated (generation %d)", m.generation)
}

// LoadedAt reports when the cached value was loaded, if there is one.
func (m *Memo[T]) LoadedAt() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadedAt, m.valid
}
