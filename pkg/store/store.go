// Package store implements the Shared KV & Counter Store (C2): a
// process-lifetime map of counters and a dynamic key/value map, both shared
// across every concurrent request and surviving specification reloads.
package store

import "sync"

// Missing is the sentinel value KV.Read returns for an absent key.
// The scripting and template layers both project this onto their own
// notion of "nothing here" (expr's nil, the renderer's empty string).
type missingType struct{}

// Missing is the singleton sentinel instance.
var Missing = missingType{}

// IsMissing reports whether v is the Missing sentinel.
func IsMissing(v any) bool {
	_, ok := v.(missingType)
	return ok
}

// Counters is a process-wide map of monotonic, non-negative integer
// counters keyed by string. Inc is a fused read-then-increment: it is
// atomic with respect to concurrent callers using the same key.
type Counters struct {
	mu     sync.Mutex
	values map[string]uint64
}

// NewCounters returns an empty Counters.
func NewCounters() *Counters {
	return &Counters{values: make(map[string]uint64)}
}

// Inc returns the previous value of key (0 if never seen) and atomically
// increments the stored value by one.
func (c *Counters) Inc(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.values[key]
	c.values[key] = prev + 1
	return prev
}

// Get returns the current value of key without mutating it.
func (c *Counters) Get(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key]
}

// KV is a process-wide map of dynamic values with last-writer-wins
// semantics. There are no transactions and no eviction.
type KV struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewKV returns an empty KV store.
func NewKV() *KV {
	return &KV{values: make(map[string]any)}
}

// Read returns the stored value for key, or Missing if key was never
// written.
func (kv *KV) Read(key string) any {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	if v, ok := kv.values[key]; ok {
		return v
	}
	return Missing
}

// Write stores value under key and returns whatever was stored there
// before (Missing if nothing was).
func (kv *KV) Write(key string, value any) any {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	prev, ok := kv.values[key]
	kv.values[key] = value
	if !ok {
		return Missing
	}
	return prev
}

// Store bundles the Counters and KV that live for the process lifetime,
// shared by every RequestContext/ResponseContext regardless of which
// Specification is currently active.
type Store struct {
	Counters *Counters
	KV       *KV
}

// New returns a fresh, empty Store.
func New() *Store {
	return &Store{
		Counters: NewCounters(),
		KV:       NewKV(),
	}
}
