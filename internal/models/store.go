package models

import (
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// StoreEntry is the snapshot form of a single stored record.
type StoreEntry struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt int64           `json:"expires_at,omitempty"`
}

// StoreInterface is the persistent key-value store the ledger runs on.
// Records carry an independent retention lifetime: entries expire unless
// refreshed via ExtendTTL, so abandoned records eventually age out.
type StoreInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Remove(key string)
	Has(key string) bool
	ExtendTTL(key string)
	Keys(prefix string) []string
	SweepExpired() map[string][]byte
	Snapshot() map[string]StoreEntry
	Restore(entries map[string]StoreEntry)
}

type memEntry struct {
	value     []byte
	expiresAt time.Time // zero = never expires
}

// MemoryStore is the in-process StoreInterface implementation. New entries
// live for limit; ExtendTTL tops an entry back up to limit once its
// remaining lifetime drops below threshold. A limit of zero disables
// expiry entirely.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]*memEntry
	threshold time.Duration
	limit     time.Duration
	clock     func() time.Time
}

func NewMemoryStore(threshold, limit time.Duration) *MemoryStore {
	return &MemoryStore{
		entries:   make(map[string]*memEntry),
		threshold: threshold,
		limit:     limit,
		clock:     time.Now,
	}
}

func (ms *MemoryStore) alive(e *memEntry) bool {
	return e.expiresAt.IsZero() || ms.clock().Before(e.expiresAt)
}

func (ms *MemoryStore) Get(key string) ([]byte, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	e, ok := ms.entries[key]
	if !ok || !ms.alive(e) {
		return nil, false
	}
	return e.value, true
}

func (ms *MemoryStore) Set(key string, value []byte) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if e, ok := ms.entries[key]; ok && ms.alive(e) {
		// Rewrites keep the entry's retention; ExtendTTL refreshes it.
		e.value = value
		return
	}
	e := &memEntry{value: value}
	if ms.limit > 0 {
		e.expiresAt = ms.clock().Add(ms.limit)
	}
	ms.entries[key] = e
}

func (ms *MemoryStore) Remove(key string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.entries, key)
}

func (ms *MemoryStore) Has(key string) bool {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	e, ok := ms.entries[key]
	return ok && ms.alive(e)
}

func (ms *MemoryStore) ExtendTTL(key string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	e, ok := ms.entries[key]
	if !ok || !ms.alive(e) || e.expiresAt.IsZero() || ms.limit <= 0 {
		return
	}
	now := ms.clock()
	if e.expiresAt.Sub(now) < ms.threshold {
		e.expiresAt = now.Add(ms.limit)
	}
}

func (ms *MemoryStore) Keys(prefix string) []string {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	keys := make([]string, 0, len(ms.entries))
	for k, e := range ms.entries {
		if strings.HasPrefix(k, prefix) && ms.alive(e) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// SweepExpired removes entries past their retention and returns them so the
// caller can archive the evicted records.
func (ms *MemoryStore) SweepExpired() map[string][]byte {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	evicted := make(map[string][]byte)
	for k, e := range ms.entries {
		if !ms.alive(e) {
			evicted[k] = e.value
			delete(ms.entries, k)
		}
	}
	return evicted
}

func (ms *MemoryStore) Snapshot() map[string]StoreEntry {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make(map[string]StoreEntry, len(ms.entries))
	for k, e := range ms.entries {
		if !ms.alive(e) {
			continue
		}
		entry := StoreEntry{Value: append(json.RawMessage(nil), e.value...)}
		if !e.expiresAt.IsZero() {
			entry.ExpiresAt = e.expiresAt.Unix()
		}
		out[k] = entry
	}
	return out
}

func (ms *MemoryStore) Restore(entries map[string]StoreEntry) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.entries = make(map[string]*memEntry, len(entries))
	for k, se := range entries {
		e := &memEntry{value: append([]byte(nil), se.Value...)}
		if se.ExpiresAt > 0 {
			e.expiresAt = time.Unix(se.ExpiresAt, 0)
		} else if ms.limit > 0 {
			e.expiresAt = ms.clock().Add(ms.limit)
		}
		ms.entries[k] = e
	}
}
