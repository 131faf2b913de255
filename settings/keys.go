package settings

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Alia5/kb2pad/curve"
	"github.com/Alia5/kb2pad/hid"
)

// KeyStore maps keys to their own curves.
//
// Lookups load an immutable map through an atomic pointer and never block. Adding or
// removing a key copies the map under mu; changing an existing key's curve writes its
// atomic fields in place.
type KeyStore struct {
	mu      sync.Mutex
	entries atomic.Pointer[map[hid.Code]*Curve]
}

func NewKeyStore() *KeyStore {
	ks := &KeyStore{}
	empty := map[hid.Code]*Curve{}
	ks.entries.Store(&empty)
	return ks
}

func (ks *KeyStore) load() map[hid.Code]*Curve {
	return *ks.entries.Load()
}

// Get returns the curve stored for key.
func (ks *KeyStore) Get(key hid.Code) (*Curve, bool) {
	c, ok := ks.load()[key]
	return c, ok
}

// Set stores kd for key, creating the entry if needed.
func (ks *KeyStore) Set(key hid.Code, kd KeyDeadzone) *Curve {
	if c, ok := ks.Get(key); ok {
		c.StoreKeyDeadzone(kd)
		return c
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()
	cur := ks.load()
	if c, ok := cur[key]; ok {
		c.StoreKeyDeadzone(kd)
		return c
	}
	c := NewCurve(kd.Params)
	c.SetUseUnique(kd.UseUnique)
	next := maps.Clone(cur)
	next[key] = c
	ks.entries.Store(&next)
	return c
}

// Delete removes key and reports whether it existed.
func (ks *KeyStore) Delete(key hid.Code) bool {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	cur := ks.load()
	if _, ok := cur[key]; !ok {
		return false
	}
	next := maps.Clone(cur)
	delete(next, key)
	ks.entries.Store(&next)
	return true
}

// Replace swaps the whole store for entries in one publish. Keys that survive keep
// their Curve, updated in place.
func (ks *KeyStore) Replace(entries map[hid.Code]KeyDeadzone) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	cur := ks.load()
	next := make(map[hid.Code]*Curve, len(entries))
	for key, kd := range entries {
		if c, ok := cur[key]; ok {
			c.StoreKeyDeadzone(kd)
			next[key] = c
			continue
		}
		c := NewCurve(kd.Params)
		c.SetUseUnique(kd.UseUnique)
		next[key] = c
	}
	ks.entries.Store(&next)
}

// Keys returns the stored keys in ascending order.
func (ks *KeyStore) Keys() []hid.Code {
	return slices.Sorted(maps.Keys(ks.load()))
}

func (ks *KeyStore) Len() int { return len(ks.load()) }

// Effective returns the curve that applies to key: its own when it has one with
// UseUnique set, the global curve otherwise.
func (ks *KeyStore) Effective(key hid.Code, global *Curve) curve.Params {
	if c, ok := ks.Get(key); ok && c.UseUnique() {
		return c.Params()
	}
	return global.Params()
}
