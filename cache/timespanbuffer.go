package cache

import "time"

type bufferSlot struct {
	id    string
	fedAt time.Time
}

// TimeSpanBuffer holds a sliding window of recently fed PublicObjects,
// grounded on original_source's PublicObjectTimeSpanBuffer: Feed adds an
// object and evicts any previously fed object whose age now exceeds the
// configured span, releasing only the buffer's own hold on it — an
// object evicted from the buffer stays alive in the Registry as long as
// some other caller still retains it, and Get re-feeds a found object,
// extending its time in the buffer (test/datamodel/cache.cpp's
// TIMESPAN scenario).
type TimeSpanBuffer struct {
	registry *Registry
	span     time.Duration
	slots    []bufferSlot // oldest first
	clock    func() time.Time
}

// NewTimeSpanBuffer returns a buffer backed by registry with the given
// retention span.
func NewTimeSpanBuffer(registry *Registry, span time.Duration) *TimeSpanBuffer {
	return &TimeSpanBuffer{registry: registry, span: span, clock: time.Now}
}

// SetClock overrides the buffer's notion of "now", for deterministic
// tests of time-based eviction.
func (b *TimeSpanBuffer) SetClock(clock func() time.Time) { b.clock = clock }

func (b *TimeSpanBuffer) now() time.Time {
	if b.clock != nil {
		return b.clock()
	}
	return time.Now()
}

func (b *TimeSpanBuffer) evict() {
	now := b.now()
	cut := 0
	for cut < len(b.slots) && now.Sub(b.slots[cut].fedAt) > b.span {
		b.registry.Release(b.slots[cut].id)
		cut++
	}
	if cut > 0 {
		b.slots = append([]bufferSlot(nil), b.slots[cut:]...)
	}
}

// Feed registers obj (if new) and adds it to the buffer, retaining it
// on the buffer's own behalf.
func (b *TimeSpanBuffer) Feed(obj PublicObject) bool {
	b.evict()
	b.registry.Register(obj)
	if _, ok := b.registry.Retain(obj.PublicID()); !ok {
		return false
	}
	b.slots = append(b.slots, bufferSlot{id: obj.PublicID(), fedAt: b.now()})
	return true
}

// Get evicts expired entries, then looks up id in the registry. A hit
// is retained on the caller's behalf and re-fed into the buffer with a
// fresh timestamp; a miss (the object has no remaining references
// anywhere) returns false.
func (b *TimeSpanBuffer) Get(id string) (PublicObject, bool) {
	b.evict()
	obj, ok := b.registry.Retain(id)
	if !ok {
		return nil, false
	}
	b.registry.Retain(id) // second hold: one for the caller, one for the buffer slot below
	b.slots = append(b.slots, bufferSlot{id: id, fedAt: b.now()})
	return obj, true
}

// Size reports the number of live buffer slots after evicting expired
// ones.
func (b *TimeSpanBuffer) Size() int {
	b.evict()
	return len(b.slots)
}
