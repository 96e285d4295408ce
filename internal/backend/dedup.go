package backend

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"coda-dashboard/internal/events"
)

type dedupEntry struct {
	lastSeen time.Time
	count     int
}

// deduplicator suppresses repeated events by content hash. The backend can
// re-emit an event through more than one integration path; the dashboard
// only wants to render it once.
type deduplicator struct {
	mu         sync.Mutex
	entries    map[string]dedupEntry
	window     time.Duration
	maxEntries int
	now        func() time.Time
}

func newDeduplicator(window time.Duration, maxEntries int) *deduplicator {
	if window <= 0 {
		window = 5 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &deduplicator{
		entries:    make(map[string]dedupEntry),
		window:     window,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// isDuplicate records the event and reports whether an identical one was
// seen within the dedup window, along with how many times.
func (d *deduplicator) isDuplicate(env events.Envelope) (bool, int) {
	hash := contentHash(env)
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.expire(now)

	if entry, ok := d.entries[hash]; ok {
		// Sliding window: each duplicate refreshes the entry, so a steady
		// duplicate stream stays suppressed for as long as it keeps up.
		entry.lastSeen = now
		entry.count++
		d.entries[hash] = entry
		return true, entry.count
	}

	if len(d.entries) >= d.maxEntries {
		d.evictOldest()
	}
	d.entries[hash] = dedupEntry{lastSeen: now, count: 1}
	return false, 1
}

func (d *deduplicator) expire(now time.Time) {
	for hash, entry := range d.entries {
		if now.Sub(entry.lastSeen) > d.window {
			delete(d.entries, hash)
		}
	}
}

func (d *deduplicator) evictOldest() {
	var oldestHash string
	var oldestTime time.Time
	for hash, entry := range d.entries {
		if oldestHash == "" || entry.lastSeen.Before(oldestTime) {
			oldestHash = hash
			oldestTime = entry.lastSeen
		}
	}
	if oldestHash != "" {
		delete(d.entries, oldestHash)
	}
}

// contentHash hashes type plus data only. Seq and timestamp differ on
// every emission and would defeat deduplication.
func contentHash(env events.Envelope) string {
	h := sha256.New()
	h.Write([]byte(env.Type))
	h.Write([]byte{0})
	if env.Data != nil {
		// json.Marshal sorts map keys, so the encoding is canonical.
		data, err := json.Marshal(env.Data)
		if err == nil {
			h.Write(data)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
