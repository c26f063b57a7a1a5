// Package learning implements the per-user learning cache: surfaces the
// user has chosen for a reading get a recency- and frequency-weighted
// score boost on future conversions of the same or a prefixed reading.
package learning

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxEntries is the default cap on total (reading, surface)
// pairs across all readings.
const DefaultMaxEntries = 10_000

// recencyHalfLife is τ in the recency decay exp(-Δt/τ): entries lose
// about two-thirds of their recency weight after one day.
const recencyHalfLife = 24 * time.Hour

// Entry is a single learned (reading, surface) selection.
type Entry struct {
	Surface    string
	Frequency  uint32
	LastAccess time.Time
}

// Scored is a lookup result: a surface with its computed score.
type Scored struct {
	Surface string
	Score   float64
}

// PrefixScored is a prefix-lookup result, additionally carrying which
// stored reading matched.
type PrefixScored struct {
	Reading string
	Surface string
	Score   float64
}

// Cache is the in-memory learning store: a mapping from reading to its
// learned surfaces, bounded to MaxEntries total pairs. Not safe for
// concurrent use — the engine owns one instance and mutates it only
// from its own thread.
type Cache struct {
	entries    map[string][]Entry
	maxEntries int
	dirty      bool
}

// New returns an empty Cache capped at maxEntries total pairs.
func New(maxEntries int) *Cache {
	return &Cache{entries: make(map[string][]Entry), maxEntries: maxEntries}
}

// Record upserts a user selection: bumps frequency and refreshes
// last-access time if (reading, surface) already exists, otherwise
// inserts it with frequency 1, evicting the lowest-scoring pairs if the
// insert takes the cache over its cap. Marks the cache dirty.
func (c *Cache) Record(reading, surface string) {
	now := time.Now()
	entries := c.entries[reading]
	for i := range entries {
		if entries[i].Surface == surface {
			entries[i].Frequency++
			entries[i].LastAccess = now
			c.entries[reading] = entries
			c.dirty = true
			return
		}
	}
	c.entries[reading] = append(entries, Entry{Surface: surface, Frequency: 1, LastAccess: now})
	c.dirty = true
	c.evict()
}

// Lookup returns every surface learned for reading, scored and sorted
// by score descending.
func (c *Cache) Lookup(reading string) []Scored {
	entries, ok := c.entries[reading]
	if !ok {
		return nil
	}
	now := time.Now()
	scored := make([]Scored, len(entries))
	for i, e := range entries {
		scored[i] = Scored{Surface: e.Surface, Score: score(e, now)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// PrefixLookup returns every (reading, surface) pair whose reading
// starts with prefix, scored and sorted by score descending.
func (c *Cache) PrefixLookup(prefix string) []PrefixScored {
	now := time.Now()
	var results []PrefixScored
	for reading, entries := range c.entries {
		if !strings.HasPrefix(reading, prefix) {
			continue
		}
		for _, e := range entries {
			results = append(results, PrefixScored{Reading: reading, Surface: e.Surface, Score: score(e, now)})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

// IsDirty reports whether the cache has unsaved mutations.
func (c *Cache) IsDirty() bool {
	return c.dirty
}

// EntryCount returns the total number of (reading, surface) pairs.
func (c *Cache) EntryCount() int {
	total := 0
	for _, entries := range c.entries {
		total += len(entries)
	}
	return total
}

// Row is one learned (reading, surface) pair, flattened for inspection
// tooling that has no use for the reading-keyed map shape.
type Row struct {
	Reading string
	Entry
}

// All returns every learned pair across every reading, for debug
// inspection. Row order is unspecified beyond grouping by reading.
func (c *Cache) All() []Row {
	rows := make([]Row, 0, c.EntryCount())
	for reading, entries := range c.entries {
		for _, e := range entries {
			rows = append(rows, Row{Reading: reading, Entry: e})
		}
	}
	return rows
}

// evict removes the lowest-scoring entries until the total count is at
// most maxEntries.
func (c *Cache) evict() {
	total := c.EntryCount()
	if total <= c.maxEntries {
		return
	}
	now := time.Now()

	type ref struct {
		reading string
		idx     int
		score   float64
	}
	all := make([]ref, 0, total)
	for reading, entries := range c.entries {
		for i, e := range entries {
			all = append(all, ref{reading, i, score(e, now)})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].score < all[j].score })

	toRemove := total - c.maxEntries
	removeByReading := make(map[string][]int)
	for _, r := range all[:toRemove] {
		removeByReading[r.reading] = append(removeByReading[r.reading], r.idx)
	}

	for reading, indices := range removeByReading {
		sort.Sort(sort.Reverse(sort.IntSlice(indices)))
		entries := c.entries[reading]
		for _, idx := range indices {
			if idx < len(entries) {
				entries = append(entries[:idx], entries[idx+1:]...)
			}
		}
		if len(entries) == 0 {
			delete(c.entries, reading)
		} else {
			c.entries[reading] = entries
		}
	}
}

// Save evicts down to the entry cap and writes the cache as TSV,
// atomically (temp file in the same directory, then rename), but only
// if the cache is dirty.
func (c *Cache) Save(path string) error {
	if !c.dirty {
		return nil
	}
	c.evict()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".learning-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	w := bufio.NewWriter(tmp)
	if _, err := fmt.Fprintln(w, "# karukan learning cache v1"); err != nil {
		tmp.Close()
		return err
	}

	readings := make([]string, 0, len(c.entries))
	for reading := range c.entries {
		readings = append(readings, reading)
	}
	sort.Strings(readings)

	for _, reading := range readings {
		for _, e := range c.entries[reading] {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", reading, e.Surface, e.Frequency, e.LastAccess.Unix()); err != nil {
				tmp.Close()
				return err
			}
		}
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	c.dirty = false
	return nil
}

// Load reads a cache previously written by Save. Malformed lines are
// skipped. A missing file yields an empty, non-dirty cache rather than
// an error, since the engine should continue without learning data on
// first run.
func Load(path string, maxEntries int) (*Cache, error) {
	c := New(maxEntries)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 4 {
			continue
		}
		reading, surface := parts[0], parts[1]
		frequency, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			continue
		}
		lastAccessUnix, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			continue
		}
		c.entries[reading] = append(c.entries[reading], Entry{
			Surface:    surface,
			Frequency:  uint32(frequency),
			LastAccess: time.Unix(lastAccessUnix, 0),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	c.dirty = false
	return c, nil
}

// score combines recency and frequency into a single ranking value:
// recency(now-lastAccess)*10 + ln(1+frequency). recency decays
// exponentially as exp(-age/recencyHalfLife), a time constant rather
// than a half-life, so a selection from
// yesterday still outranks one from a month ago without ever reaching
// zero.
func score(e Entry, now time.Time) float64 {
	age := now.Sub(e.LastAccess)
	if age < 0 {
		age = 0
	}
	recency := math.Exp(-age.Hours() / recencyHalfLife.Hours())
	freq := math.Log1p(float64(e.Frequency))
	return recency*10.0 + freq
}
