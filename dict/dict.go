// Package dict implements the kana-to-kanji dictionary: an immutable,
// double-array-trie-backed mapping from a hiragana reading to its
// candidate surface forms, plus the loaders (binary, JSON, Mozc TSV)
// that build one.
package dict

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/karukan/engine/kana"
)

var (
	magic   = [4]byte{'K', 'R', 'K', 'N'}
	version = uint32(1)
)

const (
	maxTrieLen = 100 * 1024 * 1024
	maxEntries = 10_000_000
)

// Candidate is a single surface form with its dictionary score. Lower
// scores rank first.
type Candidate struct {
	Surface string
	Score   float32
}

// Entry maps one hiragana reading to its ranked candidate surfaces.
type Entry struct {
	Reading    string
	Candidates []Candidate
}

// LookupResult is the result of an exact or common-prefix search.
type LookupResult struct {
	Reading    string
	Candidates []Candidate
}

// Dictionary is an immutable, trie-indexed reading -> candidates map.
// Safe for concurrent read-only use once built or loaded.
type Dictionary struct {
	trie    *doubleArray
	entries []Entry
}

func buildFromEntries(entries []Entry) (*Dictionary, error) {
	keys := make([][]byte, len(entries))
	values := make([]int32, len(entries))
	for i, e := range entries {
		keys[i] = []byte(e.Reading)
		values[i] = int32(i)
	}
	trie, err := buildDoubleArray(keys, values)
	if err != nil {
		return nil, err
	}
	return &Dictionary{trie: trie, entries: entries}, nil
}

func sortAndDedup(entries []Entry) []Entry {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Reading < entries[j].Reading
	})
	out := entries[:0]
	for _, e := range entries {
		if n := len(out); n > 0 && out[n-1].Reading == e.Reading {
			continue // keep the first occurrence, matching the original's dedup_by
		}
		out = append(out, e)
	}
	return out
}

// jsonCandidate and jsonEntry mirror the on-disk JSON dictionary source
// format: an array of {reading, candidates:[{surface, score}]} records
// with readings given in katakana.
type jsonCandidate struct {
	Surface string  `json:"surface"`
	Score   float32 `json:"score"`
}

type jsonEntry struct {
	Reading    string          `json:"reading"`
	Candidates []jsonCandidate `json:"candidates"`
}

// BuildFromJSON builds a Dictionary from a JSON array of
// {reading, candidates} records. Readings are converted from katakana
// to hiragana on load.
func BuildFromJSON(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []jsonEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("dict: parse JSON: %w", err)
	}

	entries := make([]Entry, len(raw))
	for i, je := range raw {
		cands := make([]Candidate, len(je.Candidates))
		for j, jc := range je.Candidates {
			cands[j] = Candidate{Surface: jc.Surface, Score: jc.Score}
		}
		sort.Slice(cands, func(a, b int) bool { return cands[a].Score < cands[b].Score })
		entries[i] = Entry{Reading: kana.ToHiragana(je.Reading), Candidates: cands}
	}

	entries = sortAndDedup(entries)
	return buildFromEntries(entries)
}

// Save writes the dictionary in the binary KRKN format:
//
//	[4B] magic "KRKN"
//	[4B] version (LE)
//	[4B] trie_len (LE) + trie bytes
//	[4B] num_entries (LE)
//	per entry: [2B] reading_len + reading, [2B] num_candidates,
//	           per candidate: [2B] surface_len + surface, [4B] score (LE f32)
func (d *Dictionary) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := writeU32(w, version); err != nil {
		return err
	}

	trieBytes := d.trie.marshalBinary()
	if err := writeU32(w, uint32(len(trieBytes))); err != nil {
		return err
	}
	if _, err := w.Write(trieBytes); err != nil {
		return err
	}

	if err := writeU32(w, uint32(len(d.entries))); err != nil {
		return err
	}
	for _, e := range d.entries {
		if err := writeString16(w, e.Reading); err != nil {
			return err
		}
		if err := writeU16(w, uint16(len(e.Candidates))); err != nil {
			return err
		}
		for _, c := range e.Candidates {
			if err := writeString16(w, c.Surface); err != nil {
				return err
			}
			if err := writeF32(w, c.Score); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

// Load reads a dictionary previously written by Save. An invalid magic,
// unsupported version, or size field outside the sanity bounds is
// reported as an error; the caller is expected to fall back to an
// empty dictionary rather than fail the engine outright.
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return nil, err
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("dict: invalid magic: expected %q", magic)
	}

	v, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if v != version {
		return nil, fmt.Errorf("dict: unsupported version: %d", v)
	}

	trieLen, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if trieLen > maxTrieLen {
		return nil, fmt.Errorf("dict: trie_len too large: %d (max %d)", trieLen, maxTrieLen)
	}
	trieBytes := make([]byte, trieLen)
	if _, err := io.ReadFull(r, trieBytes); err != nil {
		return nil, err
	}
	trie, err := unmarshalDoubleArray(trieBytes)
	if err != nil {
		return nil, err
	}

	numEntries, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if numEntries > maxEntries {
		return nil, fmt.Errorf("dict: num_entries too large: %d (max %d)", numEntries, maxEntries)
	}

	entries := make([]Entry, 0, numEntries)
	for i := uint32(0); i < numEntries; i++ {
		reading, err := readString16(r)
		if err != nil {
			return nil, err
		}
		numCands, err := readU16(r)
		if err != nil {
			return nil, err
		}
		cands := make([]Candidate, 0, numCands)
		for j := uint16(0); j < numCands; j++ {
			surface, err := readString16(r)
			if err != nil {
				return nil, err
			}
			score, err := readF32(r)
			if err != nil {
				return nil, err
			}
			cands = append(cands, Candidate{Surface: surface, Score: score})
		}
		sort.Slice(cands, func(a, b int) bool { return cands[a].Score < cands[b].Score })
		entries = append(entries, Entry{Reading: reading, Candidates: cands})
	}

	return &Dictionary{trie: trie, entries: entries}, nil
}

// ExactMatch returns the entry whose reading exactly equals input.
func (d *Dictionary) ExactMatch(input string) (LookupResult, bool) {
	value, ok := d.trie.exactMatch([]byte(input))
	if !ok || int(value) >= len(d.entries) {
		return LookupResult{}, false
	}
	e := d.entries[value]
	return LookupResult{Reading: e.Reading, Candidates: e.Candidates}, true
}

// CommonPrefixSearch returns every entry whose reading is a prefix of
// input, in order of increasing reading length.
func (d *Dictionary) CommonPrefixSearch(input string) []LookupResult {
	values := d.trie.commonPrefixValues([]byte(input))
	results := make([]LookupResult, 0, len(values))
	for _, v := range values {
		if int(v) >= len(d.entries) {
			continue
		}
		e := d.entries[v]
		results = append(results, LookupResult{Reading: e.Reading, Candidates: e.Candidates})
	}
	return results
}

// DumpAll writes every (reading, surface, score) triple, tab-separated,
// one per line, for inspection and debugging. Returns the number of
// readings written.
func (d *Dictionary) DumpAll(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	for _, e := range d.entries {
		for _, c := range e.Candidates {
			if _, err := fmt.Fprintf(bw, "%s\t%s\t%g\n", e.Reading, c.Surface, c.Score); err != nil {
				return 0, err
			}
		}
	}
	return len(d.entries), bw.Flush()
}

// SurfaceMatch is one hit from SearchBySurface.
type SurfaceMatch struct {
	Reading string
	Surface string
	Score   float32
}

// SearchBySurface returns every (reading, surface, score) triple whose
// surface contains query as a substring.
func (d *Dictionary) SearchBySurface(query string) []SurfaceMatch {
	var results []SurfaceMatch
	for _, e := range d.entries {
		for _, c := range e.Candidates {
			if strings.Contains(c.Surface, query) {
				results = append(results, SurfaceMatch{e.Reading, c.Surface, c.Score})
			}
		}
	}
	return results
}

// BuildFromMozcTSV builds a Dictionary from a Mozc/Google-IME user
// dictionary export: reading\tsurface\tpart_of_speech\tcomment, with
// '#'-prefixed and empty lines skipped. All candidates get score 0.
func BuildFromMozcTSV(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return buildFromMozcTSVReader(f)
}

func buildFromMozcTSVReader(r io.Reader) (*Dictionary, error) {
	groups := make(map[string][]string)
	var order []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 2 {
			continue
		}
		reading, surface := cols[0], cols[1]
		if reading == "" || surface == "" {
			continue
		}
		surfaces, ok := groups[reading]
		if !ok {
			order = append(order, reading)
		}
		if !containsString(surfaces, surface) {
			groups[reading] = append(surfaces, surface)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(order))
	for _, reading := range order {
		surfaces := groups[reading]
		cands := make([]Candidate, len(surfaces))
		for i, s := range surfaces {
			cands[i] = Candidate{Surface: s, Score: 0}
		}
		entries = append(entries, Entry{Reading: reading, Candidates: cands})
	}

	entries = sortAndDedupMerging(entries)
	return buildFromEntries(entries)
}

func containsString(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// sortAndDedupMerging sorts by reading and merges candidates of
// entries that share a reading (surface-deduplicated), keeping the
// first occurrence's position.
func sortAndDedupMerging(entries []Entry) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Reading < entries[j].Reading
	})
	out := entries[:0]
	for _, e := range entries {
		if n := len(out); n > 0 && out[n-1].Reading == e.Reading {
			for _, c := range e.Candidates {
				if !candidateSurfacesContain(out[n-1].Candidates, c.Surface) {
					out[n-1].Candidates = append(out[n-1].Candidates, c)
				}
			}
			continue
		}
		out = append(out, e)
	}
	return out
}

func candidateSurfacesContain(cands []Candidate, surface string) bool {
	for _, c := range cands {
		if c.Surface == surface {
			return true
		}
	}
	return false
}

// LoadAuto loads path as binary KRKN if it starts with the magic
// bytes, and as Mozc TSV otherwise.
func LoadAuto(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var head [4]byte
	n, _ := io.ReadFull(f, head[:])
	f.Close()

	if n >= 4 && head == magic {
		return Load(path)
	}
	return BuildFromMozcTSV(path)
}

// Merge combines dictionaries in priority order: earlier dictionaries'
// candidates for a shared reading appear first. Returns nil if dicts
// is empty.
func Merge(dicts []*Dictionary) (*Dictionary, error) {
	if len(dicts) == 0 {
		return nil, nil
	}

	merged := make(map[string][]Candidate)
	var order []string
	for _, d := range dicts {
		for _, e := range d.entries {
			if _, ok := merged[e.Reading]; !ok {
				order = append(order, e.Reading)
			}
			cands := merged[e.Reading]
			for _, c := range e.Candidates {
				if !candidateSurfacesContain(cands, c.Surface) {
					cands = append(cands, c)
				}
			}
			merged[e.Reading] = cands
		}
	}

	entries := make([]Entry, 0, len(order))
	for _, reading := range order {
		entries = append(entries, Entry{Reading: reading, Candidates: merged[reading]})
	}
	entries = sortAndDedup(entries)
	return buildFromEntries(entries)
}

func writeU16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeF32(w io.Writer, v float32) error {
	return writeU32(w, math.Float32bits(v))
}

func writeString16(w io.Writer, s string) error {
	if err := writeU16(w, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readF32(r io.Reader) (float32, error) {
	v, err := readU32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func readString16(r io.Reader) (string, error) {
	n, err := readU16(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("dict: invalid UTF-8 in string field")
	}
	return string(buf), nil
}
