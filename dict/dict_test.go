package dict

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const testJSON = `[
	{
		"reading": "キョウ",
		"candidates": [
			{"surface": "今日", "score": 1.5},
			{"surface": "京", "score": 0.8}
		]
	},
	{
		"reading": "キョウト",
		"candidates": [
			{"surface": "京都", "score": 2.0}
		]
	},
	{
		"reading": "トウキョウ",
		"candidates": [
			{"surface": "東京", "score": 2.5}
		]
	}
]`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func buildTestJSONDict(t *testing.T) *Dictionary {
	t.Helper()
	path := writeTemp(t, "dict.json", testJSON)
	d, err := BuildFromJSON(path)
	if err != nil {
		t.Fatalf("BuildFromJSON: %v", err)
	}
	return d
}

func TestBuildFromJSON(t *testing.T) {
	d := buildTestJSONDict(t)
	var sawKyou, sawKyouto, sawToukyou bool
	for _, e := range d.entries {
		switch e.Reading {
		case "きょう":
			sawKyou = true
		case "きょうと":
			sawKyouto = true
		case "とうきょう":
			sawToukyou = true
		}
	}
	if !sawKyou || !sawKyouto || !sawToukyou {
		t.Errorf("missing expected hiragana readings: %+v", d.entries)
	}
}

func TestExactMatchSearch(t *testing.T) {
	d := buildTestJSONDict(t)

	result, ok := d.ExactMatch("きょう")
	if !ok {
		t.Fatal("ExactMatch(きょう) not found")
	}
	if result.Reading != "きょう" || len(result.Candidates) != 2 {
		t.Fatalf("result = %+v", result)
	}
	if result.Candidates[0].Surface != "京" || math.Abs(float64(result.Candidates[0].Score-0.8)) > 1e-6 {
		t.Errorf("Candidates[0] = %+v, want 京/0.8", result.Candidates[0])
	}
	if result.Candidates[1].Surface != "今日" || math.Abs(float64(result.Candidates[1].Score-1.5)) > 1e-6 {
		t.Errorf("Candidates[1] = %+v, want 今日/1.5", result.Candidates[1])
	}

	if _, ok := d.ExactMatch("きょうとふ"); ok {
		t.Error("ExactMatch(きょうとふ) unexpectedly found")
	}
}

func TestCommonPrefixSearch(t *testing.T) {
	d := buildTestJSONDict(t)

	results := d.CommonPrefixSearch("きょうと")
	if len(results) != 2 {
		t.Fatalf("CommonPrefixSearch(きょうと) = %+v, want 2 results", results)
	}
	seen := map[string]bool{}
	for _, r := range results {
		seen[r.Reading] = true
	}
	if !seen["きょう"] || !seen["きょうと"] {
		t.Errorf("results = %+v, missing expected readings", results)
	}
}

func TestSaveAndLoad(t *testing.T) {
	d := buildTestJSONDict(t)
	binPath := filepath.Join(t.TempDir(), "dict.bin")
	if err := d.Save(binPath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(binPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	result, ok := loaded.ExactMatch("きょう")
	if !ok || result.Reading != "きょう" || len(result.Candidates) != 2 {
		t.Fatalf("loaded ExactMatch(きょう) = %+v, ok=%v", result, ok)
	}
	if result.Candidates[0].Surface != "京" {
		t.Errorf("Candidates[0].Surface = %q, want 京", result.Candidates[0].Surface)
	}

	if results := loaded.CommonPrefixSearch("きょうと"); len(results) != 2 {
		t.Errorf("loaded CommonPrefixSearch(きょうと) = %+v, want 2", results)
	}
}

func TestNoMatch(t *testing.T) {
	d := buildTestJSONDict(t)
	if _, ok := d.ExactMatch("おおさか"); ok {
		t.Error("ExactMatch(おおさか) unexpectedly found")
	}
	if results := d.CommonPrefixSearch("おおさか"); len(results) != 0 {
		t.Errorf("CommonPrefixSearch(おおさか) = %+v, want empty", results)
	}
}

const testMozcTSV = "# Comment line\n" +
	"きょう\t今日\t名詞\t\n" +
	"きょう\t京\t名詞\t\n" +
	"きょうと\t京都\t名詞\tcity\n" +
	"とうきょう\t東京\t名詞\tcapital\n"

func TestBuildFromMozcTSV(t *testing.T) {
	path := writeTemp(t, "dict.tsv", testMozcTSV)
	d, err := BuildFromMozcTSV(path)
	if err != nil {
		t.Fatalf("BuildFromMozcTSV: %v", err)
	}
	if len(d.entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(d.entries))
	}

	result, ok := d.ExactMatch("きょう")
	if !ok || len(result.Candidates) != 2 {
		t.Fatalf("ExactMatch(きょう) = %+v, ok=%v", result, ok)
	}
	if result.Candidates[0].Surface != "今日" || result.Candidates[1].Surface != "京" {
		t.Errorf("candidates = %+v", result.Candidates)
	}

	result, ok = d.ExactMatch("きょうと")
	if !ok || len(result.Candidates) != 1 || result.Candidates[0].Surface != "京都" {
		t.Fatalf("ExactMatch(きょうと) = %+v, ok=%v", result, ok)
	}
}

func TestBuildFromMozcTSVSkipsInvalid(t *testing.T) {
	tsv := "# Comment\n\nsingle_column\n\t\t名詞\t\nきょう\t今日\t名詞\t\n"
	path := writeTemp(t, "dict.tsv", tsv)
	d, err := BuildFromMozcTSV(path)
	if err != nil {
		t.Fatalf("BuildFromMozcTSV: %v", err)
	}
	if len(d.entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(d.entries))
	}
	result, ok := d.ExactMatch("きょう")
	if !ok || result.Candidates[0].Surface != "今日" {
		t.Fatalf("ExactMatch(きょう) = %+v, ok=%v", result, ok)
	}
}

func TestBuildFromMozcTSVDedupSurfaces(t *testing.T) {
	tsv := "きょう\t今日\t名詞\t\nきょう\t今日\t副詞\t\nきょう\t京\t名詞\t\n"
	path := writeTemp(t, "dict.tsv", tsv)
	d, err := BuildFromMozcTSV(path)
	if err != nil {
		t.Fatalf("BuildFromMozcTSV: %v", err)
	}
	result, ok := d.ExactMatch("きょう")
	if !ok || len(result.Candidates) != 2 {
		t.Fatalf("ExactMatch(きょう) = %+v, ok=%v", result, ok)
	}
	if result.Candidates[0].Surface != "今日" || result.Candidates[1].Surface != "京" {
		t.Errorf("candidates = %+v", result.Candidates)
	}
}

func TestLoadAutoBinary(t *testing.T) {
	d := buildTestJSONDict(t)
	binPath := filepath.Join(t.TempDir(), "dict.bin")
	if err := d.Save(binPath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadAuto(binPath)
	if err != nil {
		t.Fatalf("LoadAuto: %v", err)
	}
	result, ok := loaded.ExactMatch("きょう")
	if !ok || len(result.Candidates) != 2 {
		t.Fatalf("ExactMatch(きょう) = %+v, ok=%v", result, ok)
	}
}

func TestLoadAutoMozcTSV(t *testing.T) {
	path := writeTemp(t, "dict.tsv", testMozcTSV)
	d, err := LoadAuto(path)
	if err != nil {
		t.Fatalf("LoadAuto: %v", err)
	}
	result, ok := d.ExactMatch("きょう")
	if !ok || len(result.Candidates) != 2 || result.Candidates[0].Surface != "今日" {
		t.Fatalf("ExactMatch(きょう) = %+v, ok=%v", result, ok)
	}
}

func TestMergeDictionaries(t *testing.T) {
	path1 := writeTemp(t, "d1.tsv", "きょう\t今日\t名詞\t\nきょうと\t京都\t名詞\t\n")
	path2 := writeTemp(t, "d2.tsv", "きょう\t教\t名詞\t\nおおさか\t大阪\t名詞\t\n")

	d1, err := BuildFromMozcTSV(path1)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := BuildFromMozcTSV(path2)
	if err != nil {
		t.Fatal(err)
	}

	merged, err := Merge([]*Dictionary{d1, d2})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged == nil {
		t.Fatal("Merge returned nil")
	}

	result, ok := merged.ExactMatch("きょう")
	if !ok || len(result.Candidates) != 2 {
		t.Fatalf("ExactMatch(きょう) = %+v, ok=%v", result, ok)
	}
	if result.Candidates[0].Surface != "今日" || result.Candidates[1].Surface != "教" {
		t.Errorf("candidates = %+v", result.Candidates)
	}

	if _, ok := merged.ExactMatch("きょうと"); !ok {
		t.Error("ExactMatch(きょうと) not found in merged dictionary")
	}
	if _, ok := merged.ExactMatch("おおさか"); !ok {
		t.Error("ExactMatch(おおさか) not found in merged dictionary")
	}
}

func TestMergeEmpty(t *testing.T) {
	merged, err := Merge(nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged != nil {
		t.Errorf("Merge(nil) = %v, want nil", merged)
	}
}

func TestDumpAll(t *testing.T) {
	d := buildTestJSONDict(t)
	var buf bytes.Buffer
	n, err := d.DumpAll(&buf)
	if err != nil {
		t.Fatalf("DumpAll: %v", err)
	}
	if n != len(d.entries) {
		t.Errorf("DumpAll returned %d, want %d", n, len(d.entries))
	}
	if buf.Len() == 0 {
		t.Error("DumpAll wrote nothing")
	}
}

func TestSearchBySurface(t *testing.T) {
	d := buildTestJSONDict(t)
	results := d.SearchBySurface("京")
	if len(results) == 0 {
		t.Fatal("SearchBySurface(京) found nothing")
	}
	for _, r := range results {
		if !bytes.Contains([]byte(r.Surface), []byte("京")) {
			t.Errorf("result %+v does not contain 京", r)
		}
	}
}
