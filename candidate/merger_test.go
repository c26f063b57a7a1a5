package candidate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/karukan/engine/dict"
	"github.com/karukan/engine/learning"
)

func buildDict(t *testing.T, tsv string) *dict.Dictionary {
	t.Helper()
	path := filepath.Join(t.TempDir(), "d.tsv")
	if err := os.WriteFile(path, []byte(tsv), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := dict.BuildFromMozcTSV(path)
	if err != nil {
		t.Fatalf("BuildFromMozcTSV: %v", err)
	}
	return d
}

// TestCandidatePriority implements the spec's candidate-priority
// property: for a reading present in learning, user, and system with
// distinct surfaces, the merged list orders Learning < User < Model <
// System by index.
func TestCandidatePriority(t *testing.T) {
	cache := learning.New(100)
	cache.Record("きょう", "強")

	userDict := buildDict(t, "きょう\t今日\t名詞\t\n")
	systemDict := buildDict(t, "きょう\t京\t名詞\t\n")

	out := Merge(MergeInput{
		Reading:         "きょう",
		Learning:        cache,
		UserDict:        userDict,
		ModelCandidates: []string{"教"},
		SystemDict:      systemDict,
		NumCandidates:   10,
	})

	indexOf := func(surface string) int {
		for i, c := range out {
			if c.Surface == surface {
				return i
			}
		}
		return -1
	}

	learningIdx, userIdx, modelIdx, systemIdx := indexOf("強"), indexOf("今日"), indexOf("教"), indexOf("京")
	if learningIdx < 0 || userIdx < 0 || modelIdx < 0 || systemIdx < 0 {
		t.Fatalf("missing expected candidate in %+v", out)
	}
	if !(learningIdx < userIdx && userIdx < modelIdx && modelIdx < systemIdx) {
		t.Errorf("priority order violated: learning=%d user=%d model=%d system=%d", learningIdx, userIdx, modelIdx, systemIdx)
	}
}

// TestDeduplication implements the spec's deduplication property: no
// two candidates in the final list share a surface, and the first
// source to produce a surface wins its tag.
func TestDeduplication(t *testing.T) {
	cache := learning.New(100)
	cache.Record("きょう", "今日")

	userDict := buildDict(t, "きょう\t今日\t名詞\t\n")
	systemDict := buildDict(t, "きょう\t今日\t名詞\t\n")

	out := Merge(MergeInput{
		Reading:         "きょう",
		Learning:        cache,
		UserDict:        userDict,
		ModelCandidates: []string{"今日"},
		SystemDict:      systemDict,
		NumCandidates:   10,
	})

	seen := map[string]int{}
	for _, c := range out {
		seen[c.Surface]++
	}
	for surface, count := range seen {
		if count > 1 {
			t.Errorf("surface %q appears %d times, want at most 1", surface, count)
		}
	}

	var found bool
	for _, c := range out {
		if c.Surface == "今日" {
			found = true
			if c.Source != SourceLearning {
				t.Errorf("今日's source = %v, want SourceLearning (first producer wins)", c.Source)
			}
		}
	}
	if !found {
		t.Fatal("expected 今日 in merged output")
	}
}

func TestMergeFallback(t *testing.T) {
	out := Merge(MergeInput{Reading: "きょう", NumCandidates: 10})
	if len(out) != 2 {
		t.Fatalf("Merge with no sources = %+v, want 2 fallback candidates", out)
	}
	if out[0].Surface != "きょう" || out[0].Source != SourceFallback {
		t.Errorf("out[0] = %+v, want hiragana fallback", out[0])
	}
	if out[1].Source != SourceFallback {
		t.Errorf("out[1] = %+v, want katakana fallback", out[1])
	}
}

func TestMergeTruncatesToNumCandidates(t *testing.T) {
	out := Merge(MergeInput{
		Reading:         "きょう",
		ModelCandidates: []string{"教", "興", "郷"},
		NumCandidates:   2,
	})
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}

func TestMergeUnboundedWhenNumCandidatesZero(t *testing.T) {
	out := Merge(MergeInput{
		Reading:         "きょう",
		ModelCandidates: []string{"教", "興", "郷"},
	})
	if len(out) != 5 { // 3 model + 2 fallback
		t.Fatalf("len(out) = %d, want 5", len(out))
	}
}

func TestSuggestLearningOnly(t *testing.T) {
	cache := learning.New(100)
	cache.Record("わせだ", "早稲田大学")
	cache.Record("わせだだいがく", "早稲田大学")

	out := Suggest(cache, "わせだ")
	var sawLongForm bool
	for _, c := range out {
		if c.Source != SourceLearning {
			t.Errorf("Suggest candidate source = %v, want SourceLearning", c.Source)
		}
		if c.Surface == "早稲田大学" {
			sawLongForm = true
		}
	}
	if !sawLongForm {
		t.Errorf("Suggest(わせだ) = %+v, want 早稲田大学 present", out)
	}
}

func TestSuggestLimitedToThree(t *testing.T) {
	cache := learning.New(100)
	cache.Record("き", "気")
	cache.Record("きょう", "今日")
	cache.Record("きのう", "昨日")
	cache.Record("きせつ", "季節")
	cache.Record("きぼう", "希望")

	out := Suggest(cache, "き")
	if len(out) > 3 {
		t.Errorf("Suggest returned %d candidates, want at most 3", len(out))
	}
}

func TestSuggestEmptyCache(t *testing.T) {
	if out := Suggest(nil, "きょう"); out != nil {
		t.Errorf("Suggest(nil, ...) = %+v, want nil", out)
	}
	if out := Suggest(learning.New(100), "きょう"); len(out) != 0 {
		t.Errorf("Suggest on empty cache = %+v, want empty", out)
	}
}
