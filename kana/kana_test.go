package kana

import "testing"

func TestToKatakana(t *testing.T) {
	cases := []struct{ in, want string }{
		{"あいうえお", "アイウエオ"},
		{"こんにちは", "コンニチハ"},
		{"きゃきゅきょ", "キャキュキョ"},
		{"がぎぐげご", "ガギグゲゴ"},
		{"ぱぴぷぺぽ", "パピプペポ"},
		{"abc123", "abc123"},
		{"あいうabc", "アイウabc"},
	}
	for _, c := range cases {
		if got := ToKatakana(c.in); got != c.want {
			t.Errorf("ToKatakana(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestToHiragana(t *testing.T) {
	cases := []struct{ in, want string }{
		{"アイウエオ", "あいうえお"},
		{"コンニチハ", "こんにちは"},
		{"キャキュキョ", "きゃきゅきょ"},
	}
	for _, c := range cases {
		if got := ToHiragana(c.in); got != c.want {
			t.Errorf("ToHiragana(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	const original = "こんにちは"
	if got := ToHiragana(ToKatakana(original)); got != original {
		t.Errorf("round trip = %q, want %q", got, original)
	}
}

func TestNormalizeNFKC(t *testing.T) {
	cases := []struct{ in, want string }{
		{"（）", "()"},
		{"！？", "!?"},
		{"０１２３", "0123"},
		{"、。", "、。"},
		{"「」", "「」"},
		{"あいうえお", "あいうえお"},
		{"アイウエオ", "アイウエオ"},
		{"漢字", "漢字"},
	}
	for _, c := range cases {
		if got := NormalizeNFKC(c.in); got != c.want {
			t.Errorf("NormalizeNFKC(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeNFKCPreservesJinenMarkers(t *testing.T) {
	const (
		ctxMarker = ""
		inMarker  = ""
		outMarker = ""
	)
	prompt := ctxMarker + "context" + inMarker + "input" + outMarker
	if got := NormalizeNFKC(prompt); got != prompt {
		t.Errorf("NormalizeNFKC(%q) = %q, want unchanged", prompt, got)
	}
}

func TestClassification(t *testing.T) {
	if !IsHiragana('あ') || IsHiragana('ア') || IsHiragana('a') {
		t.Error("IsHiragana misclassified")
	}
	if !IsKatakana('ア') || IsKatakana('あ') {
		t.Error("IsKatakana misclassified")
	}
	if !IsKanji('漢') || IsKanji('あ') {
		t.Error("IsKanji misclassified")
	}
	if !IsRomaji('k') || IsRomaji('あ') {
		t.Error("IsRomaji misclassified")
	}
}
