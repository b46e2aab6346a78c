package sanitize

import "testing"

func TestStripHTMLRemovesEncodedTags(t *testing.T) {
	got := StripHTML("Handmade &lt;script&gt;alert(1)&lt;/script&gt; <b>vase</b>")
	if got != "Handmade alert(1) vase" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestForPromptTruncatesOnRunes(t *testing.T) {
	got := ForPrompt("₹₹₹₹₹", 3)
	if got != "₹₹₹..." {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
}

func TestForPromptDropsControlCharacters(t *testing.T) {
	got := ForPrompt("a\x00b\nc\td", 0)
	if got != "ab\nc\td" {
		t.Fatalf("unexpected result %q", got)
	}
}
