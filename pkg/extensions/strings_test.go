package extensions

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSubstr(t *testing.T) {
	cases := map[string]string{
		"0,5":  "hello",
		"6":    "world",
		"-5":   "world",
		"0,-6": "hello",
		"20":   "",
	}
	for bounds, want := range cases {
		if got := substr("hello world", bounds); got != want {
			t.Fatalf("substr(%q) = %q, want %q", bounds, got, want)
		}
	}
}

func TestTokenize_RespectsParentheses(t *testing.T) {
	got := tokenize("a, f(b, c), d", ",")
	if diff := cmp.Diff([]string{"a", "f(b, c)", "d"}, got); diff != "" {
		t.Fatalf("tokenize mismatch (-want +got):\n%s", diff)
	}
}

func TestExcerpt(t *testing.T) {
	if got := excerpt("The quick brown fox jumps", "brown", 4); got != "...ick brown fox..." {
		t.Fatalf("unexpected excerpt %q", got)
	}
	if got := excerpt("short", "missing", 4); got != "" {
		t.Fatalf("expected empty excerpt, got %q", got)
	}
}

func TestWrap(t *testing.T) {
	if got := wrap("one two three four", 9); got != "one two\nthree\nfour" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestHighlight_EscapesInput(t *testing.T) {
	got := highlight("<i>Go</i> and go", "go")
	want := `&lt;i&gt;<span class="highlight">Go</span>&lt;/i&gt; and <span class="highlight">go</span>`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTail(t *testing.T) {
	if got := tail("abcdefghij", 6); got != "...hij" {
		t.Fatalf("unexpected tail %q", got)
	}
}
