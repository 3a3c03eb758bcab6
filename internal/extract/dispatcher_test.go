package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeExtractor struct {
	base
	prefix string
	calls  int
}

func newFake(t *testing.T, tag Tag, prefix string) *fakeExtractor {
	t.Helper()
	b, err := newBase(tag)
	if err != nil {
		t.Fatalf("newBase: %v", err)
	}
	return &fakeExtractor{base: b, prefix: prefix}
}

func (f *fakeExtractor) CanHandle(u string) bool { return f.prefix != "" && strings.HasPrefix(u, f.prefix) }

func (f *fakeExtractor) Extract(_ context.Context, u string) (Extract, error) {
	f.calls++
	return f.result("title "+u, "content", ""), nil
}

func TestNewDispatcher_Validation(t *testing.T) {
	fallback := newFake(t, "Fallback", "")
	a := newFake(t, "A", "https://a/")
	if _, err := NewDispatcher(nil, a); !errors.Is(err, ErrNoFallback) {
		t.Fatalf("expected ErrNoFallback, got %v", err)
	}
	if _, err := NewDispatcher(fallback, a, fallback); !errors.Is(err, ErrAmbiguousFallback) {
		t.Fatalf("expected ErrAmbiguousFallback, got %v", err)
	}
	if _, err := NewDispatcher(fallback, a, nil); !errors.Is(err, ErrNilExtractor) {
		t.Fatalf("expected ErrNilExtractor, got %v", err)
	}
	if _, err := NewDispatcher(fallback, a, newFake(t, "A", "https://b/")); !errors.Is(err, ErrDuplicateTag) {
		t.Fatalf("expected ErrDuplicateTag, got %v", err)
	}
	if _, err := NewDispatcher(fallback); err != nil {
		t.Fatalf("fallback-only dispatcher should be valid: %v", err)
	}
}

func TestDispatcher_FirstMatchWins(t *testing.T) {
	fallback := newFake(t, "Fallback", "")
	a := newFake(t, "A", "https://a/")
	ab := newFake(t, "AB", "https://a/b")
	d, err := NewDispatcher(fallback, a, ab)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := d.Extract(context.Background(), "https://a/b/c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ExtractType != "A" || a.calls != 1 || ab.calls != 0 || fallback.calls != 0 {
		t.Fatalf("expected first matching extractor, got %q (calls a=%d ab=%d fb=%d)", got.ExtractType, a.calls, ab.calls, fallback.calls)
	}
	if !d.CanHandle("anything") || d.Tag() != TagStrategy {
		t.Fatalf("dispatcher should accept every url and carry the strategy tag")
	}
}

func TestDispatcher_FallbackUsedExactlyOnce(t *testing.T) {
	fallback := newFake(t, "Fallback", "")
	a := newFake(t, "A", "https://a/")
	b := newFake(t, "B", "https://b/")
	d, err := NewDispatcher(fallback, a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := d.Extract(context.Background(), "https://elsewhere/page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.calls != 1 || a.calls != 0 || b.calls != 0 {
		t.Fatalf("expected fallback exactly once, calls fb=%d a=%d b=%d", fallback.calls, a.calls, b.calls)
	}
	if got.ExtractType != "Fallback" || got.Title != "title https://elsewhere/page" {
		t.Fatalf("unexpected extract %+v", got)
	}
}

func TestTag_Validate(t *testing.T) {
	for _, ok := range []Tag{TagHTML, TagRedditPost, TagSubreddit, TagStrategy, "V2"} {
		if err := ok.Validate(); err != nil {
			t.Fatalf("%q: unexpected error %v", ok, err)
		}
	}
	for _, bad := range []Tag{"", "Html Extractor", "reddit-post"} {
		if err := bad.Validate(); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
	if _, err := NewHTML("", nil); err == nil {
		t.Fatalf("expected constructor to reject empty tag")
	}
}

// sliceExtractor is a value type that cannot be compared with ==.
type sliceExtractor struct {
	base
	prefixes []string
}

func (s sliceExtractor) CanHandle(u string) bool {
	for _, p := range s.prefixes {
		if strings.HasPrefix(u, p) {
			return true
		}
	}
	return false
}

func (s sliceExtractor) Extract(_ context.Context, u string) (Extract, error) {
	return s.result(u, "content", ""), nil
}

func TestNewDispatcher_UncomparableExtractors(t *testing.T) {
	same := sliceExtractor{base: base{tag: "Same"}, prefixes: []string{"https://s/"}}
	if _, err := NewDispatcher(same, same); !errors.Is(err, ErrDuplicateTag) {
		t.Fatalf("expected ErrDuplicateTag, got %v", err)
	}
	other := sliceExtractor{base: base{tag: "Other"}, prefixes: []string{"https://o/"}}
	d, err := NewDispatcher(same, other)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Select("https://o/x").Tag() != "Other" {
		t.Fatalf("expected value extractor to be selected")
	}
}
