package store

import (
	"testing"
	"time"
)

func TestFromTimeRoundTrip(t *testing.T) {
	in := time.Date(2026, time.March, 5, 13, 45, 2, 0, time.UTC)
	st := FromTime(in)
	out := st.Time()
	if !in.Equal(out) {
		t.Fatalf("round trip mismatch: %v != %v", in, out)
	}
	if st.Weekday != 3 { // 2026-03-05 is a Thursday: Monday=0 .. Thursday=3
		t.Fatalf("unexpected weekday: %d", st.Weekday)
	}
}

func TestStrftime(t *testing.T) {
	st := FromTime(time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC))
	got := st.Strftime()
	want := "02 Jan 2026 03:04:05 +0000"
	if got != want {
		t.Fatalf("Strftime() = %q, want %q", got, want)
	}
}

func TestCanonicalizeDeterministic(t *testing.T) {
	e1 := &Entry{Link: "https://example.com/a", Author: "jdoe", Extra: map[string]string{"z": "1", "a": "2"}}
	e2 := &Entry{Link: "https://example.com/a", Author: "jdoe", Extra: map[string]string{"a": "2", "z": "1"}}
	if e1.Canonicalize() != e2.Canonicalize() {
		t.Fatalf("canonical form should not depend on map iteration order")
	}

	e3 := &Entry{Link: "https://example.com/b", Author: "jdoe"}
	if e1.Canonicalize() == e3.Canonicalize() {
		t.Fatalf("distinct entries should canonicalize differently")
	}
}

func TestSameAsIgnoresFeedUpdatedParsed(t *testing.T) {
	t1 := FromTime(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	t2 := FromTime(time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC))

	a := &Entry{ID: "x", Link: "https://example.com", FeedUpdatedParsed: &t1}
	b := &Entry{ID: "x", Link: "https://example.com", FeedUpdatedParsed: &t2}
	if !a.SameAs(b) {
		t.Fatalf("entries differing only by feed_updated_parsed should be SameAs")
	}

	c := &Entry{ID: "x", Link: "https://example.com/different", FeedUpdatedParsed: &t1}
	if a.SameAs(c) {
		t.Fatalf("entries with differing link should not be SameAs")
	}
}

func TestSameAsIgnoresMessageID(t *testing.T) {
	// A freshly-parsed entry never carries a MessageID; the stored one
	// always does. That alone must not make an otherwise-identical
	// entry look "Updated" on re-ingest.
	fresh := &Entry{ID: "x", Link: "https://example.com"}
	stored := &Entry{ID: "x", Link: "https://example.com", MessageID: "<example.1@pnntprss>"}
	if !stored.SameAs(fresh) {
		t.Fatalf("entries differing only by MessageID should be SameAs")
	}
}
