package poller

import (
	"os"
	"testing"
	"time"

	"github.com/go-while/pnntprss/internal/store"
)

func TestFixDatesBackfillsMissingDates(t *testing.T) {
	s := testSettings(t)
	g, err := store.Create(s, "example", &store.Config{Href: "https://example.com/feed"})
	if err != nil {
		t.Fatal(err)
	}

	updated := store.FromTime(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	if err := g.SaveArticle(1, &store.Entry{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := g.SaveArticle(2, &store.Entry{ID: "b", FeedUpdatedParsed: &updated}); err != nil {
		t.Fatal(err)
	}

	mtime := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(g.ArticlePath(1), mtime, mtime); err != nil {
		t.Fatal(err)
	}

	fixed, err := FixDates(g)
	if err != nil {
		t.Fatalf("FixDates: %v", err)
	}
	if fixed != 1 {
		t.Fatalf("expected 1 article fixed, got %d", fixed)
	}

	a1, err := g.Article(1)
	if err != nil {
		t.Fatal(err)
	}
	if a1.FeedUpdatedParsed == nil || a1.FeedUpdatedParsed.Year != 2025 {
		t.Fatalf("expected article 1 to get a backfilled date, got %+v", a1.FeedUpdatedParsed)
	}

	a2, err := g.Article(2)
	if err != nil {
		t.Fatal(err)
	}
	if a2.FeedUpdatedParsed == nil || a2.FeedUpdatedParsed.Year != 2026 {
		t.Fatalf("expected article 2's existing date to be left untouched, got %+v", a2.FeedUpdatedParsed)
	}
}

func TestFixDatesSkipsWhenLockHeld(t *testing.T) {
	s := testSettings(t)
	g, err := store.Create(s, "example", &store.Config{Href: "https://example.com/feed"})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.SaveArticle(1, &store.Entry{ID: "a"}); err != nil {
		t.Fatal(err)
	}

	// Hold the group lock through a second handle, standing in for
	// another process.
	other, err := store.Load(s, "example")
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := other.Lock.TryLock(); err != nil || !ok {
		t.Fatalf("expected to acquire lock for test setup: ok=%v err=%v", ok, err)
	}
	defer other.Lock.Unlock()

	fixed, err := FixDates(g)
	if err != nil {
		t.Fatalf("expected no error when lock is held elsewhere, got %v", err)
	}
	if fixed != 0 {
		t.Fatalf("expected no articles fixed while locked, got %d", fixed)
	}
}
