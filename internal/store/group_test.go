package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-while/pnntprss/internal/config"
)

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	dir := t.TempDir()
	s := config.NewDefault()
	s.BaseDir = dir
	s.GroupsDir = filepath.Join(dir, "groups")
	if err := s.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCreateRequiresHref(t *testing.T) {
	s := testSettings(t)
	if _, err := Create(s, "example", &Config{}); err != ErrMissingHref {
		t.Fatalf("expected ErrMissingHref, got %v", err)
	}
}

func TestCreateLoadDelete(t *testing.T) {
	s := testSettings(t)
	g, err := Create(s, "example", &Config{Href: "https://example.com/feed"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := Create(s, "example", &Config{Href: "https://example.com/feed"}); err != ErrGroupAlreadyExists {
		t.Fatalf("expected ErrGroupAlreadyExists, got %v", err)
	}

	g2, err := Load(s, "example")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg, err := g2.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Href != "https://example.com/feed" {
		t.Fatalf("unexpected href: %q", cfg.Href)
	}

	if err := g.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := Load(s, "example"); err != ErrNoSuchGroup {
		t.Fatalf("expected ErrNoSuchGroup after delete, got %v", err)
	}
}

func TestCreateLeavesNoStagingDirBehind(t *testing.T) {
	s := testSettings(t)
	if _, err := Create(s, "example", &Config{Href: "https://example.com/feed"}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(s.GroupsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "example" {
		t.Fatalf("expected only the finished group directory, got %v", entries)
	}
}

func TestWipeResetsConfigAndClearsArticles(t *testing.T) {
	s := testSettings(t)
	g, err := Create(s, "example", &Config{Href: "https://example.com/feed", Title: "Example"})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.SaveArticle(1, &Entry{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := g.SaveIndex(map[string]int64{"a": 1}); err != nil {
		t.Fatal(err)
	}

	if err := g.Wipe(); err != nil {
		t.Fatalf("Wipe: %v", err)
	}

	if _, _, count, err := g.ArticleRange(); err != nil || count != 0 {
		t.Fatalf("expected no articles after wipe, count=%d err=%v", count, err)
	}
	idx, err := g.LoadIndex()
	if err != nil || len(idx) != 0 {
		t.Fatalf("expected empty index after wipe, idx=%v err=%v", idx, err)
	}
	cfg, err := g.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Href != "https://example.com/feed" || cfg.Title != "" {
		t.Fatalf("expected config reset to bare href, got %+v", cfg)
	}
}

func TestArticleRoundTripAndRange(t *testing.T) {
	s := testSettings(t)
	g, err := Create(s, "example", &Config{Href: "https://example.com/feed"})
	if err != nil {
		t.Fatal(err)
	}

	for i := int64(1); i <= 3; i++ {
		e := &Entry{ID: "id", Link: "https://example.com/" + string(rune('a'+i))}
		if err := g.SaveArticle(i, e); err != nil {
			t.Fatalf("SaveArticle(%d): %v", i, err)
		}
	}

	lowest, highest, count, err := g.ArticleRange()
	if err != nil {
		t.Fatal(err)
	}
	if lowest != 1 || highest != 3 || count != 3 {
		t.Fatalf("unexpected range: %d %d %d", lowest, highest, count)
	}

	e, err := g.Article(2)
	if err != nil {
		t.Fatal(err)
	}
	if e == nil || e.ID != "id" {
		t.Fatalf("unexpected article: %+v", e)
	}

	missing, err := g.Article(99)
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing article, got %+v", missing)
	}

	all, err := g.Articles(AllRange())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Number != 1 || all[2].Number != 3 {
		t.Fatalf("unexpected articles: %+v", all)
	}

	sub, err := g.Articles(RangeFrom(2))
	if err != nil {
		t.Fatal(err)
	}
	if len(sub) != 2 {
		t.Fatalf("expected 2 articles from RangeFrom(2), got %d", len(sub))
	}
}

func TestAllocateArticleNumberForwardScan(t *testing.T) {
	s := testSettings(t)
	g, err := Create(s, "example", &Config{Href: "https://example.com/feed"})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := g.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}

	n1, err := g.AllocateArticleNumber(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if n1 != 1 {
		t.Fatalf("expected first article number 1, got %d", n1)
	}
	if err := g.SaveArticle(n1, &Entry{ID: "a"}); err != nil {
		t.Fatal(err)
	}

	// Simulate a stray occupied number 2 before the allocator reaches it.
	if err := g.SaveArticle(2, &Entry{ID: "stray"}); err != nil {
		t.Fatal(err)
	}

	n2, err := g.AllocateArticleNumber(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if n2 != 3 {
		t.Fatalf("expected forward-scan to skip occupied 2 and return 3, got %d", n2)
	}
}

func TestReadyToCheck(t *testing.T) {
	s := testSettings(t)
	g, err := Create(s, "example", &Config{Href: "https://example.com/feed"})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := g.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	if !g.ReadyToCheck(cfg, now, 1800) {
		t.Fatalf("never-polled group should always be ready")
	}

	cfg.LastPolled = now.Unix()
	if g.ReadyToCheck(cfg, now, 1800) {
		t.Fatalf("just-polled group should not be ready")
	}
	if !g.ReadyToCheck(cfg, now.Add(31*time.Minute), 1800) {
		t.Fatalf("group should be ready after interval elapses")
	}
}

func TestParseRange(t *testing.T) {
	cases := []struct {
		in   string
		want Range
	}{
		{"5", RangeBetween(5, 5)},
		{"5-", RangeFrom(5)},
		{"5-10", RangeBetween(5, 10)},
	}
	for _, c := range cases {
		got, err := ParseRange(c.in)
		if err != nil {
			t.Fatalf("ParseRange(%q): %v", c.in, err)
		}
		if got.From != c.want.From {
			t.Fatalf("ParseRange(%q).From = %d, want %d", c.in, got.From, c.want.From)
		}
		if (got.To == nil) != (c.want.To == nil) {
			t.Fatalf("ParseRange(%q).To nilness mismatch", c.in)
		}
		if got.To != nil && *got.To != *c.want.To {
			t.Fatalf("ParseRange(%q).To = %d, want %d", c.in, *got.To, *c.want.To)
		}
	}
	if _, err := ParseRange("bogus"); err == nil {
		t.Fatalf("expected error for invalid range")
	}
}
