package poller

import (
	"fmt"
	"log"

	"github.com/go-while/pnntprss/internal/store"
)

// FixDates backfills FeedUpdatedParsed on any stored article that is
// missing it, using the article file's mtime as the value, grounded
// on _examples/original_source/fixartdates.py. It returns the number
// of articles fixed.
func FixDates(g *store.Group) (int, error) {
	ok, err := g.Lock.TryLock()
	if err != nil {
		return 0, fmt.Errorf("fixdates: trylock %s: %w", g.Name, err)
	}
	if !ok {
		log.Printf("fixdates: %s locked", g.Name)
		return 0, nil
	}
	defer g.Lock.Unlock()

	fixed := 0
	for n := range g.ArticleNumbers(store.AllRange()) {
		entry, err := g.Article(n)
		if err != nil {
			return fixed, fmt.Errorf("fixdates: load article %s/%d: %w", g.Name, n, err)
		}
		if entry == nil || entry.FeedUpdatedParsed != nil {
			continue
		}
		mtime, err := g.ArticleModTime(n)
		if err != nil {
			return fixed, fmt.Errorf("fixdates: stat article %s/%d: %w", g.Name, n, err)
		}
		st := store.FromTime(mtime.UTC())
		entry.FeedUpdatedParsed = &st
		if err := g.SaveArticle(n, entry); err != nil {
			return fixed, fmt.Errorf("fixdates: save article %s/%d: %w", g.Name, n, err)
		}
		log.Printf("fixdates: fixed %s/%d", g.Name, n)
		fixed++
	}
	return fixed, nil
}
