package poller

import (
	"fmt"
	"time"

	"github.com/go-while/pnntprss/internal/store"
)

// Expire removes articles older than the group's configured (or the
// installation default) lifetime, grounded on
// _examples/original_source/expire.py. A lifetime of 0 means
// "keep forever" and Expire is a no-op. It returns the number of
// articles removed.
func Expire(g *store.Group, defaultLifetimeSecs int, now time.Time) (int, error) {
	ok, err := g.Lock.TryLock()
	if err != nil {
		return 0, fmt.Errorf("expire: trylock %s: %w", g.Name, err)
	}
	if !ok {
		return 0, nil
	}
	defer g.Lock.Unlock()

	cfg, err := g.LoadConfig()
	if err != nil {
		return 0, fmt.Errorf("expire: load config %s: %w", g.Name, err)
	}

	lifetime := cfg.ArticleLifetime
	if lifetime <= 0 {
		lifetime = defaultLifetimeSecs
	}
	if lifetime <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-time.Duration(lifetime) * time.Second)

	idx, err := g.LoadIndex()
	if err != nil {
		return 0, fmt.Errorf("expire: load index %s: %w", g.Name, err)
	}

	removed := 0
	for n := range g.ArticleNumbers(store.AllRange()) {
		mtime, err := g.ArticleModTime(n)
		if err != nil {
			continue
		}
		if mtime.After(cutoff) {
			continue
		}
		if err := g.DeleteArticle(n); err != nil {
			return removed, fmt.Errorf("expire: delete article %s/%d: %w", g.Name, n, err)
		}
		removed++
		for k, v := range idx {
			if v == n {
				delete(idx, k)
			}
		}
	}

	if removed > 0 {
		if err := g.SaveIndex(idx); err != nil {
			return removed, fmt.Errorf("expire: save index %s: %w", g.Name, err)
		}
	}
	return removed, nil
}
