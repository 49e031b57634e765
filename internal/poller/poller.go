// Package poller implements the core feed-to-article ingestion cycle:
// fetch, identify, diff against the index, allocate article numbers,
// and persist -- spec.md §4.E, grounded on
// _examples/original_source/update.py's update_if_ready/
// update_group_from_feed and shaped after
// _examples/other_examples's rogue_planet fetcher (transport outcome ->
// redirect -> entries -> repository update -> failure accounting).
package poller

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/go-while/pnntprss/internal/config"
	"github.com/go-while/pnntprss/internal/feedsource"
	"github.com/go-while/pnntprss/internal/store"
)

// Poller polls one feed at a time on behalf of the Scheduler.
type Poller struct {
	Settings *config.Settings
	Client   *http.Client
	Limiter  *feedsource.HostLimiter
}

// New builds a Poller from installation settings.
func New(settings *config.Settings) *Poller {
	return &Poller{
		Settings: settings,
		Client:   feedsource.NewHTTPClient(time.Duration(settings.SocketTimeoutSecs) * time.Second),
		Limiter:  feedsource.NewHostLimiter(1, 2),
	}
}

// Poll runs one ingestion cycle against g: trylock, fetch, diff, save.
// It returns nil both when the poll succeeds and when the lock could
// not be acquired (another process or goroutine is already polling
// this group) -- trylock failure is not an error, per spec.md §4.F.
func (p *Poller) Poll(ctx context.Context, g *store.Group) error {
	ok, err := g.Lock.TryLock()
	if err != nil {
		return fmt.Errorf("poller: trylock %s: %w", g.Name, err)
	}
	if !ok {
		return nil
	}
	defer g.Lock.Unlock()

	cfg, err := g.LoadConfig()
	if err != nil {
		return fmt.Errorf("poller: load config %s: %w", g.Name, err)
	}

	// save_config always runs, success or failure, matching update.py's
	// finally-block discipline (spec.md §4.E.9).
	defer func() {
		if serr := g.SaveConfig(cfg); serr != nil {
			log.Printf("poller: save config %s: %v", g.Name, serr)
		}
	}()

	pollErr := p.poll(ctx, g, cfg)
	if pollErr != nil {
		recordFailure(cfg)
		log.Printf("poller: %s: %v", g.Name, pollErr)
	}
	return pollErr
}

func recordFailure(cfg *store.Config) {
	now := time.Now().Unix()
	cfg.LastFailedPoll = now
	cfg.FailedPolls++
}

func (p *Poller) poll(ctx context.Context, g *store.Group, cfg *store.Config) error {
	if err := p.Limiter.Wait(ctx, cfg.Href); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	doc, err := feedsource.Fetch(ctx, p.Client, cfg.Href, cfg.ETag, cfg.Modified, p.Settings.UserAgent)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	if doc.Href != "" && doc.Href != cfg.Href {
		log.Printf("poller: %s: permanent redirect %s -> %s", g.Name, cfg.Href, doc.Href)
		cfg.Href = doc.Href
	}

	if doc.NotModified() {
		cfg.LastPolled = time.Now().Unix()
		cfg.FailedPolls = 0
		return nil
	}

	if doc.Feed == nil {
		if doc.BozoErr != nil {
			return fmt.Errorf("parse: %w", doc.BozoErr)
		}
		return fmt.Errorf("parse: empty response")
	}
	if doc.Bozo {
		log.Printf("poller: %s: feed parsed with warnings: %v", g.Name, doc.BozoErr)
	}

	cfg.ETag = doc.ETag
	cfg.Modified = doc.Modified
	absorbFeedInfo(cfg, doc.Feed)

	idx, err := g.LoadIndex()
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	feedUpdated := feedUpdatedParsed(doc.Feed, doc.Modified)
	for _, item := range reversedItems(doc.Feed.Items) {
		entry := normalizeEntry(item, feedUpdated)
		if err := p.ingestEntry(g, cfg, idx, entry); err != nil {
			return err
		}
	}

	if err := g.SaveIndex(idx); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	cfg.LastPolled = time.Now().Unix()
	cfg.FailedPolls = 0
	return nil
}

// ingestEntry resolves one feed entry against the index: unchanged
// entries are skipped, changed ones are overwritten in place keeping
// their article number and Message-ID, and new ones get a freshly
// allocated number. A stale index entry pointing at a since-deleted
// article file is self-healed here rather than requiring a separate
// fixindex-style pass (spec.md §9 open question, grounded on
// _examples/original_source/fixindex.py).
func (p *Poller) ingestEntry(g *store.Group, cfg *store.Config, idx map[string]int64, entry *store.Entry) error {
	key := identityKey(entry)

	if num, found := idx[key]; found {
		existing, err := g.Article(num)
		if err != nil {
			return fmt.Errorf("load article %d: %w", num, err)
		}
		if existing == nil {
			log.Printf("poller: %s: self-healing index entry %s -> %d (article missing on disk)", g.Name, key, num)
			delete(idx, key)
		} else if existing.SameAs(entry) {
			return nil
		} else {
			entry.MessageID = existing.MessageID
			if err := g.SaveArticle(num, entry); err != nil {
				return fmt.Errorf("save article %d: %w", num, err)
			}
			return nil
		}
	}

	num, err := g.AllocateArticleNumber(cfg)
	if err != nil {
		return fmt.Errorf("allocate article number: %w", err)
	}
	entry.MessageID = fmt.Sprintf("<%s.%d@pnntprss>", g.Name, num)
	if err := g.SaveArticle(num, entry); err != nil {
		return fmt.Errorf("save article %d: %w", num, err)
	}
	idx[key] = num
	return nil
}

// identityKey reproduces update.py's canonical-identity step: the MD5
// hex digest of the entry's natural id, or of its canonical (stable)
// representation when no id is present (spec.md §4.E.5.c).
func identityKey(e *store.Entry) string {
	var preimage string
	if e.ID != "" {
		preimage = e.ID
	} else {
		preimage = e.Canonicalize()
	}
	sum := md5.Sum([]byte(preimage))
	return hex.EncodeToString(sum[:])
}

// reversedItems returns items oldest-first: feed parsers list entries
// newest-first, but ingestion must run chronologically so article
// numbers increase with publication order (spec.md §4.E.2).
func reversedItems(items []*gofeed.Item) []*gofeed.Item {
	out := make([]*gofeed.Item, len(items))
	for i, it := range items {
		out[len(items)-1-i] = it
	}
	return out
}

func personOf(p *gofeed.Person) *store.Person {
	if p == nil {
		return nil
	}
	return &store.Person{Name: p.Name, Email: p.Email}
}

// normalizeEntry maps a gofeed.Item onto our stored Entry shape.
func normalizeEntry(item *gofeed.Item, feedUpdated *store.StructTime) *store.Entry {
	e := &store.Entry{
		ID:   item.GUID,
		Link: item.Link,
	}
	if item.Title != "" {
		e.TitleDetail = &store.Detail{Value: item.Title, Type: "text/plain"}
	}
	if item.Description != "" {
		e.SummaryDetail = &store.Detail{Value: item.Description, Type: "text/html"}
	}
	if item.Content != "" {
		e.Content = []store.Detail{{Value: item.Content, Type: "text/html"}}
	}

	author := item.Author
	if author == nil && len(item.Authors) > 0 {
		author = item.Authors[0]
	}
	if author != nil {
		e.AuthorDetail = personOf(author)
		e.Author = author.Name
	}

	if item.UpdatedParsed != nil {
		st := store.FromTime(*item.UpdatedParsed)
		e.UpdatedParsed = &st
	}
	if item.PublishedParsed != nil {
		st := store.FromTime(*item.PublishedParsed)
		e.PublishedParsed = &st
	}
	e.FeedUpdatedParsed = feedUpdated

	return e
}

// feedUpdatedParsed implements the fallback chain update.py uses for
// feed_updated_parsed: the feed's own updated timestamp, else the
// HTTP Last-Modified response header, else the current time.
func feedUpdatedParsed(feed *gofeed.Feed, modifiedHeader string) *store.StructTime {
	if feed.UpdatedParsed != nil {
		st := store.FromTime(*feed.UpdatedParsed)
		return &st
	}
	if modifiedHeader != "" {
		if t, err := http.ParseTime(modifiedHeader); err == nil {
			st := store.FromTime(t)
			return &st
		}
	}
	st := store.FromTime(time.Now())
	return &st
}

// absorbFeedInfo copies the feed-level metadata update.py's
// feed_info_keys absorbs into the group config on every successful
// poll.
func absorbFeedInfo(cfg *store.Config, feed *gofeed.Feed) {
	if feed.Title != "" {
		cfg.Title = feed.Title
		cfg.TitleDetail = &store.Detail{Value: feed.Title, Type: "text/plain"}
	}
	if feed.Link != "" {
		cfg.Link = feed.Link
	}
	if len(feed.Links) > 0 {
		links := make([]store.Link, 0, len(feed.Links))
		for _, l := range feed.Links {
			links = append(links, store.Link{Href: l})
		}
		cfg.Links = links
	}
	if feed.Description != "" {
		cfg.Subtitle = feed.Description
		cfg.SubtitleDetail = &store.Detail{Value: feed.Description, Type: "text/plain"}
	}
	if feed.Copyright != "" {
		cfg.Rights = feed.Copyright
		cfg.RightsDetail = &store.Detail{Value: feed.Copyright, Type: "text/plain"}
	}
	author := feed.Author
	if author == nil && len(feed.Authors) > 0 {
		author = feed.Authors[0]
	}
	if author != nil {
		cfg.Author = author.Name
		cfg.AuthorDetail = personOf(author)
	}
}
