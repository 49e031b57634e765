// Package store implements the per-group file store: config, index and
// numbered article records under <groups_dir>/<name>/ (spec.md §3 and
// §4.B), grounded on _examples/original_source/group.py. Where the
// Python original mixed storage with rendering (its Article class),
// this package keeps only the storage and identity concerns; rendering
// is the Message Builder's job (internal/message), matching the
// component boundaries spec.md draws.
package store

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-while/pnntprss/internal/config"
	"github.com/go-while/pnntprss/internal/lockfile"
)

const (
	configFile = "config"
	indexFile  = "index"
	lockFile   = "lock"
)

// Group is a handle on one group's directory. It does not cache config
// or index contents -- callers reload explicitly, matching
// group.py's reload_config/save_config discipline of always reading
// before a check and writing back inside the lock.
type Group struct {
	Name string
	Dir  string
	Lock *lockfile.Lock

	settings *config.Settings
}

// GroupDir returns the directory a group with this name would live in.
func GroupDir(s *config.Settings, name string) string {
	return filepath.Join(s.GroupsDir, name)
}

// Exists reports whether a group directory already exists.
func Exists(s *config.Settings, name string) bool {
	_, err := os.Stat(GroupDir(s, name))
	return err == nil
}

// Create makes a new group directory and writes its initial config.
// cfg.Href must be set (spec.md §9 open question: a group cannot exist
// without a feed to poll).
func Create(s *config.Settings, name string, cfg *Config) (*Group, error) {
	if cfg == nil || cfg.Href == "" {
		return nil, ErrMissingHref
	}
	dir := GroupDir(s, name)
	if _, err := os.Stat(dir); err == nil {
		return nil, ErrGroupAlreadyExists
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("store: stat %s: %w", dir, err)
	}

	// Build the group in a staging directory and rename it into place
	// only once config and index are both written, so Load/ListGroups
	// never observe a half-built group (spec.md §3, §4.B).
	tmpDir, err := os.MkdirTemp(s.GroupsDir, ".new-"+name+"-")
	if err != nil {
		return nil, fmt.Errorf("store: mkdir temp: %w", err)
	}
	success := false
	defer func() {
		if !success {
			os.RemoveAll(tmpDir)
		}
	}()

	staging := &Group{Name: name, Dir: tmpDir, settings: s}
	if err := staging.SaveConfig(cfg); err != nil {
		return nil, err
	}
	if err := staging.SaveIndex(map[string]int64{}); err != nil {
		return nil, err
	}

	if err := os.Rename(tmpDir, dir); err != nil {
		return nil, fmt.Errorf("store: rename %s to %s: %w", tmpDir, dir, err)
	}
	success = true

	return &Group{Name: name, Dir: dir, settings: s,
		Lock: lockfile.New(filepath.Join(dir, lockFile), time.Duration(s.LockExpirySecs)*time.Second)}, nil
}

// Load opens an existing group directory.
func Load(s *config.Settings, name string) (*Group, error) {
	dir := GroupDir(s, name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, ErrNoSuchGroup
	} else if err != nil {
		return nil, fmt.Errorf("store: stat %s: %w", dir, err)
	}
	return &Group{Name: name, Dir: dir, settings: s,
		Lock: lockfile.New(filepath.Join(dir, lockFile), time.Duration(s.LockExpirySecs)*time.Second)}, nil
}

// ListGroups returns the names of all groups under the installation's
// groups directory, sorted (grounded on admin.py's list-all behaviour).
func ListGroups(s *config.Settings) ([]string, error) {
	entries, err := os.ReadDir(s.GroupsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		// Dot-prefixed directories are Create's staging directories.
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the group directory entirely (admin.py's delete
// behaviour).
func (g *Group) Delete() error {
	return os.RemoveAll(g.Dir)
}

// Wipe removes all articles and the index, and resets config back to
// just its feed href -- discarding poll state, feed metadata and
// overrides -- matching original_source/wipe.py.
func (g *Group) Wipe() error {
	nums, err := g.articleNumbers()
	if err != nil {
		return err
	}
	for _, n := range nums {
		if err := g.DeleteArticle(n); err != nil {
			return err
		}
	}
	if err := g.SaveIndex(map[string]int64{}); err != nil {
		return err
	}

	cfg, err := g.LoadConfig()
	if err != nil {
		return err
	}
	return g.SaveConfig(&Config{Href: cfg.Href})
}

func (g *Group) configPath() string { return filepath.Join(g.Dir, configFile) }
func (g *Group) indexPath() string  { return filepath.Join(g.Dir, indexFile) }

// ArticlePath returns the path an article numbered n would be stored
// at. Article files always have plain decimal filenames.
func (g *Group) ArticlePath(n int64) string {
	return filepath.Join(g.Dir, strconv.FormatInt(n, 10))
}

// LoadConfig reads and parses the group's config file.
func (g *Group) LoadConfig() (*Config, error) {
	data, err := os.ReadFile(g.configPath())
	if err != nil {
		return nil, fmt.Errorf("store: read config %s: %w", g.Name, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("store: parse config %s: %w", g.Name, err)
	}
	return &cfg, nil
}

// SaveConfig atomically overwrites the group's config file.
func (g *Group) SaveConfig(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal config %s: %w", g.Name, err)
	}
	if err := writeFileAtomic(g.configPath(), data); err != nil {
		return fmt.Errorf("store: write config %s: %w", g.Name, err)
	}
	return nil
}

// LoadIndex reads the entry-id -> article-number map.
func (g *Group) LoadIndex() (map[string]int64, error) {
	data, err := os.ReadFile(g.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]int64{}, nil
		}
		return nil, fmt.Errorf("store: read index %s: %w", g.Name, err)
	}
	idx := map[string]int64{}
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("store: parse index %s: %w", g.Name, err)
	}
	return idx, nil
}

// SaveIndex atomically overwrites the index file.
func (g *Group) SaveIndex(idx map[string]int64) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("store: marshal index %s: %w", g.Name, err)
	}
	if err := writeFileAtomic(g.indexPath(), data); err != nil {
		return fmt.Errorf("store: write index %s: %w", g.Name, err)
	}
	return nil
}

// Article loads the entry stored at article number n. A missing
// article (already expired, or never existed) returns (nil, nil)
// rather than an error, matching group.py's Group.article() treatment
// of absent numbers.
func (g *Group) Article(n int64) (*Entry, error) {
	data, err := os.ReadFile(g.ArticlePath(n))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read article %s/%d: %w", g.Name, n, err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("store: parse article %s/%d: %w", g.Name, n, err)
	}
	return &e, nil
}

// SaveArticle atomically writes an entry record to its numbered file.
func (g *Group) SaveArticle(n int64, e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("store: marshal article %s/%d: %w", g.Name, n, err)
	}
	if err := writeFileAtomic(g.ArticlePath(n), data); err != nil {
		return fmt.Errorf("store: write article %s/%d: %w", g.Name, n, err)
	}
	return nil
}

// DeleteArticle removes a numbered article file. Removing an article
// that no longer exists is not an error (expire.py's behaviour is
// idempotent deletion).
func (g *Group) DeleteArticle(n int64) error {
	if err := os.Remove(g.ArticlePath(n)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: delete article %s/%d: %w", g.Name, n, err)
	}
	return nil
}

// ArticleModTime returns the on-disk modification time of an article
// file, used by the expiry operation to compare against the lifetime
// (spec.md §4.E.8).
func (g *Group) ArticleModTime(n int64) (time.Time, error) {
	info, err := os.Stat(g.ArticlePath(n))
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// articleNumbers scans the directory for numbered entries, returning
// them sorted ascending. Only entries whose name starts with an ASCII
// digit and parses as a decimal integer count as articles, which lets
// config/index/lock share the directory safely.
func (g *Group) articleNumbers() ([]int64, error) {
	entries, err := os.ReadDir(g.Dir)
	if err != nil {
		return nil, fmt.Errorf("store: readdir %s: %w", g.Name, err)
	}
	nums := make([]int64, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if name == "" || name[0] < '0' || name[0] > '9' {
			continue
		}
		n, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums, nil
}

// ArticleRange returns the lowest and highest article numbers present
// and the total count, matching group.py's article_range(). When no
// articles exist, lowest/highest are both 0.
func (g *Group) ArticleRange() (lowest, highest, count int64, err error) {
	nums, err := g.articleNumbers()
	if err != nil {
		return 0, 0, 0, err
	}
	if len(nums) == 0 {
		return 0, 0, 0, nil
	}
	return nums[0], nums[len(nums)-1], int64(len(nums)), nil
}

// Range selects a window of article numbers for XOVER/article-number
// queries: [From, To] inclusive, or [From, +inf)
// when To is nil (the NNTP "N-" open range, spec.md §4.G).
type Range struct {
	From int64
	To   *int64
}

// AllRange matches every article.
func AllRange() Range { return Range{From: 0, To: nil} }

// RangeFrom matches every article numbered >= from (the "N-" form).
func RangeFrom(from int64) Range { return Range{From: from, To: nil} }

// RangeBetween matches articles in [from, to] (the "N-M" form).
func RangeBetween(from, to int64) Range { return Range{From: from, To: &to} }

func (r Range) contains(n int64) bool {
	if n < r.From {
		return false
	}
	if r.To != nil && n > *r.To {
		return false
	}
	return true
}

// ArticleNumbers returns an iterator over the article numbers matching
// r, ascending. Implemented as a single directory scan and sort rather
// than true incremental enumeration -- a pragmatic simplification of
// the lazy-sequence contract spec.md §9 describes, acceptable because
// group directories are never large enough (bounded by article
// lifetime and poll cadence) for a full scan to be costly.
func (g *Group) ArticleNumbers(r Range) iter.Seq[int64] {
	return func(yield func(int64) bool) {
		nums, err := g.articleNumbers()
		if err != nil {
			return
		}
		for _, n := range nums {
			if !r.contains(n) {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

// Articles materialises every entry matching r, ascending by number.
func (g *Group) Articles(r Range) ([]*NumberedEntry, error) {
	var out []*NumberedEntry
	for n := range g.ArticleNumbers(r) {
		e, err := g.Article(n)
		if err != nil {
			return nil, err
		}
		if e == nil {
			continue
		}
		out = append(out, &NumberedEntry{Number: n, Entry: e})
	}
	return out, nil
}

// NumberedEntry pairs a stored Entry with the article number it was
// saved under.
type NumberedEntry struct {
	Number int64
	Entry  *Entry
}

// AllocateArticleNumber returns the next article number to use and
// advances cfg.NextArticleNumber in memory (the caller is responsible
// for persisting cfg afterwards, typically batched with other config
// changes from the same poll). Mirrors group.py's next_article_number():
// seed from the highest existing number plus one if unset, then
// defensively scan forward over any already-occupied numbers.
func (g *Group) AllocateArticleNumber(cfg *Config) (int64, error) {
	next := cfg.NextArticleNumber
	if next <= 0 {
		_, highest, _, err := g.ArticleRange()
		if err != nil {
			return 0, err
		}
		next = highest + 1
	}
	for {
		if _, err := os.Stat(g.ArticlePath(next)); os.IsNotExist(err) {
			break
		} else if err != nil {
			return 0, fmt.Errorf("store: stat %s/%d: %w", g.Name, next, err)
		}
		next++
	}
	cfg.NextArticleNumber = next + 1
	return next, nil
}

// ReadyToCheck reports whether enough time has elapsed since the last
// poll to check this group's feed again, matching group.py's
// ready_to_check(): always true if never polled, else elapsed >=
// interval (falling back to defaultIntervalSecs when cfg.Interval is
// unset).
func (g *Group) ReadyToCheck(cfg *Config, now time.Time, defaultIntervalSecs int) bool {
	if cfg.LastPolled == 0 {
		return true
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultIntervalSecs
	}
	return now.Unix()-cfg.LastPolled >= int64(interval)
}

// ParseRange parses the NNTP XOVER/ARTICLE range argument forms "N",
// "N-" and "N-M" (spec.md §4.G), grounded on the teacher's
// nntp-cmd-xover.go range-splitting logic.
func ParseRange(arg string) (Range, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return Range{}, fmt.Errorf("store: empty range")
	}
	if !strings.Contains(arg, "-") {
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return Range{}, fmt.Errorf("store: invalid range %q: %w", arg, err)
		}
		return RangeBetween(n, n), nil
	}
	parts := strings.SplitN(arg, "-", 2)
	from, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Range{}, fmt.Errorf("store: invalid range %q: %w", arg, err)
	}
	if parts[1] == "" {
		return RangeFrom(from), nil
	}
	to, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Range{}, fmt.Errorf("store: invalid range %q: %w", arg, err)
	}
	return RangeBetween(from, to), nil
}
