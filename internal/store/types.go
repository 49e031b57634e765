package store

import (
	"fmt"
	"reflect"
	"sort"
	"time"
)

// Detail mirrors feedparser's {value, type} detail dict (spec.md §3/§4.C).
type Detail struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

// Person mirrors feedparser's author_detail dict.
type Person struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Link is one entry of a feed or entry's `links` list.
type Link struct {
	Href string `json:"href,omitempty"`
	Rel  string `json:"rel,omitempty"`
	Type string `json:"type,omitempty"`
}

// StructTime is the Go rendition of Python's 9-tuple time.struct_time
// (spec.md §9 "Struct-time tuples"): year, month, day, hour, minute,
// second, weekday (0=Monday..6=Sunday), yearday (1-based), isdst.
// Time-parsed fields coming from the feed-parser boundary are coerced
// into this shape so they compare structurally, per spec.md §4.E.5.b.
type StructTime struct {
	Year, Month, Day          int
	Hour, Minute, Second      int
	Weekday, YearDay, IsDST int
}

// FromTime converts a UTC time.Time into the Python struct_time
// convention.
func FromTime(t time.Time) StructTime {
	t = t.UTC()
	wd := int(t.Weekday()) - 1 // Go: Sunday=0; Python: Monday=0
	if wd < 0 {
		wd = 6
	}
	return StructTime{
		Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
		Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(),
		Weekday: wd, YearDay: t.YearDay(), IsDST: 0,
	}
}

// Time converts back to a UTC time.Time (the tuple is always
// UTC-assumed per spec.md §9).
func (s StructTime) Time() time.Time {
	return time.Date(s.Year, time.Month(s.Month), s.Day, s.Hour, s.Minute, s.Second, 0, time.UTC)
}

// IsZero reports whether this is the zero tuple (no time present).
func (s StructTime) IsZero() bool {
	return s == StructTime{}
}

// Strftime renders "%d %b %Y %H:%M:%S %z" the way the original's
// message.py builds the Date header, assuming UTC (%z renders as
// +0000) per spec.md §9.
func (s StructTime) Strftime() string {
	return fmt.Sprintf("%02d %s %04d %02d:%02d:%02d +0000",
		s.Day, shortMonths[s.Month-1], s.Year, s.Hour, s.Minute, s.Second)
}

var shortMonths = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Entry is the normalised feed-entry record stored per article (spec.md
// §3 "Articles"). Extra holds additional string fields keyed by their
// feed-parser names and is included by Canonicalize. The Poller's
// normalizeEntry does not populate Extra, so feed item fields with no
// first-class field below are not stored.
type Entry struct {
	ID                string            `json:"id,omitempty"`
	Link              string            `json:"link,omitempty"`
	TitleDetail       *Detail           `json:"title_detail,omitempty"`
	SummaryDetail     *Detail           `json:"summary_detail,omitempty"`
	Content           []Detail          `json:"content,omitempty"`
	Author            string            `json:"author,omitempty"`
	AuthorDetail      *Person           `json:"author_detail,omitempty"`
	UpdatedParsed     *StructTime       `json:"updated_parsed,omitempty"`
	PublishedParsed   *StructTime       `json:"published_parsed,omitempty"`
	CreatedParsed     *StructTime       `json:"created_parsed,omitempty"`
	ExpiredParsed     *StructTime       `json:"expired_parsed,omitempty"`
	MessageID         string            `json:"message_id,omitempty"`
	FeedUpdatedParsed *StructTime       `json:"feed_updated_parsed,omitempty"`
	Extra             map[string]string `json:"extra,omitempty"`
}

// Canonicalize reproduces update.py's stable_repr: a deterministic
// string built from the sorted "key: value" pairs of the entry, used as
// the MD5 preimage for entries lacking a natural id (spec.md §4.E.5.c).
func (e *Entry) Canonicalize() string {
	pairs := map[string]string{}
	if e.ID != "" {
		pairs["id"] = e.ID
	}
	if e.Link != "" {
		pairs["link"] = e.Link
	}
	if e.TitleDetail != nil {
		pairs["title_detail"] = fmt.Sprintf("%q:%q", e.TitleDetail.Value, e.TitleDetail.Type)
	}
	if e.SummaryDetail != nil {
		pairs["summary_detail"] = fmt.Sprintf("%q:%q", e.SummaryDetail.Value, e.SummaryDetail.Type)
	}
	for i, c := range e.Content {
		pairs[fmt.Sprintf("content[%d]", i)] = fmt.Sprintf("%q:%q", c.Value, c.Type)
	}
	if e.Author != "" {
		pairs["author"] = e.Author
	}
	if e.AuthorDetail != nil {
		pairs["author_detail"] = fmt.Sprintf("%q:%q", e.AuthorDetail.Name, e.AuthorDetail.Email)
	}
	if e.UpdatedParsed != nil {
		pairs["updated_parsed"] = e.UpdatedParsed.Strftime()
	}
	if e.PublishedParsed != nil {
		pairs["published_parsed"] = e.PublishedParsed.Strftime()
	}
	for k, v := range e.Extra {
		pairs["extra."+k] = v
	}

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%q: %q", k, pairs[k]))
	}
	return "{" + joinComma(out) + "}"
}

func joinComma(ss []string) string {
	res := ""
	for i, s := range ss {
		if i > 0 {
			res += ", "
		}
		res += s
	}
	return res
}

// SameAs implements same_entry from group.py's Article class: equality
// after removing feed_updated_parsed, since that field is synthesized
// per-poll and must not cause a re-ingested identical entry to look
// "Updated" (spec.md §4.E.5.d). MessageID is also excluded: it is a
// storage-assigned identifier the freshly-parsed side never carries,
// not a property of the feed content itself.
func (e *Entry) SameAs(other *Entry) bool {
	a := *e
	b := *other
	a.FeedUpdatedParsed = nil
	b.FeedUpdatedParsed = nil
	a.MessageID = ""
	b.MessageID = ""
	return reflect.DeepEqual(a, b)
}
