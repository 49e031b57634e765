package store

// Config is the per-group persistent configuration (spec.md §3
// "Groups"), grounded on group.py's reload_config/save_config and the
// feed_info_keys/state_keys absorbed by update.py's
// update_group_from_feed.
type Config struct {
	Href string `json:"href"`
	Link string `json:"link,omitempty"`

	// Interval is the poll interval in seconds; 0 means "use the
	// installation default".
	Interval int `json:"interval,omitempty"`

	// LastPolled is a Unix timestamp of the last successful poll.
	LastPolled int64 `json:"lastpolled,omitempty"`

	// ArticleLifetime overrides the installation default expiry, in
	// seconds; 0 means "use the default".
	ArticleLifetime int `json:"article_lifetime,omitempty"`

	// ETag/Modified are the conditional-GET state carried between
	// polls (state_keys in update.py).
	ETag     string `json:"etag,omitempty"`
	Modified string `json:"modified,omitempty"`

	NextArticleNumber int64 `json:"next_article_number,omitempty"`

	Title          string  `json:"title,omitempty"`
	TitleDetail    *Detail `json:"title_detail,omitempty"`
	Subtitle       string  `json:"subtitle,omitempty"`
	SubtitleDetail *Detail `json:"subtitle_detail,omitempty"`
	Rights         string  `json:"rights,omitempty"`
	RightsDetail   *Detail `json:"rights_detail,omitempty"`
	ID             string  `json:"id,omitempty"`
	Author         string  `json:"author,omitempty"`
	AuthorDetail   *Person `json:"author_detail,omitempty"`
	Links          []Link  `json:"links,omitempty"`

	// LastFailedPoll/FailedPolls are the failure-accounting fields
	// maintained by the Poller (spec.md §4.E.7).
	LastFailedPoll int64 `json:"last_failed_poll,omitempty"`
	FailedPolls    int   `json:"failed_polls,omitempty"`
}

// FeedInfoKeys lists the names of the feed-level attributes
// (update.py's feed_info_keys). Nothing in this repository iterates
// it: the Poller's absorbFeedInfo sets the corresponding Config fields
// directly, and does not set id.
var FeedInfoKeys = []string{
	"title", "title_detail", "link", "links", "subtitle",
	"subtitle_detail", "rights", "rights_detail", "id", "author", "author_detail",
}
