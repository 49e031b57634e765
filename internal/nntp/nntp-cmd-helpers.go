package nntp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-while/pnntprss/internal/store"
)

// nntpError carries a ready-to-send NNTP status line, letting article
// resolution short-circuit ARTICLE/HEAD/BODY/STAT with the right code.
type nntpError struct {
	Code int
	Msg  string
}

func (e *nntpError) Error() string { return fmt.Sprintf("%d %s", e.Code, e.Msg) }

// resolveArticle maps an ARTICLE/HEAD/BODY/STAT argument (empty for
// "current article", a bare number, or a <message-id>) onto a stored
// entry, matching the subset of RFC 977 argument forms spec.md §4.G
// requires. On success it also advances the session's current article
// pointer.
func (c *ClientConnection) resolveArticle(arg string) (int64, *store.Entry, *nntpError) {
	if c.currentGroup == nil {
		return 0, nil, &nntpError{412, "no newsgroup selected"}
	}

	var num int64
	switch {
	case arg == "":
		if c.currentArticle == 0 {
			return 0, nil, &nntpError{420, "current article number is invalid"}
		}
		num = c.currentArticle
	case strings.HasPrefix(arg, "<") && strings.HasSuffix(arg, ">"):
		found, err := findByMessageID(c.currentGroupName, c.currentGroup, arg)
		if err != nil {
			return 0, nil, &nntpError{430, "no such article found"}
		}
		num = found
	default:
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return 0, nil, &nntpError{501, "invalid article number"}
		}
		num = n
	}

	entry, err := c.currentGroup.Article(num)
	if err != nil {
		return 0, nil, &nntpError{503, "failed to retrieve article"}
	}
	if entry == nil {
		return 0, nil, &nntpError{423, "no such article number in this group"}
	}

	c.currentArticle = num
	return num, entry, nil
}

// findByMessageID scans the group for the article whose assigned
// Message-ID matches id. Group directories are small and bounded by
// article lifetime, so a linear scan is an acceptable trade for not
// maintaining a second on-disk index (spec.md §9).
func findByMessageID(groupName string, g *store.Group, id string) (int64, error) {
	entries, err := g.Articles(store.AllRange())
	if err != nil {
		return 0, err
	}
	for _, ne := range entries {
		messageID := ne.Entry.MessageID
		if messageID == "" {
			messageID = fmt.Sprintf("<%s.%d@pnntprss>", groupName, ne.Number)
		}
		if messageID == id {
			return ne.Number, nil
		}
	}
	return 0, fmt.Errorf("nntp: no article with message-id %s", id)
}
