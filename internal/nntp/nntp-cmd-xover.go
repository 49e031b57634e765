package nntp

import (
	"fmt"
	"strings"

	"github.com/go-while/pnntprss/internal/message"
	"github.com/go-while/pnntprss/internal/store"
)

// handleXOver implements XOVER [range] (spec.md §4.G), accepting the
// "N", "N-" and "N-M" forms (store.ParseRange).
func (c *ClientConnection) handleXOver(args []string) error {
	if c.currentGroup == nil {
		return c.sendResponse(412, "no newsgroup selected")
	}

	var r store.Range
	if len(args) == 0 {
		if c.currentArticle == 0 {
			return c.sendResponse(420, "current article number is invalid")
		}
		r = store.RangeBetween(c.currentArticle, c.currentArticle)
	} else {
		parsed, err := store.ParseRange(args[0])
		if err != nil {
			return c.sendResponse(501, "invalid range")
		}
		r = parsed
	}

	entries, err := c.currentGroup.Articles(r)
	if err != nil {
		return c.sendResponse(503, "failed to retrieve overview data")
	}

	lines := make([]string, 0, len(entries))
	for _, ne := range entries {
		msg := message.Build(c.currentGroupName, ne.Number, ne.Entry)
		lines = append(lines, overviewLine(ne.Number, msg))
	}

	return c.sendMultilineResponse(224, "overview information follows", lines)
}

// overviewLine renders the tab-separated XOVER fields RFC 2980
// defines: number, subject, from, date, message-id, references,
// byte-count, line-count.
func overviewLine(n int64, msg *message.Message) string {
	subject, _ := msg.Header("Subject")
	from, _ := msg.Header("From")
	date, _ := msg.Header("Date")
	messageID, _ := msg.Header("Message-ID")
	lineCount := strings.Count(msg.Body, "\n")
	return fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t\t%d\t%d",
		n, subject, from, date, messageID, len(msg.Body), lineCount)
}
