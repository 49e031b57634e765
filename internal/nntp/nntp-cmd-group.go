package nntp

import (
	"fmt"

	"github.com/go-while/pnntprss/internal/store"
)

// handleGroup implements GROUP name (spec.md §4.G): selects the group
// for subsequent ARTICLE/HEAD/BODY/STAT/XOVER commands and reports its
// article count and range.
func (c *ClientConnection) handleGroup(args []string) error {
	if len(args) != 1 {
		return c.sendResponse(501, "GROUP requires exactly one argument")
	}
	name := args[0]

	g, err := store.Load(c.server.Settings, name)
	if err == store.ErrNoSuchGroup {
		return c.sendResponse(411, fmt.Sprintf("no such newsgroup: %s", name))
	} else if err != nil {
		return c.sendResponse(503, "failed to load newsgroup")
	}

	low, high, count, err := g.ArticleRange()
	if err != nil {
		return c.sendResponse(503, "failed to read newsgroup")
	}

	c.currentGroupName = name
	c.currentGroup = g
	c.currentLow = low
	c.currentHigh = high
	c.currentArticle = low

	return c.sendResponse(211, fmt.Sprintf("%d %d %d %s selected", count, low, high, name))
}
