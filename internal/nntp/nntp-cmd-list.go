package nntp

import (
	"fmt"

	"github.com/go-while/pnntprss/internal/store"
)

// handleList implements LIST [ACTIVE] (spec.md §4.G): one line per
// group, "name high low n" -- the trailing "n" marks every group as
// not postable, since this bridge is read-only end to end.
func (c *ClientConnection) handleList(args []string) error {
	names, err := store.ListGroups(c.server.Settings)
	if err != nil {
		return c.sendResponse(503, "failed to list newsgroups")
	}

	lines := make([]string, 0, len(names))
	for _, name := range names {
		g, err := store.Load(c.server.Settings, name)
		if err != nil {
			continue
		}
		low, high, _, err := g.ArticleRange()
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %d %d n", name, high, low))
	}

	return c.sendMultilineResponse(215, "list of newsgroups follows", lines)
}
