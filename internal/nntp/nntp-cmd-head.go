package nntp

import (
	"fmt"

	"github.com/go-while/pnntprss/internal/message"
)

// handleHead implements HEAD (spec.md §4.G).
func (c *ClientConnection) handleHead(args []string) error {
	num, entry, nerr := c.resolveArticle(argOf(args))
	if nerr != nil {
		return c.sendResponse(nerr.Code, nerr.Msg)
	}

	msg := message.Build(c.currentGroupName, num, entry)
	messageID, _ := msg.Header("Message-ID")

	return c.sendMultilineResponse(221, fmt.Sprintf("%d %s article retrieved - head follows", num, messageID), msg.HeadLines())
}
