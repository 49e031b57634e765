package nntp

import (
	"fmt"

	"github.com/go-while/pnntprss/internal/message"
)

// handleBody implements BODY (spec.md §4.G).
func (c *ClientConnection) handleBody(args []string) error {
	num, entry, nerr := c.resolveArticle(argOf(args))
	if nerr != nil {
		return c.sendResponse(nerr.Code, nerr.Msg)
	}

	msg := message.Build(c.currentGroupName, num, entry)
	messageID, _ := msg.Header("Message-ID")

	return c.sendMultilineResponse(222, fmt.Sprintf("%d %s article retrieved - body follows", num, messageID), msg.BodyLines())
}
