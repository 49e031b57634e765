package nntp

import (
	"fmt"

	"github.com/go-while/pnntprss/internal/message"
)

// handleStat implements STAT (spec.md §4.G): confirms an article
// exists and becomes current, without sending any content.
func (c *ClientConnection) handleStat(args []string) error {
	num, entry, nerr := c.resolveArticle(argOf(args))
	if nerr != nil {
		return c.sendResponse(nerr.Code, nerr.Msg)
	}

	msg := message.Build(c.currentGroupName, num, entry)
	messageID, _ := msg.Header("Message-ID")

	return c.sendResponse(223, fmt.Sprintf("%d %s article retrieved - stat", num, messageID))
}
