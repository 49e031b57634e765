package nntp

import (
	"fmt"

	"github.com/go-while/pnntprss/internal/message"
)

// handleArticle implements ARTICLE (spec.md §4.G): headers, a blank
// line, then the body, all as one dot-stuffed multi-line response.
func (c *ClientConnection) handleArticle(args []string) error {
	num, entry, nerr := c.resolveArticle(argOf(args))
	if nerr != nil {
		return c.sendResponse(nerr.Code, nerr.Msg)
	}

	msg := message.Build(c.currentGroupName, num, entry)
	messageID, _ := msg.Header("Message-ID")

	lines := append([]string{}, msg.HeadLines()...)
	lines = append(lines, "")
	lines = append(lines, msg.BodyLines()...)

	return c.sendMultilineResponse(220, fmt.Sprintf("%d %s article retrieved - head and body follow", num, messageID), lines)
}

func argOf(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
