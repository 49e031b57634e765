package nntp

// handleMode implements MODE READER: this bridge is always in reader
// mode and never accepts posting, so every MODE command gets the same
// "you can't post" response (spec.md §4.G).
func (c *ClientConnection) handleMode(args []string) error {
	return c.sendResponse(201, "Hello, you can't post")
}

func (c *ClientConnection) handleCapabilities() error {
	return c.sendMultilineResponse(101, "capability list follows", []string{
		"VERSION 2",
		"READER",
		"LIST ACTIVE NEWSGROUPS",
		"XOVER",
	})
}

func (c *ClientConnection) handleHelp() error {
	return c.sendMultilineResponse(100, "help text follows", []string{
		"This server provides read-only access to feeds republished as newsgroups.",
		"Supported commands: MODE, LIST, GROUP, XOVER, ARTICLE, HEAD, BODY, STAT, QUIT.",
	})
}

func (c *ClientConnection) handleQuit() error {
	return c.sendResponse(205, "closing connection - goodbye!")
}
