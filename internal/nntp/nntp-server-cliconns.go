package nntp

import (
	"bufio"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"time"

	"github.com/go-while/pnntprss/internal/store"
)

var defaultClientTimeout = 60 * time.Second

// ClientConnection is one client's NNTP session. It holds the
// currently selected group the way RFC 977 sessions do, re-loading
// that group and its article range on each GROUP command (spec.md §4.G).
type ClientConnection struct {
	conn     net.Conn
	textConn *textproto.Conn
	server   *NNTPServer

	currentGroupName string
	currentGroup     *store.Group
	currentLow       int64
	currentHigh      int64
	currentArticle   int64

	created     time.Time
	lastCommand time.Time
}

// NewClientConnection wraps conn in a textproto.Conn and readies a
// session.
func NewClientConnection(conn net.Conn, server *NNTPServer) *ClientConnection {
	return &ClientConnection{
		conn:        conn,
		textConn:    textproto.NewConn(conn),
		server:      server,
		created:     time.Now(),
		lastCommand: time.Now(),
	}
}

func (c *ClientConnection) updateDeadlines() {
	c.conn.SetReadDeadline(time.Now().Add(defaultClientTimeout))
	c.conn.SetWriteDeadline(time.Now().Add(defaultClientTimeout))
}

// Handle drives the command loop for the life of the connection.
func (c *ClientConnection) Handle() error {
	defer c.textConn.Close()

	if err := c.sendResponse(201, "server ready - no posting allowed"); err != nil {
		return fmt.Errorf("nntp: send greeting: %w", err)
	}

	for {
		c.updateDeadlines()
		line, err := c.textConn.ReadLine()
		if err != nil {
			return fmt.Errorf("nntp: read command: %w", err)
		}
		c.lastCommand = time.Now()

		quit, err := c.handleCommand(line)
		if err != nil {
			return fmt.Errorf("nntp: handle command %q: %w", line, err)
		}
		if quit {
			return nil
		}
	}
}

// handleCommand dispatches one command line, returning quit=true once
// the session should end (QUIT). A write error is returned as err,
// which also ends the session in Handle.
func (c *ClientConnection) handleCommand(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, c.sendResponse(500, "command not recognized")
	}

	command := strings.ToUpper(fields[0])
	args := fields[1:]

	switch command {
	case "MODE":
		return false, c.handleMode(args)
	case "CAPABILITIES":
		return false, c.handleCapabilities()
	case "HELP":
		return false, c.handleHelp()
	case "QUIT":
		return true, c.handleQuit()
	case "LIST":
		return false, c.handleList(args)
	case "GROUP":
		return false, c.handleGroup(args)
	case "XOVER":
		return false, c.handleXOver(args)
	case "ARTICLE":
		return false, c.handleArticle(args)
	case "HEAD":
		return false, c.handleHead(args)
	case "BODY":
		return false, c.handleBody(args)
	case "STAT":
		return false, c.handleStat(args)
	default:
		return false, c.sendResponse(500, fmt.Sprintf("command not recognized: %s", command))
	}
}

func (c *ClientConnection) sendResponse(code int, message string) error {
	return c.textConn.PrintfLine("%d %s", code, message)
}

// sendMultilineResponse sends a status line followed by a dot-stuffed,
// CRLF-terminated block of text -- Go's textproto.Writer.DotWriter
// handles both concerns, the same facility go-pugleaf's command
// handlers use for XOVER/LIST/ARTICLE bodies.
func (c *ClientConnection) sendMultilineResponse(code int, statusMsg string, lines []string) error {
	if err := c.sendResponse(code, statusMsg); err != nil {
		return err
	}
	dw := c.textConn.DotWriter()
	w := bufio.NewWriter(dw)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			dw.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		dw.Close()
		return err
	}
	return dw.Close()
}

// RemoteAddr returns the client's remote network address.
func (c *ClientConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
