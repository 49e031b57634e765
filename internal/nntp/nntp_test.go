package nntp

import (
	"io"
	"net"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-while/pnntprss/internal/config"
	"github.com/go-while/pnntprss/internal/store"
)

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	dir := t.TempDir()
	s := config.NewDefault()
	s.BaseDir = dir
	s.GroupsDir = filepath.Join(dir, "groups")
	s.NNTPAddr = "127.0.0.1:0"
	if err := s.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	return s
}

func startServer(t *testing.T, s *config.Settings) (*NNTPServer, string) {
	t.Helper()
	srv, err := NewNNTPServer(s)
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { srv.Stop() })
	return srv, srv.Listener.Addr().String()
}

type testClient struct {
	t    *testing.T
	conn net.Conn
	tp   *textproto.Conn
}

func dial(t *testing.T, addr string) *testClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	return &testClient{t: t, conn: conn, tp: textproto.NewConn(conn)}
}

func (c *testClient) readLine() string {
	c.t.Helper()
	line, err := c.tp.ReadLine()
	if err != nil {
		c.t.Fatalf("readLine: %v", err)
	}
	return line
}

func (c *testClient) cmd(line string) string {
	c.t.Helper()
	if err := c.tp.PrintfLine("%s", line); err != nil {
		c.t.Fatalf("send %q: %v", line, err)
	}
	return c.readLine()
}

func (c *testClient) readDotBlock() []string {
	c.t.Helper()
	data, err := io.ReadAll(c.tp.DotReader())
	if err != nil {
		c.t.Fatalf("readDotBlock: %v", err)
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func TestSessionGreetingAndMode(t *testing.T) {
	s := testSettings(t)
	_, addr := startServer(t, s)
	c := dial(t, addr)
	defer c.conn.Close()

	greeting := c.readLine()
	if !strings.HasPrefix(greeting, "201 ") {
		t.Fatalf("unexpected greeting: %q", greeting)
	}

	resp := c.cmd("MODE READER")
	if resp != "201 Hello, you can't post" {
		t.Fatalf("unexpected MODE response: %q", resp)
	}

	resp = c.cmd("QUIT")
	if !strings.HasPrefix(resp, "205") {
		t.Fatalf("unexpected QUIT response: %q", resp)
	}
}

func TestSessionGroupAndArticleLifecycle(t *testing.T) {
	s := testSettings(t)
	g, err := store.Create(s, "example", &store.Config{Href: "https://example.com/feed"})
	if err != nil {
		t.Fatal(err)
	}
	e := &store.Entry{
		TitleDetail: &store.Detail{Value: "Hello", Type: "text/plain"},
		Content:     []store.Detail{{Value: "body text", Type: "text/plain"}},
		Author:      "jdoe",
	}
	if err := g.SaveArticle(1, e); err != nil {
		t.Fatal(err)
	}

	_, addr := startServer(t, s)
	c := dial(t, addr)
	defer c.conn.Close()
	c.readLine() // greeting

	resp := c.cmd("GROUP example")
	if !strings.HasPrefix(resp, "211 1 1 1 example") {
		t.Fatalf("unexpected GROUP response: %q", resp)
	}

	resp = c.cmd("GROUP missing")
	if !strings.HasPrefix(resp, "411") {
		t.Fatalf("expected 411 for missing group, got %q", resp)
	}
	c.cmd("GROUP example")

	resp = c.cmd("STAT 1")
	if !strings.HasPrefix(resp, "223 1") {
		t.Fatalf("unexpected STAT response: %q", resp)
	}

	resp = c.cmd("HEAD 1")
	if !strings.HasPrefix(resp, "221 1") {
		t.Fatalf("unexpected HEAD response: %q", resp)
	}
	headLines := c.readDotBlock()
	foundSubject := false
	for _, l := range headLines {
		if strings.HasPrefix(l, "Subject: Hello") {
			foundSubject = true
		}
	}
	if !foundSubject {
		t.Fatalf("expected Subject header in HEAD response, got %v", headLines)
	}

	resp = c.cmd("BODY 1")
	if !strings.HasPrefix(resp, "222 1") {
		t.Fatalf("unexpected BODY response: %q", resp)
	}
	bodyLines := c.readDotBlock()
	if len(bodyLines) == 0 || !strings.Contains(bodyLines[0], "body text") {
		t.Fatalf("unexpected body content: %v", bodyLines)
	}

	resp = c.cmd("ARTICLE 1")
	if !strings.HasPrefix(resp, "220 1") {
		t.Fatalf("unexpected ARTICLE response: %q", resp)
	}
	articleLines := c.readDotBlock()
	if len(articleLines) == 0 {
		t.Fatalf("expected article lines")
	}

	resp = c.cmd("STAT 99")
	if !strings.HasPrefix(resp, "423") {
		t.Fatalf("expected 423 for missing article, got %q", resp)
	}
}

func TestSessionXOverAndList(t *testing.T) {
	s := testSettings(t)
	g, err := store.Create(s, "example", &store.Config{Href: "https://example.com/feed"})
	if err != nil {
		t.Fatal(err)
	}
	for i := int64(1); i <= 2; i++ {
		e := &store.Entry{TitleDetail: &store.Detail{Value: "Post", Type: "text/plain"}}
		if err := g.SaveArticle(i, e); err != nil {
			t.Fatal(err)
		}
	}

	_, addr := startServer(t, s)
	c := dial(t, addr)
	defer c.conn.Close()
	c.readLine()

	resp := c.cmd("LIST")
	if !strings.HasPrefix(resp, "215") {
		t.Fatalf("unexpected LIST response: %q", resp)
	}
	listLines := c.readDotBlock()
	found := false
	for _, l := range listLines {
		if strings.HasPrefix(l, "example 2 1 n") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected example group in LIST output, got %v", listLines)
	}

	c.cmd("GROUP example")
	resp = c.cmd("XOVER 1-2")
	if !strings.HasPrefix(resp, "224") {
		t.Fatalf("unexpected XOVER response: %q", resp)
	}
	overviewLines := c.readDotBlock()
	if len(overviewLines) != 2 {
		t.Fatalf("expected 2 overview lines, got %d: %v", len(overviewLines), overviewLines)
	}
}
