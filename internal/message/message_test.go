package message

import (
	"strings"
	"testing"
	"time"

	"github.com/go-while/pnntprss/internal/store"
)

func TestEncodeWordPassthroughASCII(t *testing.T) {
	if got := EncodeWord("plain subject"); got != "plain subject" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestEncodeWordNonASCIIChoosesShorter(t *testing.T) {
	got := EncodeWord("héllo")
	if !strings.HasPrefix(got, "=?UTF-8?") {
		t.Fatalf("expected an encoded word, got %q", got)
	}
	if !strings.HasSuffix(got, "?=") {
		t.Fatalf("expected encoded word terminator, got %q", got)
	}
}

func TestRenderBodyPlainTextNoLinkPassesThrough(t *testing.T) {
	value, ctype := renderBody("hello world", "text/plain", "", "")
	if value != "hello world" || ctype != "text/plain" {
		t.Fatalf("expected plain passthrough, got (%q, %q)", value, ctype)
	}
}

func TestRenderBodyWithLinkCoercesToHTML(t *testing.T) {
	value, ctype := renderBody("hello world", "text/plain", "https://example.com/post", "My Title")
	if ctype != "text/html" {
		t.Fatalf("expected text/html, got %q", ctype)
	}
	if !strings.Contains(value, "My Title") || !strings.Contains(value, "example.com/post") {
		t.Fatalf("expected caption banner in rendered body, got %q", value)
	}
}

func TestChooseBodyEncodingASCII(t *testing.T) {
	enc, charset, body := chooseBodyEncoding("plain ascii text")
	if enc != "8bit" || charset != "us-ascii" {
		t.Fatalf("expected 8bit/us-ascii, got %s/%s", enc, charset)
	}
	if string(body) != "plain ascii text" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestChooseBodyEncodingNonASCII(t *testing.T) {
	enc, charset, body := chooseBodyEncoding("café au lait")
	if charset != "utf-8" {
		t.Fatalf("expected utf-8 charset, got %q", charset)
	}
	if enc != "quoted-printable" && enc != "base64" {
		t.Fatalf("expected quoted-printable or base64, got %q", enc)
	}
	if len(body) == 0 {
		t.Fatalf("expected non-empty encoded body")
	}
}

func TestBuildHeaderOrder(t *testing.T) {
	e := &store.Entry{
		Link:        "https://example.com/post/1",
		TitleDetail: &store.Detail{Value: "A Title", Type: "text/plain"},
		Content:     []store.Detail{{Value: "body text", Type: "text/plain"}},
		Author:      "jdoe",
	}
	msg := Build("example", 1, e)

	wantOrder := []string{
		"From", "Newsgroups", "Date", "Subject", "Message-ID",
		"Path", "MIME-Version", "Content-Type", "Content-Transfer-Encoding",
	}
	if len(msg.Headers) != len(wantOrder) {
		t.Fatalf("expected %d headers, got %d", len(wantOrder), len(msg.Headers))
	}
	for i, name := range wantOrder {
		if msg.Headers[i].Name != name {
			t.Fatalf("header %d: got %q, want %q", i, msg.Headers[i].Name, name)
		}
	}

	if v, _ := msg.Header("Newsgroups"); v != "example" {
		t.Fatalf("unexpected Newsgroups: %q", v)
	}
	if v, _ := msg.Header("Message-ID"); v != "<example.1@pnntprss>" {
		t.Fatalf("unexpected Message-ID: %q", v)
	}
}

func TestBuildDateFallbackChain(t *testing.T) {
	ts := store.FromTime(time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC))
	e := &store.Entry{UpdatedParsed: &ts}
	msg := Build("example", 2, e)
	if v, _ := msg.Header("Date"); v != ts.Strftime() {
		t.Fatalf("expected Date to fall back to updated_parsed, got %q", v)
	}
}
