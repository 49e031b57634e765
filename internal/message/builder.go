package message

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-while/pnntprss/internal/store"
)

// Message is a fully built NNTP article: ordered headers plus an
// LF-terminated body.
type Message struct {
	Headers []Header
	Body    string
}

// Header looks up the first header with the given name (case
// sensitive, matching how the builder writes them).
func (m *Message) Header(name string) (string, bool) {
	for _, h := range m.Headers {
		if h.Name == name {
			return h.Value, true
		}
	}
	return "", false
}

// HeadLines renders just the header block, one "Name: Value" string
// per header, in construction order.
func (m *Message) HeadLines() []string {
	lines := make([]string, len(m.Headers))
	for i, h := range m.Headers {
		lines[i] = h.Name + ": " + h.Value
	}
	return lines
}

// BodyLines splits the body into its constituent lines without the
// trailing newline, ready for a multi-line NNTP response writer.
func (m *Message) BodyLines() []string {
	if m.Body == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(m.Body, "\n"), "\n")
}

func fromHeader(e *store.Entry, groupName string) string {
	if e.AuthorDetail != nil && e.AuthorDetail.Name != "" {
		if e.AuthorDetail.Email != "" {
			return fmt.Sprintf("%s <%s>", e.AuthorDetail.Name, e.AuthorDetail.Email)
		}
		return e.AuthorDetail.Name
	}
	if e.AuthorDetail != nil && e.AuthorDetail.Email != "" {
		return e.AuthorDetail.Email
	}
	if e.Author != "" {
		return e.Author
	}
	return fmt.Sprintf("%s <%s@pnntprss>", groupName, groupName)
}

func dateHeader(e *store.Entry) string {
	switch {
	case e.PublishedParsed != nil:
		return e.PublishedParsed.Strftime()
	case e.UpdatedParsed != nil:
		return e.UpdatedParsed.Strftime()
	case e.CreatedParsed != nil:
		return e.CreatedParsed.Strftime()
	case e.FeedUpdatedParsed != nil:
		return e.FeedUpdatedParsed.Strftime()
	default:
		return store.FromTime(time.Now()).Strftime()
	}
}

func subjectOf(e *store.Entry) string {
	if e.TitleDetail != nil && e.TitleDetail.Value != "" {
		return e.TitleDetail.Value
	}
	return "(no subject)"
}

func bodyContentOf(e *store.Entry) (value, ctype string) {
	if len(e.Content) > 0 && e.Content[0].Value != "" {
		return e.Content[0].Value, e.Content[0].Type
	}
	if e.SummaryDetail != nil {
		return e.SummaryDetail.Value, e.SummaryDetail.Type
	}
	return "", "text/plain"
}

// Build renders the entry stored as article number n in group
// groupName into a complete NNTP message, following the exact header
// order spec.md §4.C specifies: From, Newsgroups, Date, Subject,
// Message-ID, Path, MIME-Version, Content-Type,
// Content-Transfer-Encoding.
func Build(groupName string, n int64, e *store.Entry) *Message {
	caption := ""
	if e.TitleDetail != nil {
		caption = e.TitleDetail.Value
	}
	rawValue, rawType := bodyContentOf(e)
	rendered, renderedType := renderBody(rawValue, rawType, e.Link, caption)
	transferEncoding, charset, encoded := chooseBodyEncoding(rendered)

	messageID := fmt.Sprintf("<%s.%d@pnntprss>", groupName, n)
	if e.MessageID != "" {
		messageID = e.MessageID
	}

	headers := []Header{
		{"From", EncodeWord(fromHeader(e, groupName))},
		{"Newsgroups", groupName},
		{"Date", dateHeader(e)},
		{"Subject", EncodeWord(subjectOf(e))},
		{"Message-ID", messageID},
		{"Path", "pnntprss"},
		{"MIME-Version", "1.0"},
		{"Content-Type", fmt.Sprintf("%s; charset=%s", renderedType, charset)},
		{"Content-Transfer-Encoding", transferEncoding},
	}

	body := string(encoded)
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}

	return &Message{Headers: headers, Body: body}
}
