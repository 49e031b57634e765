package message

import (
	"bytes"
	"encoding/base64"
	htmlpkg "html"
	"mime/quotedprintable"
	"strings"

	"github.com/aymerick/douceur/inliner"
	"github.com/microcosm-cc/bluemonday"
)

var sanitizePolicy = bluemonday.UGCPolicy()

func isASCIIBytes(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

// renderBody implements group.py's Article.render_body: plain text
// passes through untouched only when the entry carries no link;
// otherwise (an HTML body, or a plain body that needs a caption link)
// the value is coerced to sanitised, CSS-inlined HTML, optionally
// prefixed with an "<h1><a href=link>caption</a></h1>" banner.
func renderBody(value, contentType, link, caption string) (finalValue, finalType string) {
	if contentType == "" {
		contentType = "text/plain"
	}
	if link == "" && !strings.Contains(contentType, "html") {
		return value, "text/plain"
	}

	body := value
	if !strings.Contains(contentType, "html") {
		body = "<pre>" + htmlpkg.EscapeString(value) + "</pre>"
	}
	if link != "" {
		cap := caption
		if cap == "" {
			cap = link
		}
		banner := `<h1><a href="` + htmlpkg.EscapeString(link) + `">` + htmlpkg.EscapeString(cap) + `</a></h1>`
		body = banner + body
	}

	sanitized := sanitizePolicy.Sanitize(body)
	if inlined, err := inliner.Inline(wrapDocument(sanitized)); err == nil {
		return inlined, "text/html"
	}
	return sanitized, "text/html"
}

func wrapDocument(fragment string) string {
	return "<html><head></head><body>" + fragment + "</body></html>"
}

// chooseBodyEncoding picks the wire Content-Transfer-Encoding and
// charset for a rendered body, matching message.py's set_body: ASCII
// content goes out 8bit with charset us-ascii; anything else is
// recoded as UTF-8 and sent using whichever of quoted-printable or
// base64 is shorter.
func chooseBodyEncoding(body string) (transferEncoding, charset string, encoded []byte) {
	raw := []byte(body)
	if isASCIIBytes(raw) {
		return "8bit", "us-ascii", raw
	}

	var qpBuf bytes.Buffer
	qw := quotedprintable.NewWriter(&qpBuf)
	qw.Write(raw)
	qw.Close()

	b64 := base64Lines(raw)

	if len(b64) < qpBuf.Len() {
		return "base64", "utf-8", b64
	}
	return "quoted-printable", "utf-8", qpBuf.Bytes()
}

// base64Lines encodes raw as standard base64, wrapped at 76 columns per
// RFC 2045.
func base64Lines(raw []byte) []byte {
	enc := base64.StdEncoding.EncodeToString(raw)
	var b bytes.Buffer
	for i := 0; i < len(enc); i += 76 {
		end := i + 76
		if end > len(enc) {
			end = len(enc)
		}
		b.WriteString(enc[i:end])
		b.WriteByte('\n')
	}
	return b.Bytes()
}
