// Package export renders the journal as a downloadable rich text document.
package export

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"

	"github.com/cldixon/moodjournal/internal/store"
)

const (
	Filename    = "my_journal.rtf"
	ContentType = "application/rtf"

	// TimestampLayout is how entry dates appear in the document
	TimestampLayout = "2006-01-02 15:04:05"
)

const header = `{\rtf1\ansi\ansicpg1252\deff0{\fonttbl{\f0\fswiss Helvetica;}}\f0\fs24` + "\n"

// RTF returns the document for entries in their stored order, oldest first
func RTF(entries []*store.Entry) []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes never fail
	_ = WriteRTF(&buf, entries)
	return buf.Bytes()
}

// WriteRTF streams the document to w. Each entry is a bold date line, a bold
// mood line, the text and the reflection, followed by a blank line.
func WriteRTF(w io.Writer, entries []*store.Entry) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(header)
	for _, e := range entries {
		fmt.Fprintf(bw, `{\b Date: %s}\line`+"\n", Escape(e.Timestamp.Local().Format(TimestampLayout)))
		fmt.Fprintf(bw, `{\b Mood: %s}\line`+"\n", Escape(e.Mood.String()))
		fmt.Fprintf(bw, `%s\line`+"\n", Escape(e.Text))
		if e.Reflection != "" {
			fmt.Fprintf(bw, `%s\line`+"\n", Escape(e.Reflection))
		}
		bw.WriteString(`\line` + "\n")
	}
	bw.WriteString("}\n")

	return bw.Flush()
}

// Escape makes s safe to embed in an RTF body. Control characters are
// escaped, line breaks and tabs become control words, and anything outside
// ASCII is written as UTF-16 \u escapes with a '?' fallback.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, r := range s {
		switch {
		case r == '\\' || r == '{' || r == '}':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\line `)
		case r == '\t':
			b.WriteString(`\tab `)
		case r == '\r':
		case r < 0x20 || r == 0x7f:
			// Remaining control bytes become hex escapes
			fmt.Fprintf(&b, `\'%02x`, r)
		case r < 0x80:
			b.WriteRune(r)
		default:
			writeUnicode(&b, r)
		}
	}
	return b.String()
}

func writeUnicode(b *strings.Builder, r rune) {
	if r > 0xFFFF {
		hi, lo := utf16.EncodeRune(r)
		writeUnit(b, hi)
		writeUnit(b, lo)
		return
	}
	writeUnit(b, r)
}

// RTF \u takes a signed 16-bit value
func writeUnit(b *strings.Builder, r rune) {
	fmt.Fprintf(b, `\u%d?`, int16(uint16(r)))
}
