package mailer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Bytes serializes the message into a complete RFC 2822 document: headers,
// body, and encoded attachments, ready to hand to an SMTP server.
//
// Serialization never mutates the message. The multipart boundary is
// derived from the message fields rather than drawn at random, so repeated
// calls yield identical bytes as long as attachment contents on disk are
// stable.
func (m *Message) Bytes() ([]byte, error) {
	subject, err := m.encodedSubject()
	if err != nil {
		return nil, err
	}
	body, err := m.encodeText(m.Body)
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(make([]byte, 0, 4096))
	writeHeader(buf, "From", m.From)
	writeHeader(buf, "To", m.Recipients())
	writeHeader(buf, "Subject", subject)
	writeHeader(buf, "MIME-Version", "1.0")

	switch {
	case len(m.Attachments) > 0:
		err = m.writeMixed(buf, body)
	case m.HTML != "":
		err = m.writeAlternative(buf, body)
	default:
		err = m.writeSingle(buf, body)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeSingle writes a plain text email with no attachments.
func (m *Message) writeSingle(buf *bytes.Buffer, body []byte) error {
	writeHeader(buf, "Content-Type", fmt.Sprintf("text/plain; charset=%q", m.charset()))
	if !m.defaultCharset() {
		writeHeader(buf, "Content-Transfer-Encoding", "quoted-printable")
	}
	buf.WriteString("\r\n")
	return m.writeTextBody(buf, body)
}

// writeAlternative writes a multipart/alternative document carrying the
// plain-text and HTML renderings of the same content.
func (m *Message) writeAlternative(buf *bytes.Buffer, body []byte) error {
	html, err := m.encodeText(m.HTML)
	if err != nil {
		return err
	}
	w := multipart.NewWriter(buf)
	if err := w.SetBoundary(m.boundary()); err != nil {
		return err
	}
	writeHeader(buf, "Content-Type", "multipart/alternative; boundary="+w.Boundary())
	buf.WriteString("\r\n")
	// Plain text goes first so MIME-unaware clients fall back to it.
	if err := m.writeTextPart(w, "text/plain", body); err != nil {
		return err
	}
	if err := m.writeTextPart(w, "text/html", html); err != nil {
		return err
	}
	return w.Close()
}

// writeMixed writes a multipart/mixed document: the plain-text body
// followed by one part per attachment.
func (m *Message) writeMixed(buf *bytes.Buffer, body []byte) error {
	w := multipart.NewWriter(buf)
	if err := w.SetBoundary(m.boundary()); err != nil {
		return err
	}
	writeHeader(buf, "Content-Type", "multipart/mixed; boundary="+w.Boundary())
	buf.WriteString("\r\n")
	if err := m.writeTextPart(w, "text/plain", body); err != nil {
		return err
	}
	for _, path := range m.Attachments {
		if err := attachPart(w, path); err != nil {
			return err
		}
	}
	return w.Close()
}

// writeTextPart creates one text sub-part under w and writes content to it.
func (m *Message) writeTextPart(w *multipart.Writer, ctype string, content []byte) error {
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Type", fmt.Sprintf("%s; charset=%q", ctype, m.charset()))
	if !m.defaultCharset() {
		hdr.Set("Content-Transfer-Encoding", "quoted-printable")
	}
	pw, err := w.CreatePart(hdr)
	if err != nil {
		return err
	}
	return m.writeTextBody(pw, content)
}

// writeTextBody writes already-charset-converted text content. Content in
// the default charset is 7-bit clean and goes out verbatim; anything else
// is quoted-printable encoded to keep the document transport safe.
func (m *Message) writeTextBody(w io.Writer, content []byte) error {
	if m.defaultCharset() {
		_, err := w.Write(content)
		return err
	}
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write(content); err != nil {
		return err
	}
	return qp.Close()
}

// encodedSubject returns the Subject header value. Under the default
// charset the subject is set verbatim; otherwise it is converted to the
// declared charset and wrapped as an RFC 2047 encoded word.
func (m *Message) encodedSubject() (string, error) {
	if m.defaultCharset() {
		return m.Subject, nil
	}
	b, err := m.encodeText(m.Subject)
	if err != nil {
		return "", err
	}
	return mime.BEncoding.Encode(m.charset(), string(b)), nil
}

// encodeText converts s from UTF-8 to the message charset. Fails with an
// EncodingError if the charset is unknown or some rune has no
// representation in it.
func (m *Message) encodeText(s string) ([]byte, error) {
	if m.defaultCharset() {
		return []byte(s), nil
	}
	cs := m.charset()
	enc, err := lookupCharset(cs)
	if err != nil {
		return nil, &EncodingError{Charset: cs, Err: err}
	}
	b, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, &EncodingError{Charset: cs, Err: err}
	}
	return b, nil
}

func (m *Message) defaultCharset() bool {
	return strings.EqualFold(m.charset(), DefaultCharset)
}

// lookupCharset resolves an IANA charset name to an encoding. The default
// charset never reaches here; its content is written verbatim.
func lookupCharset(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.MIME.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown charset %q", name)
	}
	return enc, nil
}

// boundary derives the multipart boundary from the message fields. A
// random boundary would make two serializations of the same message
// differ, which callers comparing or deduplicating serialized messages
// can't tolerate.
func (m *Message) boundary() string {
	h := sha256.New()
	for _, s := range []string{m.From, m.To, m.Subject, m.Body, m.HTML, m.charset()} {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	for _, p := range m.Attachments {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "mime" + hex.EncodeToString(h.Sum(nil))[:40]
}

// writeHeader emits one "Field: value" header line. Headers are written in
// a fixed order by the callers; iterating a header map here would reorder
// them between serializations.
func writeHeader(buf *bytes.Buffer, field, value string) {
	buf.WriteString(field)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}
