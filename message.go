package mailer

import (
	"strings"
)

// DefaultCharset is the charset assumed when Message.Charset is empty.
// Headers and bodies under the default charset are written verbatim;
// anything else is converted and wrapped in RFC 2047 encoded words where
// headers are involved.
const DefaultCharset = "us-ascii"

// Message represents an email message. Set From, To, Subject, and Body as
// plain strings. Optionally set HTML to send an HTML email, or use Attach
// to add file attachments. Deliver with a Mailer.
type Message struct {
	// From is the sender address. It doubles as the SMTP envelope sender.
	From string

	// To holds the recipient(s). Multiple recipients can be separated
	// with commas or semicolons, with any amount of surrounding
	// whitespace. Readers should go through Recipients or
	// RecipientAddresses, which always return the normalized form.
	To string

	Subject string

	// Body is the plain-text body.
	Body string

	// HTML is an optional HTML rendering of Body. When set and no
	// attachments are present, the message becomes a
	// multipart/alternative document with the plain-text part first, so
	// MIME-unaware clients fall back to it. When attachments are present
	// HTML is ignored and only Body is embedded; callers relying on the
	// original behavior of this interface expect that.
	HTML string

	// Charset governs header and body encoding. Empty means
	// DefaultCharset.
	Charset string

	// Attachments is an ordered list of file paths. The files are read
	// when the message is serialized, not when they are attached.
	Attachments []string
}

// NormalizeRecipients splits a recipient string on commas and semicolons,
// trims surrounding whitespace from each address, and drops empty tokens.
// It is the one place permissive recipient input becomes a clean address
// list, used both for the To header and for the SMTP envelope.
func NormalizeRecipients(raw string) []string {
	tokens := strings.Split(strings.ReplaceAll(raw, ";", ","), ",")
	addrs := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		addrs = append(addrs, t)
	}
	return addrs
}

// Recipients returns the recipients normalized to "addr1, addr2, addr3"
// form, regardless of the separator style used when To was set.
func (m *Message) Recipients() string {
	return strings.Join(NormalizeRecipients(m.To), ", ")
}

// RecipientAddresses returns the individual recipient addresses, for use as
// the SMTP envelope recipient list.
func (m *Message) RecipientAddresses() []string {
	return NormalizeRecipients(m.To)
}

// Attach adds a file to the message. The file isn't opened here; a bad path
// surfaces as an AttachmentReadError at serialization time.
func (m *Message) Attach(path string) {
	m.Attachments = append(m.Attachments, path)
}

func (m *Message) charset() string {
	if m.Charset == "" {
		return DefaultCharset
	}
	return m.Charset
}
