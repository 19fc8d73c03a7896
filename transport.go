package mailer

import (
	"net"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultHost is the SMTP server used when a Mailer is constructed with an
// empty host.
const DefaultHost = "localhost"

// smtpPort is appended to hosts configured without an explicit port.
const smtpPort = "25"

// Mailer represents an SMTP relay. Use Login to record credentials, then
// Send to deliver messages. Every Send call opens a brand-new connection
// and tears it down before returning; connections are never pooled or
// shared, so concurrent senders should each use their own Mailer.
type Mailer struct {
	Host string

	username string
	password string
}

// New returns a Mailer that delivers mail through host, which may carry an
// explicit port. An empty host means DefaultHost.
func New(host string) *Mailer {
	if host == "" {
		host = DefaultHost
	}
	return &Mailer{Host: host}
}

// Login records credentials for subsequent Send calls. It does not contact
// the server.
func (m *Mailer) Login(username, password string) {
	m.username = username
	m.password = password
}

// SendRequest names the messages for one Send call. Construct it with
// Single or Batch, so "one message" and "a sequence of messages" are told
// apart by how the caller built the request rather than by inspecting it
// at runtime.
type SendRequest struct {
	messages []*Message
}

// Single wraps one message for Send.
func Single(msg *Message) SendRequest {
	return SendRequest{messages: []*Message{msg}}
}

// Batch wraps an ordered sequence of messages for Send. The messages share
// one connection and are submitted in order; the first failure aborts the
// rest of the batch, with no retries and no partial-success reporting.
func Batch(msgs ...*Message) SendRequest {
	return SendRequest{messages: msgs}
}

// Send delivers the request's messages over a fresh SMTP connection,
// authenticating first if credentials were recorded. Each message is
// serialized and submitted with its From field as the envelope sender and
// its normalized recipient list as the envelope recipients.
//
// The connection is torn down unconditionally: QUIT after a clean run, a
// bare close after a failure. A close-time error never masks the error
// being reported.
func (m *Mailer) Send(req SendRequest) error {
	c, err := smtp.Dial(m.addr())
	if err != nil {
		return &DeliveryError{Host: m.Host, Err: err}
	}

	log.Debug().
		Str("host", m.Host).
		Int("messages", len(req.messages)).
		Msg("opened SMTP connection")

	if err := m.submitAll(c, req.messages); err != nil {
		c.Close()
		return err
	}

	if err := c.Quit(); err != nil {
		return &DeliveryError{Host: m.Host, Err: err}
	}
	return nil
}

func (m *Mailer) submitAll(c *smtp.Client, msgs []*Message) error {
	if m.username != "" || m.password != "" {
		if err := m.authenticate(c); err != nil {
			return err
		}
	}
	for _, msg := range msgs {
		if err := m.submit(c, msg); err != nil {
			return err
		}
	}
	return nil
}

// authenticate negotiates SMTP AUTH with the credentials from Login. PLAIN
// is preferred; when the server doesn't offer it, fall back to the LOGIN
// mechanism, which some relays are still limited to.
func (m *Mailer) authenticate(c *smtp.Client) error {
	host, _, err := net.SplitHostPort(m.addr())
	if err != nil {
		host = m.Host
	}
	auth := smtp.Auth(smtp.PlainAuth("", m.username, m.password, host))
	if ok, mechs := c.Extension("AUTH"); ok && !strings.Contains(mechs, "PLAIN") {
		auth = LoginAuth(m.username, m.password)
	}
	if err := c.Auth(auth); err != nil {
		return &AuthenticationError{Host: m.Host, Err: err}
	}
	return nil
}

// submit serializes one message and hands it to the server.
func (m *Mailer) submit(c *smtp.Client, msg *Message) error {
	doc, err := msg.Bytes()
	if err != nil {
		return err
	}
	if err := c.Mail(msg.From); err != nil {
		return &DeliveryError{Host: m.Host, Err: err}
	}
	for _, rcpt := range msg.RecipientAddresses() {
		if err := c.Rcpt(rcpt); err != nil {
			return &DeliveryError{Host: m.Host, Err: err}
		}
	}
	w, err := c.Data()
	if err != nil {
		return &DeliveryError{Host: m.Host, Err: err}
	}
	if _, err := w.Write(doc); err != nil {
		w.Close()
		return &DeliveryError{Host: m.Host, Err: err}
	}
	if err := w.Close(); err != nil {
		return &DeliveryError{Host: m.Host, Err: err}
	}

	log.Debug().
		Str("from", msg.From).
		Str("to", msg.Recipients()).
		Msg("submitted message")
	return nil
}

// addr returns the host:port to dial, appending the standard SMTP port
// when the configured host has none.
func (m *Mailer) addr() string {
	if _, _, err := net.SplitHostPort(m.Host); err == nil {
		return m.Host
	}
	return net.JoinHostPort(m.Host, smtpPort)
}
