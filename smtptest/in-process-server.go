package smtptest

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/docker/go-units"
	"github.com/emersion/go-smtp"
)

// Envelope is one message as the server received it: the SMTP envelope
// addresses plus the raw message payload.
type Envelope struct {
	From string
	To   []string
	Body string

	created time.Time
}

// InMemoryEmailStore retains received envelopes in memory for comparison
// against a test's expected output. Designed to be goroutine safe, since we
// don't control how many connections a test opens at once.
type InMemoryEmailStore struct {
	mu        *sync.Mutex
	envelopes []Envelope

	// RejectRecipient, when non-empty, makes the server refuse RCPT
	// commands naming that address. Lets tests exercise mid-batch
	// delivery failures.
	RejectRecipient string
}

func (es *InMemoryEmailStore) save(env Envelope) {
	es.mu.Lock()
	defer es.mu.Unlock()

	env.created = time.Now()
	es.envelopes = append(es.envelopes, env)
}

// Envelopes returns a copy of everything received so far, in arrival order.
func (es *InMemoryEmailStore) Envelopes() []Envelope {
	es.mu.Lock()
	defer es.mu.Unlock()

	out := make([]Envelope, len(es.envelopes))
	copy(out, es.envelopes)
	return out
}

// RetrieveEmails returns the payloads of all messages received at or after
// epoch nanoseconds t. Satisfies smtptest.Server but isn't expected to
// return an error.
func (es *InMemoryEmailStore) RetrieveEmails(t int64) ([]string, error) {
	es.mu.Lock()
	defer es.mu.Unlock()

	r := make([]string, 0, len(es.envelopes))
	for _, env := range es.envelopes {
		if env.created.UnixNano() >= t {
			r = append(r, env.Body)
		}
	}
	return r, nil
}

// Backend implements smtp.Backend, handing out sessions that write into a
// shared InMemoryEmailStore.
type Backend struct {
	Store *InMemoryEmailStore
}

// Login implements smtp.Backend. Any non-empty username/password is fine,
// since we don't want to couple this with specific test configurations.
func (be *Backend) Login(_ *smtp.ConnectionState, username string, password string) (smtp.Session, error) {
	if username == "" || password == "" {
		return nil, errors.New("no username or password provided")
	}
	return &session{store: be.Store}, nil
}

// AnonymousLogin implements smtp.Backend. Allowed, since the client under
// test also supports unauthenticated sends.
func (be *Backend) AnonymousLogin(_ *smtp.ConnectionState) (smtp.Session, error) {
	return &session{store: be.Store}, nil
}

// session implements smtp.Session, accumulating one envelope per
// MAIL/RCPT/DATA exchange.
type session struct {
	store *InMemoryEmailStore
	env   Envelope
}

// Reset implements smtp.Session.
func (s *session) Reset() { s.env = Envelope{} }

// Logout implements smtp.Session. No-op here.
func (s *session) Logout() error { return nil }

// Mail implements smtp.Session.
func (s *session) Mail(from string, _ smtp.MailOptions) error {
	s.env = Envelope{From: from}
	return nil
}

// Rcpt implements smtp.Session.
func (s *session) Rcpt(to string) error {
	if r := s.store.RejectRecipient; r != "" && strings.Contains(to, r) {
		return errors.New("recipient refused by test configuration")
	}
	s.env.To = append(s.env.To, to)
	return nil
}

// Data implements smtp.Session. Stores the envelope in memory for retrieval
// at the end of the test.
func (s *session) Data(r io.Reader) error {
	// doubtful we'll get an email this big, but we need a limit
	var maxEmailSize int64 = 100 * units.MiB
	buf, err := io.ReadAll(io.LimitReader(r, maxEmailSize))
	if err != nil {
		return err
	}
	s.env.Body = string(buf)
	s.store.save(s.env)
	s.env = Envelope{}
	return nil
}

// InProcessServer is a Server that runs in the same process as the test
// suite, letting us inspect sent emails. You must initialize this via
// NewInProcessServer.
type InProcessServer struct {
	*smtp.Server
	Store *InMemoryEmailStore

	listener net.Listener
}

// NewInProcessServer creates an InProcessServer that stores incoming
// messages in memory. It speaks plain SMTP with no TLS, like the client
// this package exists to test, so AUTH is allowed over cleartext.
func NewInProcessServer() *InProcessServer {
	store := &InMemoryEmailStore{mu: &sync.Mutex{}}

	srv := smtp.NewServer(&Backend{Store: store})
	srv.Domain = "localhost"
	srv.AllowInsecureAuth = true
	// Strict is undocumented, but it looks like it enforces <address>
	// syntax in messages:
	// https://github.com/emersion/go-smtp/blob/f92bf7f1a25777bcdaa28a142b1cd1a54b74c8f4/conn.go#L321-L325
	srv.Strict = true

	return &InProcessServer{
		Server: srv,
		Store:  store,
	}
}

// Start binds an ephemeral localhost port and serves in the background.
// Unlike ListenAndServe it only returns once the listener is ready, so
// callers can dial Address() right away without a retry loop.
func (is *InProcessServer) Start() error {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	is.listener = l
	go func() {
		// Serve always returns a non-nil error once the listener
		// closes; there's nothing to do with it during a test.
		_ = is.Server.Serve(l)
	}()
	return nil
}

// Close shuts down the test server. You must initialize a new
// InProcessServer instead of restarting this one.
func (is *InProcessServer) Close() {
	is.Server.Close()
}

// Address returns the host:port of the test SMTP server. Only valid after
// Start.
func (is *InProcessServer) Address() string {
	return is.listener.Addr().String()
}

// RetrieveEmails satisfies Server by delegating to the store.
func (is *InProcessServer) RetrieveEmails(t int64) ([]string, error) {
	return is.Store.RetrieveEmails(t)
}
