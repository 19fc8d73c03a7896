package mailer

import (
	"errors"
	"strings"
	"testing"

	"github.com/ptgott/mailer/smtptest"
)

func startServer(t *testing.T) *smtptest.InProcessServer {
	t.Helper()
	srv := smtptest.NewInProcessServer()
	if err := srv.Start(); err != nil {
		t.Fatalf("can't start the in-process SMTP server: %v", err)
	}
	t.Cleanup(srv.Close)
	return srv
}

func TestSendSingle(t *testing.T) {
	srv := startServer(t)

	m := New(srv.Address())
	m.Login("myuser", "mypassword")

	msg := &Message{
		From:    "me@example.com",
		To:      "you@example.com; other@example.com",
		Subject: "over the wire",
		Body:    "Hello this is my email body",
	}

	if err := m.Send(Single(msg)); err != nil {
		t.Fatalf("unexpected error when sending the email: %v", err)
	}

	envs := srv.Store.Envelopes()
	if len(envs) != 1 {
		t.Fatalf("expected to have sent one email, but sent %v instead", len(envs))
	}
	env := envs[0]
	if env.From != "me@example.com" {
		t.Errorf("unexpected envelope sender %q", env.From)
	}
	if len(env.To) != 2 ||
		env.To[0] != "you@example.com" ||
		env.To[1] != "other@example.com" {
		t.Errorf("unexpected envelope recipients %v", env.To)
	}
	if !strings.Contains(env.Body, "Hello this is my email body") {
		t.Error("the message body never reached the server")
	}
	if !strings.Contains(env.Body, "To: you@example.com, other@example.com") {
		t.Error("the To header isn't normalized in the received message")
	}
}

func TestSendUnauthenticated(t *testing.T) {
	srv := startServer(t)

	m := New(srv.Address())
	msg := &Message{
		From:    "me@example.com",
		To:      "you@example.com",
		Subject: "no auth",
		Body:    "hello",
	}

	if err := m.Send(Single(msg)); err != nil {
		t.Fatalf("unexpected error when sending without credentials: %v", err)
	}
	if envs := srv.Store.Envelopes(); len(envs) != 1 {
		t.Fatalf("expected one email but got %v", len(envs))
	}
}

func TestSendAuthFailure(t *testing.T) {
	srv := startServer(t)

	m := New(srv.Address())
	// The test server refuses empty passwords.
	m.Login("myuser", "")

	msg := &Message{
		From:    "me@example.com",
		To:      "you@example.com",
		Subject: "bad credentials",
		Body:    "hello",
	}

	err := m.Send(Single(msg))
	var ae *AuthenticationError
	if !errors.As(err, &ae) {
		t.Fatalf("wanted an AuthenticationError but got %v", err)
	}
	if envs := srv.Store.Envelopes(); len(envs) != 0 {
		t.Errorf("no message should have been delivered, but got %v", len(envs))
	}
}

func TestSendBatchOrdering(t *testing.T) {
	srv := startServer(t)
	srv.Store.RejectRecipient = "second@example.com"

	m := New(srv.Address())

	newMsg := func(to string) *Message {
		return &Message{
			From:    "me@example.com",
			To:      to,
			Subject: "batch",
			Body:    "hello " + to,
		}
	}
	first := newMsg("first@example.com")
	second := newMsg("second@example.com")
	third := newMsg("third@example.com")

	err := m.Send(Batch(first, second, third))
	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("wanted a DeliveryError but got %v", err)
	}

	// The first message was already delivered when the second failed; the
	// third must never have been attempted.
	envs := srv.Store.Envelopes()
	if len(envs) != 1 {
		t.Fatalf("expected exactly one delivered message but got %v", len(envs))
	}
	if len(envs[0].To) != 1 || envs[0].To[0] != "first@example.com" {
		t.Errorf("the delivered message has the wrong recipients: %v", envs[0].To)
	}
}

func TestSendBatchOrder(t *testing.T) {
	srv := startServer(t)

	m := New(srv.Address())
	msgs := make([]*Message, 3)
	for i, to := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		msgs[i] = &Message{
			From:    "me@example.com",
			To:      to,
			Subject: "ordered",
			Body:    "hello",
		}
	}

	if err := m.Send(Batch(msgs...)); err != nil {
		t.Fatalf("unexpected error when sending the batch: %v", err)
	}

	envs := srv.Store.Envelopes()
	if len(envs) != 3 {
		t.Fatalf("expected three emails but got %v", len(envs))
	}
	for i, want := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		if len(envs[i].To) != 1 || envs[i].To[0] != want {
			t.Errorf("message %v went to %v, wanted %v", i, envs[i].To, want)
		}
	}
}

func TestSendSerializationFailureAbortsMessage(t *testing.T) {
	srv := startServer(t)

	m := New(srv.Address())
	msg := &Message{
		From:    "me@example.com",
		To:      "you@example.com",
		Subject: "doomed",
		Body:    "hello",
	}
	msg.Attach("/nonexistent/file.pdf")

	err := m.Send(Single(msg))
	var ae *AttachmentReadError
	if !errors.As(err, &ae) {
		t.Fatalf("wanted an AttachmentReadError but got %v", err)
	}
	if envs := srv.Store.Envelopes(); len(envs) != 0 {
		t.Errorf("no partial delivery expected, but the server got %v messages", len(envs))
	}
}

func TestSendDialFailure(t *testing.T) {
	// Port 0 is never dialable.
	m := New("127.0.0.1:0")
	msg := &Message{
		From: "me@example.com",
		To:   "you@example.com",
		Body: "hello",
	}

	err := m.Send(Single(msg))
	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("wanted a DeliveryError but got %v", err)
	}
}

func TestMailerDefaults(t *testing.T) {
	if got := New("").Host; got != DefaultHost {
		t.Errorf("wanted the default host %q but got %q", DefaultHost, got)
	}
}
