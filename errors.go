package mailer

import "fmt"

// AttachmentReadError indicates that an attachment file could not be opened
// or read while serializing a message.
type AttachmentReadError struct {
	Path string
	Err  error
}

func (e *AttachmentReadError) Error() string {
	return fmt.Sprintf("can't read attachment %q: %v", e.Path, e.Err)
}

func (e *AttachmentReadError) Unwrap() error { return e.Err }

// EncodingError indicates that a subject or body can't be represented under
// the message's declared charset, or that the charset itself is unknown.
type EncodingError struct {
	Charset string
	Err     error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("can't encode message as %q: %v", e.Charset, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// AuthenticationError indicates that the SMTP server rejected the
// credentials recorded with Mailer.Login.
type AuthenticationError struct {
	Host string
	Err  error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("SMTP authentication with %v failed: %v", e.Host, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// DeliveryError indicates a network or protocol failure while talking to
// the SMTP server.
type DeliveryError struct {
	Host string
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("can't deliver mail via %v: %v", e.Host, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
