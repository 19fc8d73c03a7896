package smtptest

// Server contains state information for an SMTP server used during tests.
// The server should be able to return the payloads of messages sent to it
// during the test suite. It is meant to start during a test (or test suite)
// and stop right after.
type Server interface {
	// Start sets up any required resources, such as a listener, and
	// launches the server. Retry behavior is left to the caller.
	Start() error

	// Close terminates the server and any resources it holds. It is
	// designed not to return an error so it's easier to use with defer;
	// implementations should log failures to close so the test operator
	// can chase down rogue servers.
	Close()

	// RetrieveEmails returns the payloads of all email messages sent to
	// the server at or after time t in Unix epoch nanoseconds.
	RetrieveEmails(t int64) ([]string, error)

	// Address returns the host:port of the server.
	Address() string
}
