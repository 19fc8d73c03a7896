package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

type loginAuth struct {
	username, password string
}

// LoginAuth returns an smtp.Auth implementing the LOGIN authentication
// mechanism. net/smtp ships PLAIN and CRAM-MD5 only, and some relays
// (Office 365, notably) offer nothing but LOGIN.
func LoginAuth(username, password string) smtp.Auth {
	return &loginAuth{username: username, password: password}
}

func (a *loginAuth) Start(_ *smtp.ServerInfo) (string, []byte, error) {
	return "LOGIN", []byte(a.username), nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}

	prompt := string(fromServer)
	prompt = strings.TrimSpace(prompt)
	prompt = strings.TrimSuffix(prompt, ":")
	prompt = strings.ToLower(prompt)

	switch prompt {
	case "username":
		return []byte(a.username), nil
	case "password":
		return []byte(a.password), nil
	default:
		return nil, fmt.Errorf("unexpected server challenge %q", prompt)
	}
}
