package userconfig

import (
	"errors"
	"fmt"
	"io"

	"github.com/ptgott/mailer"
	"github.com/rs/zerolog/log"

	yaml "gopkg.in/yaml.v2"
)

// Meta represents all current config options that a sender can use, i.e.,
// after validation and parsing.
type Meta struct {
	SMTP    SMTP    `yaml:"smtp"`
	Message Message `yaml:"message"`
}

// SMTP contains connection options for the SMTP relay.
type SMTP struct {
	Host     string
	Username string
	Password string
}

// Message contains defaults applied to every message composed from this
// configuration.
type Message struct {
	From    string
	To      string
	Subject string
	Charset string
}

// UnmarshalYAML parses the user-provided smtp section, returning any
// parsing errors.
func (s *SMTP) UnmarshalYAML(unmarshal func(interface{}) error) error {
	v := make(map[string]string)
	if err := unmarshal(&v); err != nil {
		return fmt.Errorf("can't parse the smtp config section: %v", err)
	}

	s.Host = v["host"]
	s.Username = v["username"]
	s.Password = v["password"]

	return nil
}

// UnmarshalYAML parses the user-provided message section, returning any
// parsing errors.
func (mc *Message) UnmarshalYAML(unmarshal func(interface{}) error) error {
	v := make(map[string]string)
	if err := unmarshal(&v); err != nil {
		return fmt.Errorf("can't parse the message config section: %v", err)
	}

	mc.From = v["from"]
	mc.To = v["to"]
	mc.Subject = v["subject"]
	mc.Charset = v["charset"]

	return nil
}

// CheckAndSetDefaults validates s and either returns a copy of s with
// default settings applied or returns an error due to an invalid
// configuration.
func (s *SMTP) CheckAndSetDefaults() (SMTP, error) {
	c := *s

	if c.Host == "" {
		c.Host = mailer.DefaultHost
		log.Debug().
			Str("host", c.Host).
			Msg("no SMTP host configured, using the default")
	}

	if (c.Username == "") != (c.Password == "") {
		return SMTP{}, errors.New(
			"smtp username and password must be provided together",
		)
	}

	return c, nil
}

// CheckAndSetDefaults validates mc and either returns a copy of mc with
// default settings applied or returns an error due to an invalid
// configuration.
func (mc *Message) CheckAndSetDefaults() (Message, error) {
	c := *mc

	if c.From == "" {
		return Message{}, errors.New(
			"user-provided config does not include a \"from\" address",
		)
	}

	if c.Charset == "" {
		c.Charset = mailer.DefaultCharset
	}

	return c, nil
}

// CheckAndSetDefaults validates m and either returns a copy of m with
// default settings applied or returns an error due to an invalid
// configuration.
func (m *Meta) CheckAndSetDefaults() (Meta, error) {
	c := Meta{}

	s, err := m.SMTP.CheckAndSetDefaults()
	if err != nil {
		return Meta{}, err
	}
	c.SMTP = s

	mc, err := m.Message.CheckAndSetDefaults()
	if err != nil {
		return Meta{}, err
	}
	c.Message = mc

	return c, nil
}

// Parse generates usable configurations from possibly arbitrary user
// input. An error indicates a problem with parsing or validation.
func Parse(r io.Reader) (*Meta, error) {
	var m Meta
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return &Meta{}, fmt.Errorf("can't read the config file as YAML: %v", err)
	}

	var mc Message = Message{}
	if m.Message == mc {
		return &Meta{}, errors.New("must include a \"message\" section")
	}

	v, err := m.CheckAndSetDefaults()
	if err != nil {
		return &Meta{}, err
	}

	return &v, nil
}

// NewMailer returns a Mailer for the configured relay, with credentials
// recorded when the config includes them.
func (m *Meta) NewMailer() *mailer.Mailer {
	ml := mailer.New(m.SMTP.Host)
	if m.SMTP.Username != "" {
		ml.Login(m.SMTP.Username, m.SMTP.Password)
	}
	return ml
}

// NewMessage returns a Message prefilled with the configured defaults. The
// caller sets the body and any attachments.
func (m *Meta) NewMessage() *mailer.Message {
	return &mailer.Message{
		From:    m.Message.From,
		To:      m.Message.To,
		Subject: m.Message.Subject,
		Charset: m.Message.Charset,
	}
}
