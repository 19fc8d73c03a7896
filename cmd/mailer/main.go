package main

import (
	"flag"
	"io"
	"os"
	"strings"

	"github.com/ptgott/mailer"
	"github.com/ptgott/mailer/userconfig"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Log with filename and line number. This writes to stderr, so it
	// should be thread safe.
	log.Logger = log.With().Caller().Logger()

	configPath := flag.String(
		"config",
		"./config.yaml",
		"path to a YAML file with SMTP settings and message defaults",
	)
	to := flag.String(
		"to",
		"",
		"recipient override; separate multiple recipients with commas or semicolons",
	)
	subject := flag.String(
		"subject",
		"",
		"subject override",
	)
	body := flag.String(
		"body",
		"",
		`plain-text body; use "-" to read it from stdin`,
	)
	htmlPath := flag.String(
		"html",
		"",
		"path to a file containing an HTML body",
	)
	attach := flag.String(
		"attach",
		"",
		"comma-separated list of attachment paths",
	)
	level := flag.String(
		"level",
		"info",
		`log level: "info", "debug", or "warn"`,
	)
	flag.Parse()

	switch *level {
	case "debug":
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	case "warn":
		log.Logger = log.Logger.Level(zerolog.WarnLevel)
	default:
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	f, err := os.Open(*configPath)
	if err != nil {
		log.Error().
			Str("config-path", *configPath).
			Err(err).
			Msg("We can't open the application config file")
		os.Exit(1)
	}

	config, err := userconfig.Parse(f)
	f.Close()
	if err != nil {
		log.Error().
			Str("config-path", *configPath).
			Err(err).
			Msg("We can't parse the application config file")
		os.Exit(1)
	}

	msg := config.NewMessage()
	if *to != "" {
		msg.To = *to
	}
	if *subject != "" {
		msg.Subject = *subject
	}

	switch *body {
	case "":
	case "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Error().Err(err).Msg("We can't read the message body from stdin")
			os.Exit(1)
		}
		msg.Body = string(b)
	default:
		msg.Body = *body
	}

	if *htmlPath != "" {
		b, err := os.ReadFile(*htmlPath)
		if err != nil {
			log.Error().
				Str("html-path", *htmlPath).
				Err(err).
				Msg("We can't read the HTML body file")
			os.Exit(1)
		}
		msg.HTML = string(b)
		if msg.Body == "" {
			// Keep the plain-text fallback meaningful for clients
			// that can't render the HTML part.
			msg.Body = mailer.PlainTextFromHTML(msg.HTML)
		}
	}

	if *attach != "" {
		for _, p := range strings.Split(*attach, ",") {
			msg.Attach(strings.TrimSpace(p))
		}
	}

	if msg.To == "" {
		log.Error().Msg("no recipients: set message.to in the config or pass -to")
		os.Exit(1)
	}

	if err := config.NewMailer().Send(mailer.Single(msg)); err != nil {
		log.Error().
			Str("host", config.SMTP.Host).
			Err(err).
			Msg("couldn't deliver the message")
		os.Exit(1)
	}

	log.Info().
		Str("to", msg.Recipients()).
		Msg("message delivered")
}
