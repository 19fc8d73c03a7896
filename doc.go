/*
Package mailer is a small convenience library for composing email messages
and handing them to an SMTP server.

A Message holds the sender, recipients, subject, plain-text body, an
optional HTML body, and a list of file attachments. Serialization picks the
right MIME shape on its own: a single text/plain document, a
multipart/alternative document when an HTML body is present, or a
multipart/mixed document when there are attachments.

Sample code:

	msg := &mailer.Message{
		From:    "me@example.com",
		To:      "you@example.com",
		Subject: "My Vacation",
		Body:    "See the attached picture.",
	}
	msg.Attach("picture.jpg")

	m := mailer.New("mail.example.com")
	m.Login("myuser", "mypassword")
	if err := m.Send(mailer.Single(msg)); err != nil {
		// ...
	}

Every call to Send opens a fresh connection, so several messages should be
passed together:

	m.Send(mailer.Batch(msg1, msg2, msg3))
*/
package mailer
