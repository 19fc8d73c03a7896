package mailer

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

const octetStream = "application/octet-stream"

// compressedExts lists extensions that indicate an already-applied transfer
// encoding. A type guess for these would describe the compressed container
// rather than the payload, so the generic bag-of-bits type is used instead.
var compressedExts = map[string]bool{
	".br":  true,
	".bz2": true,
	".gz":  true,
	".taz": true,
	".tgz": true,
	".xz":  true,
	".z":   true,
	".zst": true,
}

// partEncoder writes one attachment as a MIME sub-part of w.
type partEncoder func(w *multipart.Writer, hdr textproto.MIMEHeader, content []byte) error

// partEncoders dispatches on the major type of the content-type guess.
// Text rides along verbatim; image and audio content is base64 encoded.
// Any major type not listed here is treated as opaque binary.
var partEncoders = map[string]partEncoder{
	"text":  textAttachment,
	"image": base64Attachment,
	"audio": base64Attachment,
}

// attachPart reads the file at path and appends it to w as an attachment
// sub-part, picking the encoder from the content-type guess.
func attachPart(w *multipart.Writer, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return &AttachmentReadError{Path: path, Err: err}
	}

	ctype := guessContentType(path)
	enc, ok := partEncoders[strings.SplitN(ctype, "/", 2)[0]]
	if !ok {
		enc = base64Attachment
	}

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Type", ctype)
	// Only the base name: the local directory layout is nobody's business.
	hdr.Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	return enc(w, hdr, content)
}

// guessContentType maps an attachment file name to a MIME content type
// based on its extension, falling back to application/octet-stream when no
// guess can be made or the file is compressed.
func guessContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if compressedExts[ext] {
		return octetStream
	}
	t := mime.TypeByExtension(ext)
	if t == "" {
		return octetStream
	}
	// TypeByExtension tacks parameters onto some types (text/plain gets a
	// charset). The charset of attached text isn't tracked, so keep the
	// bare type.
	mt, _, err := mime.ParseMediaType(t)
	if err != nil {
		return octetStream
	}
	return mt
}

func textAttachment(w *multipart.Writer, hdr textproto.MIMEHeader, content []byte) error {
	pw, err := w.CreatePart(hdr)
	if err != nil {
		return err
	}
	_, err = pw.Write(content)
	return err
}

func base64Attachment(w *multipart.Writer, hdr textproto.MIMEHeader, content []byte) error {
	hdr.Set("Content-Transfer-Encoding", "base64")
	pw, err := w.CreatePart(hdr)
	if err != nil {
		return err
	}
	return base64Wrap(pw, content)
}

// base64Wrap writes b to w as base64 folded at 76 characters per line, per
// RFC 2045. 57 input bytes fill exactly one output line.
func base64Wrap(w io.Writer, b []byte) error {
	const chunk = 57
	line := make([]byte, 0, base64.StdEncoding.EncodedLen(chunk)+2)
	for len(b) > 0 {
		n := len(b)
		if n > chunk {
			n = chunk
		}
		out := line[:base64.StdEncoding.EncodedLen(n)]
		base64.StdEncoding.Encode(out, b[:n])
		out = append(out, '\r', '\n')
		if _, err := w.Write(out); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
