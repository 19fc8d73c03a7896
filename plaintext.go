package mailer

import (
	"strings"

	"golang.org/x/net/html"
)

// elements whose text content never belongs in a plain-text rendering
var hiddenElements = map[string]bool{
	"head":   true,
	"script": true,
	"style":  true,
	"title":  true,
}

// elements that imply a line break around their content
var blockElements = map[string]bool{
	"div": true, "li": true, "p": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// PlainTextFromHTML derives a plain-text rendering of an HTML document.
// It's a convenience for callers who author only Message.HTML: setting
// Body from its output keeps the plain-text-first multipart/alternative
// fallback meaningful for MIME-unaware clients.
//
// The rendering is deliberately crude. Script, style, and head content is
// dropped, block-level elements turn into line breaks, and everything else
// is the document's text, whitespace-collapsed.
func PlainTextFromHTML(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var b strings.Builder
	hidden := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			// Also reached at end of input.
			return collapseBlankLines(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			switch {
			case hiddenElements[string(name)]:
				hidden++
			case blockElements[string(name)], string(name) == "br":
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch {
			case hiddenElements[string(name)]:
				if hidden > 0 {
					hidden--
				}
			case blockElements[string(name)]:
				b.WriteByte('\n')
			}
		case html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				b.WriteByte('\n')
			}
		case html.TextToken:
			if hidden == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// collapseBlankLines trims each line and squeezes runs of blank lines down
// to one, so the block-element breaks above don't stack up.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true // swallow leading blanks
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, l)
		blank = false
	}
	// drop a trailing blank line
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
