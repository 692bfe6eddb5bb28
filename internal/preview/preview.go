// Package preview builds the short plain-text excerpts shown in the inbox list.
package preview

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxLength is the preview length in characters before the ellipsis marker
const MaxLength = 300

// Ellipsis is appended to previews that were cut short
const Ellipsis = "…"

// Build returns the list preview for a message. Stripped HTML wins over
// the text body when it yields any text; the text body is used as stored.
func Build(text, htmlBody string) string {
	source := ""
	if htmlBody != "" {
		source = StripHTML(htmlBody)
	}
	if source == "" {
		source = text
	}
	return Truncate(source, MaxLength)
}

// StripHTML removes markup from an HTML document and collapses whitespace.
// The contents of script and style elements are dropped.
func StripHTML(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))

	var b strings.Builder
	skipDepth := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return CollapseWhitespace(b.String())
		case html.StartTagToken:
			if isHidden(z) {
				skipDepth++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if isHidden(z) && skipDepth > 0 {
				skipDepth--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isHidden(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style:
		return true
	}
	return false
}

// CollapseWhitespace trims s and folds every whitespace run into one space
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to max characters and appends Ellipsis when it was longer
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + Ellipsis
}
