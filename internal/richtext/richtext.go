// Package richtext turns the HTML produced by the rich text editor into
// Markdown for clients that render it, and into plain text for excerpts and
// text search. Stored HTML is never rewritten.
package richtext

import (
	"regexp"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExcerptLength is the default excerpt size, in runes.
const ExcerptLength = 200

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|u|s|strong|em|a|img|ul|ol|li|h[1-6]|blockquote|pre|code)[\s>/]`)

// markupPattern matches anything html.Parse would treat as markup: any tag,
// closing tag, comment or character reference.
var markupPattern = regexp.MustCompile(`<[a-zA-Z!/]|&(#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)

// ContainsHTML reports whether s appears to contain HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// ToMarkdown converts HTML content to Markdown.
// If the input doesn't contain HTML, it's returned unchanged.
func ToMarkdown(s string) string {
	if s == "" || !ContainsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}

	return strings.TrimSpace(markdown)
}

// PlainText reduces HTML to single-spaced text. Tags are dropped, character
// references decoded and block boundaries become spaces.
func PlainText(s string) string {
	if !markupPattern.MatchString(s) {
		return strings.Join(strings.Fields(s), " ")
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
	}

	var buf strings.Builder
	extractText(doc, &buf)
	return strings.Join(strings.Fields(buf.String()), " ")
}

// extractText writes the text nodes under n in document order.
func extractText(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Template:
			return
		}
	}

	block := n.Type == html.ElementNode && isBlock(n.DataAtom)
	if block {
		buf.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}
	if block {
		buf.WriteByte(' ')
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Br, atom.Li, atom.Ul, atom.Ol, atom.Blockquote, atom.Pre,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Table, atom.Tr, atom.Td, atom.Th, atom.Hr:
		return true
	}
	return false
}

// Excerpt returns at most maxRunes runes of the plain text of s, cut at a word
// boundary when possible and marked with an ellipsis when shortened.
func Excerpt(s string, maxRunes int) string {
	text := PlainText(s)
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:maxRunes-1])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " .,;:") + "…"
}
