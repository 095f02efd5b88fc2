package htmlutil

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Parse builds a document out of arbitrary (possibly malformed) markup.
//
// The html5 parsing algorithm never rejects input, so this never fails,
// an unusable input simply results in an empty document.
func Parse(input string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return doc
}

// None returns an empty selection, it is what every lookup that finds
// nothing returns.
func None() *goquery.Selection {
	return &goquery.Selection{}
}

func empty(sel *goquery.Selection) bool {
	return sel == nil || len(sel.Nodes) == 0
}

// QueryAll returns all the descendants of root matching selector in
// document order.
func QueryAll(root *goquery.Selection, selector string) *goquery.Selection {
	if empty(root) {
		return None()
	}
	return root.Find(selector)
}

// QueryOne returns the first descendant of root matching selector.
func QueryOne(root *goquery.Selection, selector string) *goquery.Selection {
	return QueryAll(root, selector).First()
}

// Attr returns the value of an attribute on the first element of sel.
func Attr(sel *goquery.Selection, name string) (string, bool) {
	if empty(sel) {
		return "", false
	}
	return sel.Attr(name)
}

// AttrOr is Attr with a fallback for when the attribute (or the element) is missing.
func AttrOr(sel *goquery.Selection, name, fallback string) string {
	value, ok := Attr(sel, name)
	if !ok {
		return fallback
	}
	return value
}

// GetText returns the concatenation of all the text nodes under node,
// no whitespace is inserted between elements.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// Text is GetText for the first node of a selection.
func Text(sel *goquery.Selection) string {
	if empty(sel) {
		return ""
	}
	return GetText(sel.Nodes[0])
}

var (
	hexEntityRegex = regexp.MustCompile(`&#x([0-9a-fA-F]+);`)
	decEntityRegex = regexp.MustCompile(`&#([0-9]+);`)
)

// markupEscapes are the characters that stay escaped after decoding, quotes
// use the named forms.
var markupEscapes = map[rune]string{
	'"':  "&quot;",
	'\'': "&apos;",
	'&':  "&amp;",
	'<':  "&lt;",
	'>':  "&gt;",
}

func decodeNumericEntities(value string) string {
	decode := func(re *regexp.Regexp, base int) func(string) string {
		return func(match string) string {
			digits := re.FindStringSubmatch(match)[1]
			codePoint, err := strconv.ParseInt(digits, base, 32)
			if err != nil {
				return match
			}
			if escaped, ok := markupEscapes[rune(codePoint)]; ok {
				return escaped
			}
			return string(rune(codePoint))
		}
	}
	value = hexEntityRegex.ReplaceAllStringFunc(value, decode(hexEntityRegex, 16))
	return decEntityRegex.ReplaceAllStringFunc(value, decode(decEntityRegex, 10))
}

// InnerHTML renders the children of the first node in sel.
//
// The output is normalized so that it is stable across the escaping choices
// of the renderer: numeric character references are decoded (markup
// characters excepted, quotes become &quot; and &apos;), line endings
// become "\n" and non-breaking spaces are written as "&nbsp;". The renderer
// always writes attributes in key="value" form, so valueless attributes
// (like a bare alt) come out as alt="".
func InnerHTML(sel *goquery.Selection) string {
	if empty(sel) {
		return ""
	}
	var buffer bytes.Buffer
	for child := sel.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		err := html.Render(&buffer, child)
		if err != nil {
			return ""
		}
	}
	out := decodeNumericEntities(buffer.String())
	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")
	return strings.ReplaceAll(out, "\u00a0", "&nbsp;")
}

// HasClass reports whether the first element of sel has className in its
// class list.
func HasClass(sel *goquery.Selection, className string) bool {
	if empty(sel) {
		return false
	}
	return sel.First().HasClass(className)
}

// Matches reports whether the first element of sel matches selector.
func Matches(sel *goquery.Selection, selector string) bool {
	if empty(sel) {
		return false
	}
	return sel.First().Is(selector)
}

// Closest walks up from the first element of sel (inclusive) and returns the
// first element matching selector.
func Closest(sel *goquery.Selection, selector string) *goquery.Selection {
	if empty(sel) {
		return None()
	}
	return sel.First().Closest(selector)
}

// SameNode reports whether both selections start with the same node.
func SameNode(a, b *goquery.Selection) bool {
	if empty(a) || empty(b) {
		return false
	}
	return a.Nodes[0] == b.Nodes[0]
}

// NextElementSibling skips text and comment nodes.
func NextElementSibling(sel *goquery.Selection) *goquery.Selection {
	if empty(sel) {
		return None()
	}
	return sel.First().Next()
}

// PrevElementSibling skips text and comment nodes.
func PrevElementSibling(sel *goquery.Selection) *goquery.Selection {
	if empty(sel) {
		return None()
	}
	return sel.First().Prev()
}

// NextMatchingSibling returns the first following element sibling that
// matches selector.
func NextMatchingSibling(sel *goquery.Selection, selector string) *goquery.Selection {
	next := NextElementSibling(sel)
	for !empty(next) {
		if next.Is(selector) {
			return next
		}
		next = next.Next()
	}
	return None()
}

// Children returns the element children of the first node in sel.
func Children(sel *goquery.Selection) *goquery.Selection {
	if empty(sel) {
		return None()
	}
	return sel.First().Children()
}

// ChildNodes returns every child node (elements, text and comments) of the
// first node in sel.
func ChildNodes(sel *goquery.Selection) []*html.Node {
	if empty(sel) {
		return nil
	}
	var nodes []*html.Node
	for child := sel.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		nodes = append(nodes, child)
	}
	return nodes
}

func IsElement(node *html.Node) bool {
	return node != nil && node.Type == html.ElementNode
}

// IsTag reports whether node is an element with the given (case-insensitive) name.
func IsTag(node *html.Node, name string) bool {
	return IsElement(node) && strings.EqualFold(node.Data, name)
}

// Nth returns the i-th element of sel (or an empty selection when out of range).
func Nth(sel *goquery.Selection, i int) *goquery.Selection {
	if empty(sel) || i < 0 || i >= len(sel.Nodes) {
		return None()
	}
	return sel.Eq(i)
}
