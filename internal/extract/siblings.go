package extract

import (
	"strings"

	"portalextract/lib/htmlutil"
	"portalextract/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// BreakPolicy decides what a <br> means to a sibling run.
type BreakPolicy int

const (
	// StopAtBreak ends the run at the first <br>.
	StopAtBreak BreakPolicy = iota
	// BreakAsSpace treats <br> as a space, for values that wrap visually.
	BreakAsSpace
)

// SiblingRun collects the text that follows marker up to (but excluding)
// the next boundary: a <br> under StopAtBreak, or another element with the
// same tag as marker.
func SiblingRun(marker *goquery.Selection, policy BreakPolicy) string {
	if marker == nil || marker.Length() == 0 {
		return ""
	}
	start := marker.Nodes[0]

	fragments := []string{}
	for node := start.NextSibling; node != nil; node = node.NextSibling {
		switch node.Type {
		case html.TextNode:
			fragments = append(fragments, node.Data)
		case html.ElementNode:
			if htmlutil.IsTag(node, "br") {
				if policy == StopAtBreak {
					return joinFragments(fragments)
				}
				fragments = append(fragments, " ")
				continue
			}
			if htmlutil.IsTag(node, start.Data) {
				return joinFragments(fragments)
			}
			fragments = append(fragments, htmlutil.GetText(node))
		}
	}
	return joinFragments(fragments)
}

func joinFragments(fragments []string) string {
	return textutil.NormalizeWhitespace(strings.Join(fragments, " "))
}

// CollectTextExcluding joins the text of every child node of parent that is
// not matched by exclude.
func CollectTextExcluding(parent *goquery.Selection, exclude func(node *html.Node) bool) string {
	fragments := []string{}
	for _, node := range htmlutil.ChildNodes(parent) {
		if exclude != nil && exclude(node) {
			continue
		}
		fragments = append(fragments, htmlutil.GetText(node))
	}
	return joinFragments(fragments)
}

// ExcludeTags matches elements with any of the given tag names.
func ExcludeTags(names ...string) func(node *html.Node) bool {
	return func(node *html.Node) bool {
		for _, name := range names {
			if htmlutil.IsTag(node, name) {
				return true
			}
		}
		return false
	}
}
