package extract

import (
	"encoding/json"

	"portalextract/lib/htmlutil"
	"portalextract/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// The helpers below build the plain values (string, nil, []any,
// map[string]any) handed over to validation.

// Nullable turns an empty string into nil.
func Nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Text is the normalized text of the first node in sel.
func Text(sel *goquery.Selection) string {
	return textutil.NormalizeWhitespace(htmlutil.Text(sel))
}

// TextOf is Text of the first match of selector under root.
func TextOf(root *goquery.Selection, selector string) string {
	return Text(htmlutil.QueryOne(root, selector))
}

// NullableText is Text, but nil when empty.
func NullableText(sel *goquery.Selection) any {
	return Nullable(Text(sel))
}

// AttrOrEmpty is the attribute value or "" when it (or the element) is
// missing.
func AttrOrEmpty(sel *goquery.Selection, name string) string {
	return htmlutil.AttrOr(sel, name, "")
}

// AttrOrNil is the attribute value or nil when it (or the element) is
// missing. An attribute that is present but empty stays "".
func AttrOrNil(sel *goquery.Selection, name string) any {
	value, ok := htmlutil.Attr(sel, name)
	if !ok {
		return nil
	}
	return value
}

// NonEmptyTexts returns the normalized text of each element in sel, leaving
// out the empty ones.
func NonEmptyTexts(sel *goquery.Selection) []any {
	out := []any{}
	if sel == nil {
		return out
	}
	sel.Each(func(_ int, s *goquery.Selection) {
		text := Text(s)
		if text != "" {
			out = append(out, text)
		}
	})
	return out
}

// Strings converts a []string into the []any validation expects.
func Strings(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// JSON decodes input into plain values. Input that is not valid JSON
// decodes to nil, which is then rejected by validation like any other
// missing value.
func JSON(input string) any {
	var value any
	err := json.Unmarshal([]byte(input), &value)
	if err != nil {
		return nil
	}
	return value
}
