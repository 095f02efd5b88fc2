package extract

import (
	"portalextract/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Outcome is what a Classifier decides a row represents.
type Outcome int

const (
	// Skip rows contribute nothing.
	Skip Outcome = iota
	// VariantA is the primary record shape signalled by VariantAttr.
	VariantA
	// VariantB is the primary record shape used otherwise.
	VariantB
	// Continuation rows hold extra details for the record before them.
	Continuation
)

func (o Outcome) String() string {
	switch o {
	case VariantA:
		return "variant-a"
	case VariantB:
		return "variant-b"
	case Continuation:
		return "continuation"
	default:
		return "skip"
	}
}

// Classifier decides the shape of a row from structural cues, checked in
// this order:
//
//  1. ContinuationClass on the row itself makes it a Continuation.
//  2. VariantAttr on any cell picks VariantA over VariantB.
//  3. A row where none of the Primary selectors match is a Skip, whichever
//     variant step 2 picked.
type Classifier struct {
	ContinuationClass string
	Cell              string
	VariantAttr       string
	Primary           []string
}

func (c Classifier) cellSelector() string {
	if c.Cell == "" {
		return "td"
	}
	return c.Cell
}

// Classify always returns exactly one Outcome.
func (c Classifier) Classify(row *goquery.Selection) Outcome {
	if row == nil || row.Length() == 0 {
		return Skip
	}
	if c.ContinuationClass != "" && htmlutil.HasClass(row, c.ContinuationClass) {
		return Continuation
	}

	variant := VariantB
	if c.VariantAttr != "" {
		htmlutil.QueryAll(row, c.cellSelector()).EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			if _, ok := cell.Attr(c.VariantAttr); ok {
				variant = VariantA
				return false
			}
			return true
		})
	}

	if c.Title(row).Length() == 0 {
		return Skip
	}
	return variant
}

// Title returns the first match of the Primary selectors (in priority order).
func (c Classifier) Title(row *goquery.Selection) *goquery.Selection {
	for _, selector := range c.Primary {
		match := htmlutil.QueryOne(row, selector)
		if match.Length() > 0 {
			return match
		}
	}
	return htmlutil.None()
}

// VariantHandlers build the records for each outcome.
//
// A and B return the record for a primary row, Continue receives the record
// built for the closest preceding primary row so it can fill it in.
type VariantHandlers struct {
	A        func(row *goquery.Selection) map[string]any
	B        func(row *goquery.Selection) map[string]any
	Continue func(previous map[string]any, row *goquery.Selection)
}

// WalkVariants classifies each row and builds the list of records.
// Continuation rows that come before any primary row are dropped.
func WalkVariants(rows *goquery.Selection, c Classifier, h VariantHandlers) []any {
	out := []any{}
	if rows == nil {
		return out
	}
	var previous map[string]any
	rows.Each(func(_ int, row *goquery.Selection) {
		switch c.Classify(row) {
		case VariantA:
			previous = h.A(row)
			out = append(out, previous)
		case VariantB:
			previous = h.B(row)
			out = append(out, previous)
		case Continuation:
			if previous != nil && h.Continue != nil {
				h.Continue(previous, row)
			}
		}
	})
	return out
}
