// Package extract holds the generic algorithms the page routines are built
// out of: positional table walks, heading-keyed dispatch, sibling runs and
// row variant classification.
//
// Every function here is a pure function of the (read-only) node tree it is
// given, state that needs to be carried between rows lives in a Context that
// is created for a single walk and thrown away afterwards.
package extract

import (
	"portalextract/lib/htmlutil"
	"portalextract/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// Context is the state carried while walking the rows of a single table.
type Context struct {
	// Group is the label of the most recent group row, rows that omit the
	// merged group cell inherit it.
	Group string
	// Row is the index of the current row.
	Row int
}

// Cells gives positional access to the cells of a row. Indexes are relative
// to Offset, so that rows with and without a leading group cell can be read
// with the same column layout.
type Cells struct {
	sel    *goquery.Selection
	Offset int
}

func NewCells(row *goquery.Selection, selector string) Cells {
	return Cells{sel: htmlutil.QueryAll(row, selector)}
}

// Len is the number of cells, ignoring Offset.
func (c Cells) Len() int {
	if c.sel == nil {
		return 0
	}
	return c.sel.Length()
}

// Raw returns the cell at an absolute position.
func (c Cells) Raw(i int) *goquery.Selection {
	return htmlutil.Nth(c.sel, i)
}

// At returns the cell at column i, missing cells are empty selections.
func (c Cells) At(i int) *goquery.Selection {
	return c.Raw(c.Offset + i)
}

// Text returns the normalized text of column i.
func (c Cells) Text(i int) string {
	return textutil.NormalizeWhitespace(htmlutil.Text(c.At(i)))
}

// Anchor returns the first anchor in column i.
func (c Cells) Anchor(i int) *goquery.Selection {
	return htmlutil.QueryOne(c.At(i), "a")
}

// InputValue returns the value of the first input matching selector in
// column i.
func (c Cells) InputValue(i int, selector string) (string, bool) {
	return htmlutil.Attr(htmlutil.QueryOne(c.At(i), selector), "value")
}

// ImageAttr returns an attribute of the first image in column i.
func (c Cells) ImageAttr(i int, name string) (string, bool) {
	return htmlutil.Attr(htmlutil.QueryOne(c.At(i), "img"), name)
}

// GroupRule describes how a group row (a row carrying a merged leading cell)
// is recognized.
type GroupRule struct {
	// Cell selects the cells of a row.
	Cell string
	// Columns is the cell count of a row that carries the group cell. It is
	// the structural fallback for markup where the rowspan attribute was
	// dropped, zero disables the fallback.
	Columns int
	// Disabled turns group detection off entirely.
	Disabled bool
}

func (r GroupRule) cellSelector() string {
	if r.Cell == "" {
		return "td"
	}
	return r.Cell
}

func (r GroupRule) isGroupRow(cells Cells) bool {
	if r.Disabled || cells.Len() == 0 {
		return false
	}
	if span, _ := htmlutil.Attr(cells.Raw(0), "rowspan"); span != "" {
		return true
	}
	return r.Columns > 0 && cells.Len() == r.Columns
}

// WalkRows calls fn for every row in order and collects what it returns.
//
// Group rows update ctx.Group with the text of their first cell and shift
// the cell offset past it, so fn always sees the same column layout.
func WalkRows(rows *goquery.Selection, rule GroupRule, fn func(ctx *Context, cells Cells) any) []any {
	out := []any{}
	ctx := &Context{}
	if rows == nil {
		return out
	}
	rows.Each(func(i int, row *goquery.Selection) {
		ctx.Row = i
		cells := NewCells(row, rule.cellSelector())
		if rule.isGroupRow(cells) {
			ctx.Group = textutil.NormalizeWhitespace(htmlutil.Text(cells.Raw(0)))
			cells.Offset = 1
		}
		out = append(out, fn(ctx, cells))
	})
	return out
}

// MapRows is WalkRows without group detection, it drops nil results so it
// can be used to filter rows as well.
func MapRows(rows *goquery.Selection, cell string, fn func(cells Cells) any) []any {
	out := []any{}
	if rows == nil {
		return out
	}
	rows.Each(func(_ int, row *goquery.Selection) {
		value := fn(NewCells(row, cell))
		if value != nil {
			out = append(out, value)
		}
	})
	return out
}

// Headings maps the normalized text of a row heading to the function that
// consumes the row's value cell.
type Headings map[string]func(cell *goquery.Selection)

// Dispatch looks at each row's heading (selected by heading) and hands the
// value cell (selected by value) to the matching setter. Rows with unknown
// headings are ignored.
func (h Headings) Dispatch(rows *goquery.Selection, heading, value string) {
	if rows == nil {
		return
	}
	rows.Each(func(_ int, row *goquery.Selection) {
		label := textutil.NormalizeWhitespace(htmlutil.Text(htmlutil.QueryOne(row, heading)))
		setter, ok := h[label]
		if !ok {
			return
		}
		setter(htmlutil.QueryOne(row, value))
	})
}
