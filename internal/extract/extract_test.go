package extract

import (
	"testing"

	"portalextract/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestWalkRowsGroups(t *testing.T) {
	doc := htmlutil.Parse(`
<table><tbody>
	<tr><td rowspan="2">Page 1</td><td>1</td><td>a</td></tr>
	<tr><td>2</td><td>b</td></tr>
	<tr><td>Page 2</td><td>3</td><td>c</td></tr>
	<tr><td rowspan="">4</td><td>d</td></tr>
	<tr><td>5</td></tr>
</tbody></table>`)

	rows := htmlutil.QueryAll(doc.Selection, "tbody tr")
	out := WalkRows(rows, GroupRule{Columns: 3}, func(ctx *Context, cells Cells) any {
		return []string{ctx.Group, cells.Text(0), cells.Text(1)}
	})

	expected := []any{
		[]string{"Page 1", "1", "a"},
		[]string{"Page 1", "2", "b"},
		// no rowspan, but three cells means the group cell is present
		[]string{"Page 2", "3", "c"},
		// an empty rowspan does not count as a marker
		[]string{"Page 2", "4", "d"},
		// missing cells degrade to empty strings
		[]string{"Page 2", "5", ""},
	}
	if diff := cmp.Diff(expected, out); diff != "" {
		t.Fatal(diff)
	}

	require.Empty(t, WalkRows(nil, GroupRule{}, func(*Context, Cells) any { return nil }))
}

func TestWalkRowsContextIsPerCall(t *testing.T) {
	doc := htmlutil.Parse(`<table>
		<tr><td rowspan="2">G</td><td>x</td></tr>
		<tr><td>y</td></tr>
	</table>`)
	rows := htmlutil.QueryAll(doc.Selection, "tr")

	for i := 0; i < 2; i++ {
		groups := []string{}
		WalkRows(rows, GroupRule{}, func(ctx *Context, cells Cells) any {
			groups = append(groups, ctx.Group)
			return nil
		})
		require.Equal(t, []string{"G", "G"}, groups)
	}

	// a fresh walk over rows without a group cell starts with no group
	WalkRows(htmlutil.QueryAll(doc.Selection, "tr").Slice(1, 2), GroupRule{}, func(ctx *Context, cells Cells) any {
		require.Equal(t, "", ctx.Group)
		return nil
	})
}

func TestCellsSubExtractors(t *testing.T) {
	doc := htmlutil.Parse(`<table><tr>
		<td><a href="/x">link</a></td>
		<td><input name="a.hdnCode" value="42"></td>
		<td><img src="/icon.png" alt="ok"></td>
	</tr></table>`)
	cells := NewCells(htmlutil.QueryOne(doc.Selection, "tr"), "td")

	require.Equal(t, 3, cells.Len())
	require.Equal(t, "/x", htmlutil.AttrOr(cells.Anchor(0), "href", ""))
	value, ok := cells.InputValue(1, `input[name$=".hdnCode"]`)
	require.True(t, ok)
	require.Equal(t, "42", value)
	alt, ok := cells.ImageAttr(2, "alt")
	require.True(t, ok)
	require.Equal(t, "ok", alt)

	_, ok = cells.ImageAttr(5, "alt")
	require.False(t, ok)
	require.Equal(t, "", cells.Text(10))
}

func TestHeadingsDispatch(t *testing.T) {
	doc := htmlutil.Parse(`<table>
		<tr><th> Known </th><td>first</td></tr>
		<tr><th>Unknown</th><td>ignored</td></tr>
		<tr><th>Other   heading</th><td>second</td></tr>
		<tr><td>no heading</td></tr>
	</table>`)

	var known, other string
	Headings{
		"Known":         func(cell *goquery.Selection) { known = Text(cell) },
		"Other heading": func(cell *goquery.Selection) { other = Text(cell) },
	}.Dispatch(htmlutil.QueryAll(doc.Selection, "tr"), "th", "td")

	require.Equal(t, "first", known)
	require.Equal(t, "second", other)
}

func TestSiblingRun(t *testing.T) {
	cases := []struct {
		name     string
		markup   string
		policy   BreakPolicy
		expected string
	}{
		{
			name:     "stop at break",
			markup:   `<p><b>Label</b> value text<br>ignored</p>`,
			policy:   StopAtBreak,
			expected: "value text",
		},
		{
			name:     "break as space",
			markup:   `<p><b>Label</b> value<br>continues <i>here</i></p>`,
			policy:   BreakAsSpace,
			expected: "value continues here",
		},
		{
			name:     "stop at next marker",
			markup:   `<p><b>Label</b> first <b>Next</b> second</p>`,
			policy:   BreakAsSpace,
			expected: "first",
		},
		{
			name:     "inline elements and comments",
			markup:   `<p><b>Label</b>a<span>b</span><!-- c -->d</p>`,
			policy:   StopAtBreak,
			expected: "a b d",
		},
		{
			name:     "nothing after marker",
			markup:   `<p><b>Label</b></p>`,
			policy:   StopAtBreak,
			expected: "",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			doc := htmlutil.Parse(c.markup)
			require.Equal(t, c.expected, SiblingRun(htmlutil.QueryOne(doc.Selection, "b"), c.policy))
		})
	}

	require.Equal(t, "", SiblingRun(htmlutil.None(), StopAtBreak))
}

func TestCollectTextExcluding(t *testing.T) {
	doc := htmlutil.Parse(`<div id="d"><img src="x"><b>Sender</b>
		2024/04/01 10:00 <a href="#">reply</a><script>var x = 1;</script></div>`)
	root := htmlutil.QueryOne(doc.Selection, "#d")

	require.Equal(t, "Sender 2024/04/01 10:00", CollectTextExcluding(root, ExcludeTags("a", "script")))
	require.Equal(t, "2024/04/01 10:00", CollectTextExcluding(root, ExcludeTags("a", "script", "b")))
	require.Equal(t, "Sender 2024/04/01 10:00 reply var x = 1;", CollectTextExcluding(root, nil))
}

const variantTable = `<table class="t"><tbody>
	<tr><td><img></td><td><a class="title">report one</a></td><td>period</td></tr>
	<tr class="toggle-area"><td colspan="3">details one</td></tr>
	<tr><td><img></td><td colspan="2"><a class="title">file two</a></td></tr>
	<tr><td></td><td colspan="2"><b>label three</b></td></tr>
	<tr><td colspan="3"></td></tr>
	<tr><td>nothing here</td></tr>
	<tr class="toggle-area"><td>details three</td></tr>
</tbody></table>`

var testClassifier = Classifier{
	ContinuationClass: "toggle-area",
	VariantAttr:       "colspan",
	Primary:           []string{"a.title", "b"},
}

func TestClassifyIsTotal(t *testing.T) {
	doc := htmlutil.Parse(variantTable)
	rows := htmlutil.QueryAll(doc.Selection, "tbody tr")

	outcomes := []Outcome{}
	rows.Each(func(_ int, row *goquery.Selection) {
		outcomes = append(outcomes, testClassifier.Classify(row))
	})
	require.Equal(t, []Outcome{
		VariantB,
		Continuation,
		VariantA,
		VariantA,
		Skip,
		Skip,
		Continuation,
	}, outcomes)
	require.Equal(t, Skip, testClassifier.Classify(htmlutil.None()))
}

func TestWalkVariants(t *testing.T) {
	doc := htmlutil.Parse(variantTable)
	rows := htmlutil.QueryAll(doc.Selection, "tbody tr")

	build := func(kind string) func(row *goquery.Selection) map[string]any {
		return func(row *goquery.Selection) map[string]any {
			return map[string]any{
				"kind":  kind,
				"title": Text(testClassifier.Title(row)),
			}
		}
	}
	out := WalkVariants(rows, testClassifier, VariantHandlers{
		A: build("a"),
		B: build("b"),
		Continue: func(previous map[string]any, row *goquery.Selection) {
			previous["details"] = Text(row)
		},
	})

	expected := []any{
		map[string]any{"kind": "b", "title": "report one", "details": "details one"},
		map[string]any{"kind": "a", "title": "file two"},
		map[string]any{"kind": "a", "title": "label three", "details": "details three"},
	}
	if diff := cmp.Diff(expected, out); diff != "" {
		t.Fatal(diff)
	}

	// a leading continuation row has nothing to attach to
	lone := htmlutil.Parse(`<table><tr class="toggle-area"><td>x</td></tr></table>`)
	require.Empty(t, WalkVariants(htmlutil.QueryAll(lone.Selection, "tr"), testClassifier, VariantHandlers{
		Continue: func(map[string]any, *goquery.Selection) { t.Fatal("unexpected continuation") },
	}))
}

func TestValues(t *testing.T) {
	doc := htmlutil.Parse(`<ul><li data-x="">a</li><li> </li><li>b  c</li></ul>`)

	require.Nil(t, Nullable(""))
	require.Equal(t, "x", Nullable("x"))
	require.Equal(t, []any{"a", "b c"}, NonEmptyTexts(htmlutil.QueryAll(doc.Selection, "li")))
	require.Equal(t, "", AttrOrNil(htmlutil.QueryOne(doc.Selection, "li"), "data-x"))
	require.Nil(t, AttrOrNil(htmlutil.QueryOne(doc.Selection, "li"), "data-y"))
	require.Nil(t, NullableText(htmlutil.QueryOne(doc.Selection, "p")))
	require.Equal(t, "b c", TextOf(doc.Selection, "li:nth-child(3)"))
	require.Equal(t, []any{"x", "y"}, Strings([]string{"x", "y"}))

	require.Nil(t, JSON(`{"a":`))
	require.Nil(t, JSON(""))
	require.Equal(t, map[string]any{"a": float64(1), "b": []any{"x"}}, JSON(`{"a": 1, "b": ["x"]}`))
}
