package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sample = `
<div id="root" class="panel  panel-default">
	<ul>
		<li class="item first" data-id="1">one <b>bold</b></li>
		<!-- comment -->
		<li class="item" data-id="2">two</li>
		text between
		<li class="item last">three</li>
	</ul>
	<table class="outer"><tr><td><table class="inner"><tr><td id="deep">x</td></tr></table></td></tr></table>
</div>`

func TestQueries(t *testing.T) {
	doc := Parse(sample)

	items := QueryAll(doc.Selection, "li.item")
	require.Equal(t, 3, items.Length())
	require.Equal(t, "one bold", Text(items))

	require.Equal(t, "two", Text(QueryOne(doc.Selection, "li[data-id='2']")))
	require.Equal(t, 0, QueryAll(nil, "li").Length())
	require.Equal(t, 0, QueryAll(None(), "li").Length())
	require.Equal(t, "", Text(QueryOne(doc.Selection, ".missing")))

	// only descendants are searched, never the root itself
	root := QueryOne(doc.Selection, "#root")
	require.Equal(t, 0, QueryAll(root, "#root").Length())

	value, ok := Attr(QueryOne(doc.Selection, "li.first"), "data-id")
	require.True(t, ok)
	require.Equal(t, "1", value)
	_, ok = Attr(QueryOne(doc.Selection, "li.last"), "data-id")
	require.False(t, ok)
	_, ok = Attr(None(), "data-id")
	require.False(t, ok)
	require.Equal(t, "fallback", AttrOr(None(), "x", "fallback"))
}

func TestTraversal(t *testing.T) {
	doc := Parse(sample)
	first := QueryOne(doc.Selection, "li.first")

	require.True(t, HasClass(first, "first"))
	require.False(t, HasClass(first, "firs"))
	require.True(t, HasClass(QueryOne(doc.Selection, "#root"), "panel-default"))
	require.False(t, HasClass(None(), "item"))

	require.True(t, Matches(first, "li.item"))
	require.False(t, Matches(first, "li.last"))

	second := NextElementSibling(first)
	require.Equal(t, "two", Text(second))
	require.Equal(t, "one bold", Text(PrevElementSibling(second)))
	require.Equal(t, 0, PrevElementSibling(first).Length())
	require.Equal(t, "three", Text(NextMatchingSibling(first, ".last")))
	require.Equal(t, 0, NextMatchingSibling(first, ".nope").Length())

	require.True(t, Closest(first, "li").Is("li.first"), "closest is inclusive of self")
	require.Equal(t, "root", AttrOr(Closest(first, "div"), "id", ""))
	require.Equal(t, 0, Closest(first, "table").Length())

	deep := QueryOne(doc.Selection, "#deep")
	require.True(t, SameNode(Closest(deep, "table"), QueryOne(doc.Selection, "table.inner")))
	require.False(t, SameNode(Closest(deep, "table"), QueryOne(doc.Selection, "table.outer")))

	ul := QueryOne(doc.Selection, "ul")
	require.Equal(t, 3, Children(ul).Length())
	nodes := ChildNodes(ul)
	require.Greater(t, len(nodes), 3)
	elements := 0
	for _, n := range nodes {
		if IsElement(n) {
			elements++
			require.True(t, IsTag(n, "LI"))
		}
	}
	require.Equal(t, 3, elements)

	require.Equal(t, "three", Text(Nth(QueryAll(doc.Selection, "li"), 2)))
	require.Equal(t, 0, Nth(QueryAll(doc.Selection, "li"), 3).Length())
}

func TestInnerHTML(t *testing.T) {
	doc := Parse("<div id=\"a\">it&#39;s <img src=\"x.png\" alt>\r\nnext&nbsp;line</div>")
	require.Equal(
		t,
		"it&apos;s <img src=\"x.png\" alt=\"\"/>\nnext&nbsp;line",
		InnerHTML(QueryOne(doc.Selection, "#a")),
	)
	require.Equal(t, "", InnerHTML(None()))
}

func TestInnerHTMLRoundTrip(t *testing.T) {
	doc := Parse(`<div id="a"><a title="say &quot;hi&quot;" href="/x?a=1&amp;b=2">it's "q" &#x263A;</a></div>`)
	rendered := InnerHTML(QueryOne(doc.Selection, "#a"))
	require.Equal(
		t,
		`<a title="say &quot;hi&quot;" href="/x?a=1&amp;b=2">it&apos;s &quot;q&quot; ☺</a>`,
		rendered,
	)

	reparsed := QueryOne(Parse(rendered).Selection, "a")
	require.Equal(t, `say "hi"`, AttrOr(reparsed, "title", ""))
	require.Equal(t, "/x?a=1&b=2", AttrOr(reparsed, "href", ""))
	require.Equal(t, `it's "q" ☺`, Text(reparsed))
}

func TestParseMalformed(t *testing.T) {
	doc := Parse("<div><p>unclosed <b>bold</div>stray")
	require.Equal(t, "unclosed bold", strings.TrimSpace(Text(QueryOne(doc.Selection, "p"))))
}

func TestDecodeReader(t *testing.T) {
	// "テスト" in shift_jis
	raw := string([]byte{0x83, 0x65, 0x83, 0x58, 0x83, 0x67})
	out, err := ReadString(strings.NewReader(raw), "shift_jis")
	require.NoError(t, err)
	require.Equal(t, "テスト", out)

	out, err = ReadString(strings.NewReader("plain"), "")
	require.NoError(t, err)
	require.Equal(t, "plain", out)

	_, err = ReadString(strings.NewReader("plain"), "not-a-charset")
	require.Error(t, err)
}
