package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeWhitespace(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{input: "", expected: ""},
		{input: "   ", expected: ""},
		{input: "a", expected: "a"},
		{input: "  hello \n\t world  ", expected: "hello world"},
		{input: "line1\r\nline2", expected: "line1 line2"},
		{input: "全角　スペース", expected: "全角 スペース"},
		{input: " nbsp ", expected: "nbsp"},
	}

	for _, c := range cases {
		once := NormalizeWhitespace(c.input)
		require.Equal(t, c.expected, once)
		require.Equal(t, once, NormalizeWhitespace(once), "normalizing must be idempotent")
	}
}

func TestExtractFirstQuotedValue(t *testing.T) {
	cases := []struct {
		input    string
		expected string
		found    bool
	}{
		{input: "", found: false},
		{input: "execPopupWindowOpen()", found: false},
		{input: "execPopupWindowOpen('')", found: false},
		{
			input:    "execPopupWindowOpen('/detail?id=1', 'win', 800)",
			expected: "/detail?id=1",
			found:    true,
		},
	}

	for _, c := range cases {
		value, found := ExtractFirstQuotedValue(c.input)
		require.Equal(t, c.found, found, c.input)
		require.Equal(t, c.expected, value, c.input)
	}
}

func TestDigitsToInt(t *testing.T) {
	cases := []struct {
		input    string
		expected int
	}{
		{input: "", expected: 0},
		{input: "none", expected: 0},
		{input: "85点", expected: 85},
		{input: "1,234", expected: 1234},
		{input: "99999999999999999999999", expected: 0},
		{input: AfterSlash("Score: 85/100"), expected: 100},
		{input: AfterSlash("no slash here"), expected: 0},
		{input: AfterSlash("3 / 10 / 2"), expected: 10},
	}

	for _, c := range cases {
		require.Equal(t, c.expected, DigitsToInt(c.input), c.input)
	}
}

func TestLeadingInt(t *testing.T) {
	cases := []struct {
		input    string
		expected int
		ok       bool
	}{
		{input: "3", expected: 3, ok: true},
		{input: " 12回 ", expected: 12, ok: true},
		{input: "第1回", ok: false},
		{input: "-", ok: false},
		{input: "", ok: false},
		{input: "99999999999999999999999点", ok: false},
	}

	for _, c := range cases {
		n, ok := LeadingInt(c.input)
		require.Equal(t, c.ok, ok, c.input)
		require.Equal(t, c.expected, n, c.input)
	}
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "classcontent", NormalizeName(" Class Content\n"))
	require.True(t, MatchName("Mail Sent List", []string{"mailsent"}))
	require.False(t, MatchName("news", []string{"mail"}))
}
