package htmlutil

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// CharsetAuto sniffs the encoding from BOMs and <meta> declarations.
const CharsetAuto = "auto"

// DecodeReader wraps r so that it yields utf-8.
//
// label may be empty (input is already utf-8), CharsetAuto, or any label
// known to the WHATWG encoding index (ex. "shift_jis", "euc-jp").
func DecodeReader(r io.Reader, label string) (io.Reader, error) {
	label = strings.TrimSpace(strings.ToLower(label))
	switch label {
	case "", "utf-8", "utf8":
		return r, nil
	case CharsetAuto:
		return charset.NewReader(r, "")
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", label, err)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// ReadString reads all of r after decoding it with DecodeReader.
func ReadString(r io.Reader, label string) (string, error) {
	decoded, err := DecodeReader(r, label)
	if err != nil {
		return "", err
	}
	buff, err := io.ReadAll(decoded)
	if err != nil {
		return "", err
	}
	return string(buff), nil
}
