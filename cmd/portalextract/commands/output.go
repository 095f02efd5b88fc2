package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"portalextract/internal/fixture"
	"portalextract/lib/htmlutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// writeRecord prints record in the given format. Records are normalized
// through json first so that yaml output carries the same keys.
func writeRecord(w io.Writer, format string, record any) error {
	switch format {
	case "", formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(record)
	case formatYAML:
		normalized, err := fixture.Normalize(record)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = enc.Encode(normalized)
		if err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q, expected %s or %s", format, formatJSON, formatYAML)
	}
}

// readInput reads a file, or stdin for "-".
func readInput(stdin io.Reader, path, charset string) (string, error) {
	if path == "-" {
		return htmlutil.ReadString(stdin, charset)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return htmlutil.ReadString(f, charset)
}
