// Package fixture runs the registered routines over captured pages and
// compares the records they produce with the expected ones.
//
// The layout on disk is
//
//	<root>/<portal>/<page>/fixtures/<name>.<ext>
//	<root>/<portal>/<page>/expected/<name>.json
//
// A fixture that should be rejected has an expected/<name>.issues file
// instead, listing one "path: message" line per validation issue.
package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"portalextract/internal/registry"
	"portalextract/internal/validate"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const (
	fixturesDir = "fixtures"
	expectedDir = "expected"

	recordExt = ".json"
	issuesExt = ".issues"
)

type Case struct {
	Portal string
	Page   string
	// Name is the fixture file name without its extension.
	Name     string
	Fixture  string
	Expected string
}

func (c Case) String() string {
	return fmt.Sprintf("%s/%s/%s", c.Portal, c.Page, c.Name)
}

// ExpectsFailure is true for fixtures that must be rejected.
func (c Case) ExpectsFailure() bool {
	return strings.HasSuffix(c.Expected, issuesExt)
}

func visible(entries []os.DirEntry, dirs bool) []os.DirEntry {
	out := []os.DirEntry{}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || e.IsDir() != dirs {
			continue
		}
		out = append(out, e)
	}
	return out
}

func readDir(path string, dirs bool) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	return visible(entries, dirs), nil
}

func expectedFor(pageDir, name string) (string, error) {
	for _, ext := range []string{recordExt, issuesExt} {
		path := filepath.Join(pageDir, expectedDir, name+ext)
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("no expected output for fixture %s in %s", name, pageDir)
}

// Discover lists every fixture under root ordered by portal, page, then
// fixture name. Hidden files are skipped and so are page directories
// without a fixtures directory.
func Discover(root string) ([]Case, error) {
	portals, err := readDir(root, true)
	if err != nil {
		return nil, err
	}

	var out []Case
	for _, portal := range portals {
		pages, err := readDir(filepath.Join(root, portal.Name()), true)
		if err != nil {
			return nil, err
		}
		for _, page := range pages {
			pageDir := filepath.Join(root, portal.Name(), page.Name())
			fixtures, err := readDir(filepath.Join(pageDir, fixturesDir), false)
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}

			for _, f := range fixtures {
				name := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
				expected, err := expectedFor(pageDir, name)
				if err != nil {
					return nil, err
				}
				out = append(out, Case{
					Portal:   portal.Name(),
					Page:     page.Name(),
					Name:     name,
					Fixture:  filepath.Join(pageDir, fixturesDir, f.Name()),
					Expected: expected,
				})
			}
		}
	}
	return out, nil
}

type Outcome struct {
	Case Case
	Ok   bool
	// Diff is the difference between the expected and actual output, in
	// cmp.Diff form.
	Diff string
	// Issues are the formatted validation issues, if the record was
	// rejected.
	Issues []string
	// Err is set when the fixture could not be run at all.
	Err error
}

// Summary is a single line description of the outcome.
func (o Outcome) Summary() string {
	switch {
	case o.Err != nil:
		return o.Err.Error()
	case o.Ok:
		return "ok"
	case o.Diff != "":
		return "output differs"
	default:
		return strings.Join(o.Issues, "; ")
	}
}

// FormatIssues renders issues as "path: message" lines.
func FormatIssues(issues []validate.Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.String()
	}
	return out
}

// Normalize round trips a record through encoding/json so that it can be
// compared with decoded expected output.
func Normalize(record any) (any, error) {
	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var out any
	err = json.Unmarshal(encoded, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func readExpectedIssues(path string) ([]string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, line := range strings.Split(string(contents), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

func readExpectedRecord(path string) (any, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out any
	err = json.Unmarshal(contents, &out)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}

var equateEmpty = cmpopts.EquateEmpty()

// Run extracts the fixture with the routine registered for its page and
// compares the result with the expected output.
func Run(ctx context.Context, reg *registry.Registry, c Case) Outcome {
	out := Outcome{Case: c}

	input, err := os.ReadFile(c.Fixture)
	if err != nil {
		out.Err = err
		return out
	}

	record, err := reg.Run(ctx, c.Portal, c.Page, string(input))
	issues, invalid := validate.IssuesOf(err)
	if err != nil && !invalid {
		out.Err = err
		return out
	}
	if invalid {
		out.Issues = FormatIssues(issues)
	}

	if c.ExpectsFailure() {
		expected, err := readExpectedIssues(c.Expected)
		if err != nil {
			out.Err = err
			return out
		}
		out.Diff = cmp.Diff(expected, out.Issues, equateEmpty)
		out.Ok = invalid && out.Diff == ""
		return out
	}

	if invalid {
		return out
	}

	expected, err := readExpectedRecord(c.Expected)
	if err != nil {
		out.Err = err
		return out
	}
	actual, err := Normalize(record)
	if err != nil {
		out.Err = err
		return out
	}
	out.Diff = cmp.Diff(expected, actual, equateEmpty)
	out.Ok = out.Diff == ""
	return out
}

// RunAll runs every case in order.
func RunAll(ctx context.Context, reg *registry.Registry, cases []Case) []Outcome {
	out := make([]Outcome, len(cases))
	for i, c := range cases {
		out[i] = Run(ctx, reg, c)
	}
	return out
}
