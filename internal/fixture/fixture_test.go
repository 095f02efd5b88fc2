package fixture

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"portalextract/internal/registry"
	"portalextract/internal/telemetry"

	"github.com/stretchr/testify/require"
)

const testdataRoot = "../../testdata"

// every page in the catalogue has at least one fixture
func TestCatalogueIsCovered(t *testing.T) {
	cases, err := Discover(testdataRoot)
	require.NoError(t, err)

	covered := map[string]bool{}
	for _, c := range cases {
		covered[c.Portal+"/"+c.Page] = true
	}
	for _, page := range registry.Catalogue() {
		require.True(t, covered[page.Key()], "no fixture for %s", page.Key())
	}
}

func TestFixtures(t *testing.T) {
	cases, err := Discover(testdataRoot)
	require.NoError(t, err)
	require.NotEmpty(t, cases)

	reg := registry.Default(telemetry.SlogAPI{})
	for _, c := range cases {
		t.Run(c.String(), func(t *testing.T) {
			outcome := Run(context.Background(), reg, c)
			require.NoError(t, outcome.Err)
			require.True(t, outcome.Ok, "%s\n%s", outcome.Diff, strings.Join(outcome.Issues, "\n"))
		})
	}
}

func write(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "manabo", "news", "fixtures", "b.html"), "")
	write(t, filepath.Join(root, "manabo", "news", "fixtures", "a.html"), "")
	write(t, filepath.Join(root, "manabo", "news", "fixtures", ".hidden"), "")
	write(t, filepath.Join(root, "manabo", "news", "expected", "a.json"), "{}")
	write(t, filepath.Join(root, "manabo", "news", "expected", "b.issues"), "")
	write(t, filepath.Join(root, "albo", "calendar", "fixtures", "x.json"), "")
	write(t, filepath.Join(root, "albo", "calendar", "expected", "x.json"), "{}")
	// a page directory without fixtures
	require.NoError(t, os.MkdirAll(filepath.Join(root, "albo", "personal"), 0755))

	cases, err := Discover(root)
	require.NoError(t, err)

	names := []string{}
	for _, c := range cases {
		names = append(names, c.String())
	}
	require.Equal(t, []string{"albo/calendar/x", "manabo/news/a", "manabo/news/b"}, names)
	require.False(t, cases[1].ExpectsFailure())
	require.True(t, cases[2].ExpectsFailure())
}

func TestDiscoverMissingExpected(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "manabo", "news", "fixtures", "a.html"), "")

	_, err := Discover(root)
	require.ErrorContains(t, err, "no expected output for fixture a")
}

func TestRunOutcomes(t *testing.T) {
	root := t.TempDir()
	pageDir := filepath.Join(root, "manabo", "entry")

	write(t, filepath.Join(pageDir, "fixtures", "accepted.json"),
		`{"success": true, "html": "", "error": null, "message": "ok", "data": {"is_accepted": 1}}`)
	write(t, filepath.Join(pageDir, "expected", "accepted.json"),
		`{"success": true, "html": "", "error": null, "message": "ok", "data": {"is_accepted": 1}}`)

	write(t, filepath.Join(pageDir, "fixtures", "differs.json"),
		`{"success": true, "html": "", "error": null, "message": "ok", "data": {"is_accepted": 1}}`)
	write(t, filepath.Join(pageDir, "expected", "differs.json"),
		`{"success": false, "html": "", "error": null, "message": "ok", "data": {"is_accepted": 1}}`)

	write(t, filepath.Join(pageDir, "fixtures", "broken.json"),
		`{"success": true, "html": null, "error": null, "message": null}`)
	write(t, filepath.Join(pageDir, "expected", "broken.issues"), "data: property \"data\" is missing\n")

	cases, err := Discover(root)
	require.NoError(t, err)
	require.Len(t, cases, 3)

	reg := registry.Default(telemetry.SlogAPI{})
	outcomes := map[string]Outcome{}
	for _, o := range RunAll(context.Background(), reg, cases) {
		outcomes[o.Case.Name] = o
	}

	require.True(t, outcomes["accepted"].Ok, outcomes["accepted"].Diff)
	require.Equal(t, "ok", outcomes["accepted"].Summary())

	require.False(t, outcomes["differs"].Ok)
	require.NotEmpty(t, outcomes["differs"].Diff)
	require.Equal(t, "output differs", outcomes["differs"].Summary())

	broken := outcomes["broken"]
	require.NoError(t, broken.Err)
	require.Equal(t, []string{`data: property "data" is missing`}, broken.Issues)
	require.True(t, broken.Ok, broken.Diff)
}
