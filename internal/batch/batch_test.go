package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"portalextract/internal/registry"
	"portalextract/internal/store"
	"portalextract/internal/telemetry"

	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	db, err := store.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	valid, err := os.ReadFile("../../testdata/albo/calendar/fixtures/semester.json")
	require.NoError(t, err)

	files := []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.json"),
		filepath.Join(dir, "c.json"),
		filepath.Join(dir, "missing.json"),
	}
	require.NoError(t, os.WriteFile(files[0], valid, 0644))
	require.NoError(t, os.WriteFile(files[1], valid, 0644))
	require.NoError(t, os.WriteFile(files[2], []byte(`{"is_successful": true}`), 0644))

	var done atomic.Int64
	reg := registry.Default(telemetry.SlogAPI{})
	summary, err := Run(ctx, telemetry.SlogAPI{}, reg, db, "albo", "calendar", files, Options{
		Workers: 3,
		OnDone: func(Item) {
			done.Add(1)
		},
	})
	require.NoError(t, err)
	require.EqualValues(t, 4, done.Load())
	require.Equal(t, 4, summary.Total)
	require.Equal(t, 2, summary.Ok)
	require.Equal(t, 1, summary.Invalid)
	require.Equal(t, 1, summary.Failed)

	runs, err := db.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, summary.Run.Id, runs[0].Id)
	require.Equal(t, "calendar", runs[0].Page)

	results, err := db.Results(ctx, summary.Run.Id)
	require.NoError(t, err)
	require.Len(t, results, 4)

	require.Equal(t, "a.json", results[0].Source)
	require.True(t, results[0].Ok)
	require.Empty(t, results[0].Issues)
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(results[0].Record), &record))
	require.Equal(t, true, record["is_successful"])

	require.Equal(t, "c.json", results[2].Source)
	require.False(t, results[2].Ok)
	require.Empty(t, results[2].Record)
	require.Contains(t, results[2].Issues, `code: property "code" is missing`)

	require.Equal(t, "missing.json", results[3].Source)
	require.False(t, results[3].Ok)
	require.Len(t, results[3].Issues, 1)
	require.Contains(t, results[3].Issues[0], "missing.json")
}

type brokenCounter struct {
	telemetry.SlogAPI
	broken atomic.Int64
}

func (b *brokenCounter) ReportBroken(id string, params ...any) {
	b.broken.Add(1)
}

func TestRunStopsAfterStoreFailure(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)

	valid, err := os.ReadFile("../../testdata/albo/calendar/fixtures/semester.json")
	require.NoError(t, err)
	dir := t.TempDir()
	files := []string{}
	for _, name := range []string{"a.json", "b.json", "c.json", "d.json", "e.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, valid, 0644))
		files = append(files, path)
	}

	tel := &brokenCounter{}
	reg := registry.Default(telemetry.SlogAPI{})
	summary, err := Run(context.Background(), tel, reg, db, "albo", "calendar", files, Options{
		Workers: 1,
		OnDone: func(Item) {
			// every later write fails
			db.Close()
		},
	})
	require.ErrorContains(t, err, "store b.json")
	require.EqualValues(t, 1, tel.broken.Load())
	require.Equal(t, 1, summary.Ok)
}

func TestRunUnknownPage(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	reg := registry.Default(telemetry.SlogAPI{})
	_, err = Run(context.Background(), telemetry.SlogAPI{}, reg, db, "albo", "calender", nil, Options{})
	var notFound *registry.NotFoundError
	require.ErrorAs(t, err, &notFound)

	runs, err := db.Runs(context.Background())
	require.NoError(t, err)
	require.Empty(t, runs)
}

func TestReadFileCharset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	// "時間割" in shift_jis
	require.NoError(t, os.WriteFile(path, []byte{0x8e, 0x9e, 0x8a, 0xd4, 0x8a, 0x84}, 0644))

	text, err := readFile(path, "shift_jis")
	require.NoError(t, err)
	require.Equal(t, "時間割", text)
}
