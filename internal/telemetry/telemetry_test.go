package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	ids []string
}

func (r *recorder) ReportBroken(id string, params ...any)  { r.ids = append(r.ids, id) }
func (r *recorder) ReportWarning(id string, params ...any) { r.ids = append(r.ids, id) }
func (r *recorder) ReportDebug(msg string, params ...any)  { r.ids = append(r.ids, msg) }
func (r *recorder) ReportCount(id string, count int64)     { r.ids = append(r.ids, id) }

func TestScopedAPI(t *testing.T) {
	inner := &recorder{}
	api := NewScopedAPI("batch", NewScopedAPI("cli", inner))

	api.ReportBroken("store")
	api.ReportWarning("run")
	api.ReportDebug("lookup")
	api.ReportCount("pages", 3)

	require.Equal(t, []string{
		"cli: batch: store",
		"cli: batch: run",
		"cli: batch: lookup",
		"cli: batch: pages",
	}, inner.ids)
}

func TestSlogAPI(t *testing.T) {
	var buff bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buff, nil)))
	defer slog.SetDefault(prev)

	SlogAPI{}.ReportWarning("registry.run", "manabo/news", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buff.Bytes(), &entry))
	require.Equal(t, "WARN", entry["level"])
	require.Equal(t, "registry.run", entry["id"])
	require.Equal(t, "manabo/news", entry["params.0"])
	require.EqualValues(t, 2, entry["params.1"])
}
