package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portalextract/internal/registry"
	"portalextract/internal/telemetry"
	"portalextract/internal/validate"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newHandler() http.Handler {
	return NewHandler(registry.Default(telemetry.SlogAPI{}), telemetry.SlogAPI{})
}

func TestPages(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/pages", nil)
	rr := httptest.NewRecorder()
	newHandler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var pages []PageInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pages))
	require.Len(t, pages, 22)
	require.Equal(t, PageInfo{Portal: "albo", Page: "calendar", Input: "json"}, pages[0])
}

func TestExtract(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		body   string
		status int
		check  func(t *testing.T, body []byte)
	}{
		{
			name:   "accepted",
			path:   "/v1/manabo/entry",
			body:   `{"success": true, "html": "", "error": null, "message": "ok", "data": {"is_accepted": 1}}`,
			status: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var record map[string]any
				require.NoError(t, json.Unmarshal(body, &record))
				require.Equal(t, true, record["success"])
			},
		},
		{
			name:   "invalid",
			path:   "/v1/manabo/entry",
			body:   `{"success": true, "html": null, "error": null, "message": null}`,
			status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, body []byte) {
				var res ErrorResponse
				require.NoError(t, json.Unmarshal(body, &res))
				expected := []validate.Issue{{Path: "data", Message: `property "data" is missing`}}
				require.Empty(t, cmp.Diff(expected, res.Issues))
			},
		},
		{
			name:   "unknown page",
			path:   "/v1/manabo/timetabel",
			body:   "",
			status: http.StatusNotFound,
			check: func(t *testing.T, body []byte) {
				var res ErrorResponse
				require.NoError(t, json.Unmarshal(body, &res))
				require.Equal(t, "manabo/timetable", res.Suggestion)
			},
		},
		{
			name:   "unknown charset",
			path:   "/v1/manabo/news?charset=klingon",
			body:   "",
			status: http.StatusBadRequest,
			check: func(t *testing.T, body []byte) {
				var res ErrorResponse
				require.NoError(t, json.Unmarshal(body, &res))
				require.Contains(t, res.Error, "unknown charset")
			},
		},
	}

	handler := newHandler()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, c.path, strings.NewReader(c.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, c.status, rr.Code, rr.Body.String())
			c.check(t, rr.Body.Bytes())
		})
	}
}
