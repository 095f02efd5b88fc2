// Package httpapi exposes the registry over http.
//
//	GET  /v1/pages             every registered page
//	POST /v1/{portal}/{page}   extract the request body, ?charset= decodes it first
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"portalextract/internal/registry"
	"portalextract/internal/telemetry"
	"portalextract/internal/validate"
	"portalextract/lib/htmlutil"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const report_httpapi_encode = "httpapi.encode"

// MaxBodyBytes bounds the size of a single page.
const MaxBodyBytes = 16 << 20

type PageInfo struct {
	Portal string `json:"portal"`
	Page   string `json:"page"`
	Input  string `json:"input"`
}

type ErrorResponse struct {
	Error      string           `json:"error"`
	Suggestion string           `json:"suggestion,omitempty"`
	Issues     []validate.Issue `json:"issues,omitempty"`
}

type server struct {
	reg *registry.Registry
	tel telemetry.API
}

func NewHandler(reg *registry.Registry, tel telemetry.API) http.Handler {
	s := server{reg: reg, tel: tel}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/v1/pages", s.pages)
	r.Post("/v1/{portal}/{page}", s.extract)
	return r
}

func (s server) writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		s.tel.ReportBroken(report_httpapi_encode, err)
	}
}

func (s server) pages(w http.ResponseWriter, r *http.Request) {
	out := []PageInfo{}
	for _, p := range s.reg.Pages() {
		out = append(out, PageInfo{Portal: p.Portal, Page: p.Name, Input: string(p.Input)})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s server) extract(w http.ResponseWriter, r *http.Request) {
	portal := chi.URLParam(r, "portal")
	page := chi.URLParam(r, "page")

	input, err := htmlutil.ReadString(
		http.MaxBytesReader(w, r.Body, MaxBodyBytes),
		r.URL.Query().Get("charset"),
	)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	record, err := s.reg.Run(r.Context(), portal, page, input)
	if err == nil {
		s.writeJSON(w, http.StatusOK, record)
		return
	}

	var notFound *registry.NotFoundError
	if errors.As(err, &notFound) {
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:      err.Error(),
			Suggestion: notFound.Suggestion,
		})
		return
	}
	if issues, ok := validate.IssuesOf(err); ok {
		s.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  err.Error(),
			Issues: issues,
		})
		return
	}
	s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}
