// Package registry maps (portal, page) pairs to the extraction routine that
// handles them, so that callers outside the scraper packages (the CLI, the
// fixture harness, the http surface) can dispatch on names.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"portalextract/internal/assert"
	"portalextract/internal/telemetry"
	"portalextract/internal/validate"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_registry_run    = "registry.run"
	report_registry_lookup = "registry.lookup"
)

const instrumentationName = "portalextract/registry"

// Input is the kind of document a routine consumes.
type Input string

const (
	HTML Input = "html"
	JSON Input = "json"
)

// Func is a routine with its record type erased.
type Func func(input string) (any, error)

// Adapt erases the record type of a page routine.
func Adapt[T any](fn func(string) (T, error)) Func {
	return func(input string) (any, error) {
		record, err := fn(input)
		if err != nil {
			return nil, err
		}
		return record, nil
	}
}

type Page struct {
	Portal string
	Name   string
	Input  Input
	Parse  Func
}

// Key is the "portal/page" form used in messages and suggestions.
func (p Page) Key() string {
	return key(p.Portal, p.Name)
}

func key(portal, page string) string {
	return portal + "/" + page
}

// NotFoundError is returned for an unregistered (portal, page) pair.
type NotFoundError struct {
	Portal     string
	Page       string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	if e.Suggestion == "" {
		return fmt.Sprintf("unknown page %s", key(e.Portal, e.Page))
	}
	return fmt.Sprintf("unknown page %s, did you mean %s?", key(e.Portal, e.Page), e.Suggestion)
}

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

type Option func(o *options)

func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = provider
	}
}

func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = provider
	}
}

// Registry is read-only once it has been populated, it is safe to Run pages
// from multiple goroutines.
type Registry struct {
	pages       map[string]Page
	tel         telemetry.API
	tracer      trace.Tracer
	extractions metric.Int64Counter
}

func New(tel telemetry.API, opts ...Option) *Registry {
	assert.NotNil(tel)

	o := options{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	extractions, err := o.meterProvider.Meter(instrumentationName).Int64Counter(
		"extractions",
		metric.WithDescription("Extractions run, by portal, page and outcome."),
	)
	if err != nil {
		tel.ReportBroken(report_registry_run, fmt.Errorf("create counter: %w", err))
	}

	return &Registry{
		pages:       map[string]Page{},
		tel:         tel,
		tracer:      o.tracerProvider.Tracer(instrumentationName),
		extractions: extractions,
	}
}

// Register adds a page, registering the same pair twice is a programming
// error and panics.
func (r *Registry) Register(page Page) {
	assert.NotEmptyStr(page.Portal)
	assert.NotEmptyStr(page.Name)
	assert.NotNil(page.Parse)
	assert.Unique(r.pages, page.Key())
	r.pages[page.Key()] = page
}

func (r *Registry) Lookup(portal, page string) (Page, error) {
	found, ok := r.pages[key(portal, page)]
	if ok {
		return found, nil
	}
	suggestion, _ := r.Suggest(portal, page)
	r.tel.ReportDebug(report_registry_lookup, key(portal, page), suggestion)
	return Page{}, &NotFoundError{Portal: portal, Page: page, Suggestion: suggestion}
}

// Pages returns every registered page ordered by portal, then name.
func (r *Registry) Pages() []Page {
	out := make([]Page, 0, len(r.pages))
	for _, p := range r.pages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Portal != out[j].Portal {
			return out[i].Portal < out[j].Portal
		}
		return out[i].Name < out[j].Name
	})
	return out
}

const suggestThreshold = 0.8

// Suggest returns the registered key closest to the given pair by
// Jaro-Winkler similarity, false when nothing is close enough.
func (r *Registry) Suggest(portal, page string) (string, bool) {
	target := strings.ToLower(key(portal, page))
	best := ""
	bestScore := 0.0
	for _, p := range r.Pages() {
		score := matchr.JaroWinkler(target, strings.ToLower(p.Key()), false)
		if score > bestScore {
			best = p.Key()
			bestScore = score
		}
	}
	if bestScore < suggestThreshold {
		return "", false
	}
	return best, true
}

// Outcome labels used for the extraction counter.
const (
	OutcomeOk      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOk
	}
	if _, ok := validate.IssuesOf(err); ok {
		return OutcomeInvalid
	}
	return OutcomeError
}

// Run extracts a record out of input with the routine registered for the
// pair.
func (r *Registry) Run(ctx context.Context, portal, page, input string) (any, error) {
	found, err := r.Lookup(portal, page)
	if err != nil {
		return nil, err
	}

	attrs := []attribute.KeyValue{
		attribute.String("portal", portal),
		attribute.String("page", page),
	}
	ctx, span := r.tracer.Start(ctx, "registry.Run", trace.WithAttributes(attrs...))
	defer span.End()
	span.SetAttributes(attribute.Int("input.bytes", len(input)))

	record, err := found.Parse(input)
	outcome := outcomeOf(err)
	if r.extractions != nil {
		r.extractions.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("outcome", outcome))...))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if outcome == OutcomeInvalid {
			issues, _ := validate.IssuesOf(err)
			r.tel.ReportWarning(report_registry_run, found.Key(), len(issues))
		} else {
			r.tel.ReportBroken(report_registry_run, found.Key(), err)
		}
		return nil, fmt.Errorf("%s: %w", found.Key(), err)
	}
	return record, nil
}
