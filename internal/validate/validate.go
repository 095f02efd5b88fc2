// Package validate is the boundary between the untyped values assembled by
// the page routines and the typed records handed out to callers.
//
// A value is first checked against an openapi3 schema (collecting every
// violation), and only when it conforms is it decoded into its Go type. A
// record is therefore either complete and valid, or not produced at all.
package validate

import (
	"cmp"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mitchellh/mapstructure"
)

// Issue is a single violated constraint.
type Issue struct {
	// Path is the dot-joined path of the offending field from the root of
	// the record, it is empty when the root itself is invalid.
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	path := i.Path
	if path == "" {
		path = "(root)"
	}
	return fmt.Sprintf("%s: %s", path, i.Message)
}

// Error is returned when a value does not conform to its schema.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		lines[i] = issue.String()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(lines, "; "))
}

// Paths returns the path of every issue, in order.
func (e *Error) Paths() []string {
	paths := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		paths[i] = issue.Path
	}
	return paths
}

// IssuesOf extracts the issues out of err if it is (or wraps) an *Error.
func IssuesOf(err error) ([]Issue, bool) {
	var verr *Error
	if !errors.As(err, &verr) {
		return nil, false
	}
	return verr.Issues, true
}

type options struct {
	hooks []mapstructure.DecodeHookFunc
}

// Option configures Parse.
type Option func(o *options)

// WithHook registers a decode hook, usually one made by UnionHook.
func WithHook(hook mapstructure.DecodeHookFunc) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hook)
	}
}

// Parse validates value against schema and decodes it into T.
func Parse[T any](schema *openapi3.Schema, value any, opts ...Option) (T, error) {
	var out T

	issues := Check(schema, value)
	if len(issues) > 0 {
		return out, &Error{Issues: issues}
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	err := decode(value, &out, o.hooks)
	if err != nil {
		var zero T
		return zero, &Error{Issues: []Issue{{Message: err.Error()}}}
	}
	return out, nil
}

// Check returns every schema violation in value, ordered by path.
func Check(schema *openapi3.Schema, value any) []Issue {
	err := schema.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil
	}
	issues := []Issue{}
	collectIssues(err, &issues)
	sort.SliceStable(issues, func(i, j int) bool {
		return comparePaths(issues[i].Path, issues[j].Path) < 0
	})
	return issues
}

// comparePaths orders paths segment by segment, array indexes compare as
// numbers so that items.2 comes before items.10.
func comparePaths(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		ai, aerr := strconv.Atoi(as[i])
		bi, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			return cmp.Compare(ai, bi)
		}
		return strings.Compare(as[i], bs[i])
	}
	return cmp.Compare(len(as), len(bs))
}

func collectIssues(err error, out *[]Issue) {
	var multi openapi3.MultiError
	if errors.As(err, &multi) && !isSchemaError(err) {
		for _, inner := range multi {
			collectIssues(inner, out)
		}
		return
	}

	var serr *openapi3.SchemaError
	if !errors.As(err, &serr) {
		*out = append(*out, Issue{Message: err.Error()})
		return
	}

	// a failed oneOf wraps the errors of the candidate schema(s), those
	// carry the real (deeper) paths
	if serr.SchemaField == "oneOf" && serr.Origin != nil {
		if wrapped, ok := errors.Unwrap(serr.Origin).(interface{ Unwrap() error }); ok {
			if nested, ok := wrapped.Unwrap().(openapi3.MultiError); ok && len(nested) > 0 {
				for _, inner := range nested {
					collectIssues(inner, out)
				}
				return
			}
		}
	}

	*out = append(*out, Issue{
		Path:    strings.Join(serr.JSONPointer(), "."),
		Message: serr.Reason,
	})
}

func isSchemaError(err error) bool {
	_, ok := err.(*openapi3.SchemaError)
	return ok
}

func decode(value any, out any, hooks []mapstructure.DecodeHookFunc) error {
	// embedded structs are flattened the same way encoding/json does
	config := &mapstructure.DecoderConfig{
		TagName: "json",
		Squash:  true,
		Result:  out,
	}
	if len(hooks) > 0 {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(hooks...)
	}
	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return err
	}
	return decoder.Decode(value)
}

// UnionHook decodes maps into the variants of a sealed interface, picking
// the variant by the string found under discriminator.
//
// iface must be a pointer to the interface type (ex. (*Entry)(nil)) and
// variants maps each discriminator value to a zero value of its variant.
func UnionHook(iface any, discriminator string, variants map[string]any) mapstructure.DecodeHookFuncType {
	target := reflect.TypeOf(iface).Elem()
	return func(from, to reflect.Type, data any) (any, error) {
		if to != target {
			return data, nil
		}
		fields, ok := data.(map[string]any)
		if !ok {
			return data, nil
		}
		kind, _ := fields[discriminator].(string)
		variant, ok := variants[kind]
		if !ok {
			return nil, fmt.Errorf("unknown %s %q", discriminator, kind)
		}

		ptr := reflect.New(reflect.TypeOf(variant))
		err := decode(fields, ptr.Interface(), nil)
		if err != nil {
			return nil, err
		}
		return ptr.Elem().Interface(), nil
	}
}
