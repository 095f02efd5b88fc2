package validate

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Field is a property of an object schema.
type Field struct {
	Name     string
	Schema   *openapi3.Schema
	Optional bool
}

// Req is a required field (the value may still be null if the schema is
// Nullable).
func Req(name string, schema *openapi3.Schema) Field {
	return Field{Name: name, Schema: schema}
}

// Opt is a field that may be left out entirely.
func Opt(name string, schema *openapi3.Schema) Field {
	return Field{Name: name, Schema: schema, Optional: true}
}

// Object builds an object schema. Properties not listed are allowed and
// dropped when decoding.
func Object(fields ...Field) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	required := []string{}
	for _, f := range fields {
		schema.WithProperty(f.Name, f.Schema)
		if !f.Optional {
			required = append(required, f.Name)
		}
	}
	if len(required) > 0 {
		schema.WithRequired(required)
	}
	return schema
}

// Closed builds an object schema that rejects properties it does not list.
func Closed(fields ...Field) *openapi3.Schema {
	return Object(fields...).WithoutAdditionalProperties()
}

func String() *openapi3.Schema {
	return openapi3.NewStringSchema()
}

func Number() *openapi3.Schema {
	return openapi3.NewFloat64Schema()
}

func Integer() *openapi3.Schema {
	return openapi3.NewIntegerSchema()
}

func Bool() *openapi3.Schema {
	return openapi3.NewBoolSchema()
}

// Const is a string schema that only accepts value.
func Const(value string) *openapi3.Schema {
	return openapi3.NewStringSchema().WithEnum(value)
}

func Array(items *openapi3.Schema) *openapi3.Schema {
	return openapi3.NewArraySchema().WithItems(items)
}

// Nullable marks schema as accepting null.
func Nullable(schema *openapi3.Schema) *openapi3.Schema {
	return schema.WithNullable()
}

// Unknown accepts any value, including null.
func Unknown() *openapi3.Schema {
	return openapi3.NewSchema().WithNullable()
}

// Variant is one member of a Union.
type Variant struct {
	Kind   string
	Schema *openapi3.Schema
}

// Union builds a oneOf schema where the string under property picks the
// member schema that the value is checked against.
func Union(property string, variants ...Variant) *openapi3.Schema {
	mapping := openapi3.StringMap{}
	refs := make([]*openapi3.SchemaRef, len(variants))
	for i, v := range variants {
		ref := "#/" + property + "/" + v.Kind
		mapping[v.Kind] = ref
		refs[i] = &openapi3.SchemaRef{Ref: ref, Value: v.Schema}
	}
	return &openapi3.Schema{
		OneOf: refs,
		Discriminator: &openapi3.Discriminator{
			PropertyName: property,
			Mapping:      mapping,
		},
	}
}
