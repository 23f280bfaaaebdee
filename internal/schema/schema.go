// Package schema declares the document types stored in the headless CMS.
// Field names and types are the wire contract with the content store: the
// CMS repository queries these fields and the API publishes them so the
// studio and the server agree on one shape.
package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trinestudio/trine-server/internal/errors"
)

// FieldType is a CMS primitive.
type FieldType string

// Field types used by the label's documents.
const (
	TypeString    FieldType = "string"
	TypeText      FieldType = "text"
	TypeImage     FieldType = "image"
	TypeReference FieldType = "reference"
	TypeDate      FieldType = "date"
	TypeBoolean   FieldType = "boolean"
)

// Field is one declared field of a document type.
type Field struct {
	Name  string    `json:"name"`
	Type  FieldType `json:"type"`
	Title string    `json:"title"`
	// To lists the document types a reference may point at.
	To []string `json:"to,omitempty"`
}

// DocumentType is a named CMS document schema.
type DocumentType struct {
	Name   string  `json:"name"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Document type names.
const (
	Artist  = "artist"
	Release = "release"
	Feature = "feature"
)

var registry = []DocumentType{
	{
		Name:  Artist,
		Title: "Artist",
		Fields: []Field{
			{Name: "name", Type: TypeString, Title: "Name"},
			{Name: "image", Type: TypeImage, Title: "Artist Image"},
			{Name: "genre", Type: TypeString, Title: "Genre"},
			{Name: "bio", Type: TypeText, Title: "Bio/Description"},
		},
	},
	{
		Name:  Release,
		Title: "Release",
		Fields: []Field{
			{Name: "title", Type: TypeString, Title: "Release Title"},
			{Name: "artist", Type: TypeReference, Title: "Artist", To: []string{Artist}},
			{Name: "image", Type: TypeImage, Title: "Cover Image"},
			{Name: "type", Type: TypeString, Title: "Type (LP, Single, etc.)"},
			{Name: "releaseDate", Type: TypeDate, Title: "Release Date"},
			{Name: "description", Type: TypeText, Title: "Description"},
			{Name: "featured", Type: TypeBoolean, Title: "Featured Release"},
		},
	},
	{
		Name:  Feature,
		Title: "Homepage Feature",
		Fields: []Field{
			{Name: "headline", Type: TypeString, Title: "Headline"},
			{Name: "artist", Type: TypeReference, Title: "Artist", To: []string{Artist}},
			{Name: "release", Type: TypeReference, Title: "Release", To: []string{Release}},
			{Name: "image", Type: TypeImage, Title: "Feature Image"},
			{Name: "description", Type: TypeText, Title: "Feature Description"},
		},
	},
}

// All returns every document type in registration order.
func All() []DocumentType {
	out := make([]DocumentType, len(registry))
	for i, dt := range registry {
		out[i] = dt.clone()
	}
	return out
}

// Lookup finds a document type by name.
func Lookup(name string) (DocumentType, bool) {
	for _, dt := range registry {
		if dt.Name == name {
			return dt.clone(), true
		}
	}
	return DocumentType{}, false
}

// Field finds a declared field by name.
func (dt DocumentType) Field(name string) (Field, bool) {
	for _, f := range dt.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (dt DocumentType) clone() DocumentType {
	c := dt
	c.Fields = make([]Field, len(dt.Fields))
	for i, f := range dt.Fields {
		f.To = slices.Clone(f.To)
		c.Fields[i] = f
	}
	return c
}

// systemFields are maintained by the content store on every document.
var systemFields = map[string]bool{
	"_id":        true,
	"_type":      true,
	"_rev":       true,
	"_createdAt": true,
	"_updatedAt": true,
	"_key":       true,
}

var validate = validator.New()

// Validate checks a raw CMS document against the type. It reports unknown
// fields, values of the wrong primitive type and references to a type the
// field does not allow. Missing fields are fine; the studio treats every
// field as optional.
func (dt DocumentType) Validate(doc map[string]any) error {
	problems := make(map[string]string)

	if t, ok := doc["_type"]; ok && t != dt.Name {
		problems["_type"] = fmt.Sprintf("expected %q, got %v", dt.Name, t)
	}

	for _, key := range slices.Sorted(maps.Keys(doc)) {
		if systemFields[key] {
			continue
		}
		f, ok := dt.Field(key)
		if !ok {
			problems[key] = "unknown field"
			continue
		}
		if msg := checkValue(f, doc[key]); msg != "" {
			problems[key] = msg
		}
	}

	if len(problems) > 0 {
		return errors.ValidationWithDetails(fmt.Sprintf("%s document does not match schema", dt.Name), problems)
	}
	return nil
}

func checkValue(f Field, v any) string {
	if v == nil {
		return ""
	}

	switch f.Type {
	case TypeString, TypeText:
		if _, ok := v.(string); !ok {
			return fmt.Sprintf("must be %s", f.Type)
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return "must be boolean"
		}
	case TypeDate:
		s, ok := v.(string)
		if !ok || validate.Var(s, "datetime=2006-01-02") != nil {
			return "must be a date (YYYY-MM-DD)"
		}
	case TypeImage:
		return checkImage(v)
	case TypeReference:
		return checkReference(f, v)
	}
	return ""
}

func checkImage(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return "must be an image object"
	}
	asset, ok := obj["asset"].(map[string]any)
	if !ok {
		return "image is missing its asset"
	}
	if ref, _ := asset["_ref"].(string); ref != "" {
		return ""
	}
	if u, _ := asset["url"].(string); u != "" && validate.Var(u, "url") == nil {
		return ""
	}
	return "image asset needs a _ref or url"
}

// checkReference accepts a raw reference ({"_type":"reference","_ref":...})
// or a dereferenced document whose _type must be an allowed target.
func checkReference(f Field, v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return "must be a reference object"
	}

	typ, _ := obj["_type"].(string)
	switch {
	case typ == "" || typ == string(TypeReference):
		if ref, _ := obj["_ref"].(string); strings.TrimSpace(ref) == "" {
			return "reference is missing _ref"
		}
		return ""
	case slices.Contains(f.To, typ):
		return ""
	default:
		return fmt.Sprintf("must reference %s, got %s", strings.Join(f.To, " or "), typ)
	}
}
