package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinestudio/trine-server/internal/errors"
	"github.com/trinestudio/trine-server/internal/validation"
)

func TestAll_RegistrationOrder(t *testing.T) {
	types := All()
	require.Len(t, types, 3)
	assert.Equal(t, Artist, types[0].Name)
	assert.Equal(t, Release, types[1].Name)
	assert.Equal(t, Feature, types[2].Name)
}

func TestAll_ReturnsCopies(t *testing.T) {
	types := All()
	types[1].Fields[1].To[0] = "mutated"
	types[0].Fields = nil

	rel, ok := Lookup(Release)
	require.True(t, ok)
	f, ok := rel.Field("artist")
	require.True(t, ok)
	assert.Equal(t, []string{Artist}, f.To)

	art, _ := Lookup(Artist)
	assert.Len(t, art.Fields, 4)
}

func TestLookup(t *testing.T) {
	dt, ok := Lookup(Feature)
	require.True(t, ok)
	assert.Equal(t, "Homepage Feature", dt.Title)

	_, ok = Lookup("playlist")
	assert.False(t, ok)
}

func TestDocumentType_Fields(t *testing.T) {
	tests := []struct {
		doc   string
		field string
		want  FieldType
	}{
		{Artist, "name", TypeString},
		{Artist, "image", TypeImage},
		{Artist, "bio", TypeText},
		{Release, "artist", TypeReference},
		{Release, "releaseDate", TypeDate},
		{Release, "featured", TypeBoolean},
		{Feature, "release", TypeReference},
		{Feature, "description", TypeText},
	}

	for _, tt := range tests {
		t.Run(tt.doc+"."+tt.field, func(t *testing.T) {
			dt, ok := Lookup(tt.doc)
			require.True(t, ok)
			f, ok := dt.Field(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.want, f.Type)
		})
	}

	art, _ := Lookup(Artist)
	_, ok := art.Field("featured")
	assert.False(t, ok)
}

func TestValidate_AcceptsWellFormedRelease(t *testing.T) {
	dt, _ := Lookup(Release)

	err := dt.Validate(map[string]any{
		"_id":         "quantum-drift",
		"_type":       "release",
		"title":       "Quantum Drift",
		"artist":      map[string]any{"_type": "reference", "_ref": "algo-rhythm"},
		"image":       map[string]any{"asset": map[string]any{"_ref": "image-abc-600x600-png"}},
		"type":        "Single",
		"releaseDate": "2025-04-22",
		"description": "A heavy-hitting dubstep track.",
		"featured":    true,
	})
	assert.NoError(t, err)
}

func TestValidate_AcceptsDereferencedTarget(t *testing.T) {
	dt, _ := Lookup(Feature)

	err := dt.Validate(map[string]any{
		"headline": "New on TRINE",
		"artist":   map[string]any{"_type": "artist", "_id": "synapse", "name": "Synapse"},
		"release":  map[string]any{"_type": "release", "_id": "digital-dreams"},
		"image":    map[string]any{"asset": map[string]any{"url": "https://cdn.sanity.io/images/x.png"}},
	})
	assert.NoError(t, err)
}

func TestValidate_ReportsProblems(t *testing.T) {
	dt, _ := Lookup(Release)

	err := dt.Validate(map[string]any{
		"_type":       "artist",
		"title":       42,
		"artist":      map[string]any{"_type": "release", "_id": "digital-dreams"},
		"image":       "cover.png",
		"releaseDate": "22/04/2025",
		"featured":    "yes",
		"tracks":      []any{},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)

	details := validation.FieldErrors(err)
	assert.Contains(t, details["_type"], `expected "release"`)
	assert.Equal(t, "must be string", details["title"])
	assert.Equal(t, "must reference artist, got release", details["artist"])
	assert.Equal(t, "must be an image object", details["image"])
	assert.Equal(t, "must be a date (YYYY-MM-DD)", details["releaseDate"])
	assert.Equal(t, "must be boolean", details["featured"])
	assert.Equal(t, "unknown field", details["tracks"])
}

func TestValidate_ReferenceNeedsRef(t *testing.T) {
	dt, _ := Lookup(Feature)

	err := dt.Validate(map[string]any{
		"artist": map[string]any{"_type": "reference"},
	})
	require.Error(t, err)
	assert.Equal(t, "reference is missing _ref", validation.FieldErrors(err)["artist"])
}

func TestValidate_NilValuesAreAllowed(t *testing.T) {
	dt, _ := Lookup(Artist)
	assert.NoError(t, dt.Validate(map[string]any{"name": "Synapse", "image": nil}))
}
