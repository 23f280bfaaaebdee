package cms

import (
	"context"
	"fmt"
	"time"

	"github.com/trinestudio/trine-server/internal/domain"
	"github.com/trinestudio/trine-server/internal/errors"
	"github.com/trinestudio/trine-server/internal/schema"
)

// ArtistDocument maps an artist onto the artist document type. Images are
// left out: assets have to be uploaded through the studio first.
func ArtistDocument(a *domain.Artist) map[string]any {
	return map[string]any{
		"_id":   a.ID,
		"_type": schema.Artist,
		"name":  a.Name,
		"genre": a.Genre,
		"bio":   a.Bio,
	}
}

// ReleaseDocument maps a release onto the release document type.
func ReleaseDocument(r *domain.Release) map[string]any {
	doc := map[string]any{
		"_id":         r.ID,
		"_type":       schema.Release,
		"title":       r.Title,
		"type":        string(r.Type),
		"description": r.Description,
		"featured":    r.Featured,
	}
	if r.ArtistID != "" {
		doc["artist"] = map[string]any{"_type": "reference", "_ref": r.ArtistID}
	}
	if !r.ReleaseDate.IsZero() {
		doc["releaseDate"] = r.ReleaseDate.Format(time.DateOnly)
	}
	return doc
}

// Publish validates each document against its declared type and writes them
// with createOrReplace in a single transaction. Nothing is sent if any
// document fails validation.
func (c *Client) Publish(ctx context.Context, docs ...map[string]any) (*MutateResponse, error) {
	mutations := make([]Mutation, 0, len(docs))
	for _, doc := range docs {
		typeName, _ := doc["_type"].(string)
		dt, ok := schema.Lookup(typeName)
		if !ok {
			return nil, errors.Validationf("cms: unknown document type %q", typeName)
		}
		if err := dt.Validate(doc); err != nil {
			return nil, fmt.Errorf("document %v: %w", doc["_id"], err)
		}
		mutations = append(mutations, CreateOrReplace(doc))
	}
	return c.Mutate(ctx, mutations)
}
