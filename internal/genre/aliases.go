package genre

import (
	"slices"
	"strings"
)

// CanonicalAliases maps common spellings to the slug the catalog uses.
var CanonicalAliases = map[string]string{
	"synth-wave":    "synthwave",
	"retrowave":     "synthwave",
	"outrun":        "synthwave",
	"edm":           "electronic",
	"electronica":   "electronic",
	"dnb":           "drum-and-bass",
	"drum-bass":     "drum-and-bass",
	"d-b":           "drum-and-bass",
	"hip-hop":       "hip-hop",
	"hiphop":        "hip-hop",
	"rap":           "hip-hop",
	"lofi":          "lo-fi",
	"lo-fi-hip-hop": "lo-fi",
	"glitch-hop":    "glitch",
	"idm":           "glitch",
	"ambient-ai":    "ambient",
}

// separators split compound labels such as "Synthwave, Pop, Electronic".
const separators = ",/;|"

// NormalizeToSlugs splits a raw genre label into its parts and returns the
// canonical slug of each, deduplicated and in input order.
func NormalizeToSlugs(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return strings.ContainsRune(separators, r)
	})

	slugs := make([]string, 0, len(parts))
	for _, part := range parts {
		slug := Slugify(part)
		if slug == "" {
			continue
		}
		if canonical, ok := CanonicalAliases[slug]; ok {
			slug = canonical
		}
		if !slices.Contains(slugs, slug) {
			slugs = append(slugs, slug)
		}
	}
	return slugs
}
