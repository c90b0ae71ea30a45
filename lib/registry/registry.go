// Package registry holds the configured set of crawlable collections
// and resolves the names users type against it.
package registry

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/HoekR/emlo-analysis/lib/scrapers/emlo"

	"github.com/antzucaro/matchr"
)

// collection names only need to be close, not exact
const minSimilarity = 0.8

type Registry struct {
	Collections []emlo.Collection
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

func normalize(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	return whitespaceRegex.ReplaceAllString(name, " ")
}

// Resolve finds the configured collection a query refers to: an exact
// name match first, then a substring match, then the most similar name
// above the similarity floor.
func (r Registry) Resolve(query string) (emlo.Collection, error) {
	q := normalize(query)

	for _, col := range r.Collections {
		if normalize(col.Name) == q {
			return col, nil
		}
	}
	for _, col := range r.Collections {
		if strings.Contains(normalize(col.Name), q) {
			return col, nil
		}
	}

	var best emlo.Collection
	bestSimilarity := 0.0
	for _, col := range r.Collections {
		similarity := matchr.JaroWinkler(normalize(col.Name), q, false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = col
		}
	}
	if bestSimilarity >= minSimilarity {
		return best, nil
	}

	names := make([]string, len(r.Collections))
	for i, col := range r.Collections {
		names[i] = col.Name
	}
	return emlo.Collection{}, fmt.Errorf(
		"no collection matches %q, known collections: %s",
		query, strings.Join(names, "; "),
	)
}
