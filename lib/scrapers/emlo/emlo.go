// Package emlo crawls search results from Early Modern Letters Online,
// the Bodleian's union catalog of early modern correspondence. Results
// are paginated server-side; one crawl walks every page of a collection
// and turns each results-table row into a flat Doc.
package emlo

import (
	"fmt"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/emlo")

// Collection is a named, queryable grouping of documents. SearchName is
// the URL-safe token the advanced search form uses for the collection
// and is substituted into the query string verbatim.
type Collection struct {
	Name       string `json:"name"`
	SearchName string `json:"search_name"`
}

func (c Collection) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("collection has no name")
	}
	if c.SearchName == "" {
		return fmt.Errorf("collection %q has no search name", c.Name)
	}
	return nil
}

// Doc is one extracted catalog entry. It is never mutated after the row
// it came from has been parsed.
type Doc struct {
	Id          string
	ResultNum   int
	Type        string
	Date        string
	Author      string
	Origin      string
	Addressee   string
	Destination string
	Repository  string
	Collection  string
}

// Flat serializes a Doc to the flat key-value form downstream
// serializers expect.
func (d Doc) Flat() map[string]string {
	return map[string]string{
		"id":          d.Id,
		"type":        d.Type,
		"collection":  d.Collection,
		"date":        d.Date,
		"author":      d.Author,
		"addressee":   d.Addressee,
		"origin":      d.Origin,
		"destination": d.Destination,
		"repository":  d.Repository,
	}
}

// Page holds what one results page reports: the server-side total match
// count and the docs extracted from the page's table.
type Page struct {
	Total int
	Docs  []Doc
}
