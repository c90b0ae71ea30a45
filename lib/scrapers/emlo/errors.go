package emlo

import (
	"fmt"
	"strings"
)

// RetrievalError reports a non-success HTTP status. It is fatal to the
// crawl attempt, retrying is the caller's business.
type RetrievalError struct {
	Url    string
	Status int
}

func (e RetrievalError) Error() string {
	return fmt.Sprintf("error retrieving results page %s: status %d", e.Url, e.Status)
}

// ParseError reports a results page whose structure could not be
// understood, including an unparsable reported-total field.
type ParseError struct {
	Detail string
	Cause  error
}

func (e ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parsing results page: %s: %s", e.Detail, e.Cause)
	}
	return fmt.Sprintf("parsing results page: %s", e.Detail)
}

func (e ParseError) Unwrap() error {
	return e.Cause
}

// SchemaError reports a data row that does not fit the record schema.
// Missing lists every absent column at once rather than failing on the
// first one.
type SchemaError struct {
	Row     int
	Missing []string
	Cause   error
}

func (e SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf(
			"row %d is missing fields: %s",
			e.Row, strings.Join(e.Missing, ", "),
		)
	}
	return fmt.Sprintf("row %d does not fit the record schema: %s", e.Row, e.Cause)
}

func (e SchemaError) Unwrap() error {
	return e.Cause
}
