package emlo

import (
	"strconv"
	"strings"

	"github.com/HoekR/emlo-analysis/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// the first two columns of the results table carry no useful labels in
// the markup, so they are forced to these names
const (
	colResultNum = "Result_num"
	colDocType   = "Doc_type"
)

const (
	colDate        = "Date"
	colAuthor      = "Author"
	colOrigin      = "Origin"
	colAddressee   = "Addressee"
	colDestination = "Destination"
	colRepository  = "Repositories & Versions"
)

var requiredColumns = []string{
	colResultNum,
	colDocType,
	colDate,
	colAuthor,
	colOrigin,
	colAddressee,
	colDestination,
	colRepository,
}

// ParseResultsPage extracts the reported total and all data rows from
// one results page. collection is stamped onto every extracted Doc.
func ParseResultsPage(page *goquery.Document, collection string) (Page, error) {
	table := page.Find("#results")
	if table.Length() == 0 {
		return Page{}, ParseError{Detail: "no results table"}
	}

	total, err := parseTotalResults(page)
	if err != nil {
		return Page{}, err
	}

	docs, err := parseResultsRows(table.Find("tr"), collection)
	if err != nil {
		return Page{}, err
	}

	return Page{Total: total, Docs: docs}, nil
}

// the total match count is reported as "<n> results" in the page's
// headline span
func parseTotalResults(page *goquery.Document) (int, error) {
	headline := strings.TrimSpace(page.Find("span.font-18").First().Text())
	if headline == "" {
		return 0, ParseError{Detail: "no total results headline"}
	}

	count, _, _ := strings.Cut(headline, " results")
	total, err := strconv.Atoi(count)
	if err != nil {
		return 0, ParseError{
			Detail: "unparsable total results headline " + strconv.Quote(headline),
			Cause:  err,
		}
	}
	return total, nil
}

// parseHeader derives the column names from the header row, overriding
// the first two with their fixed semantic labels.
func parseHeader(row *goquery.Selection) []string {
	var headers []string
	row.Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, htmlutil.CleanCell(th))
	})
	if len(headers) > 0 {
		headers[0] = colResultNum
	}
	if len(headers) > 1 {
		headers[1] = colDocType
	}
	return headers
}

// parseResultsRows turns the rows of the results table into Docs. The
// first row is the header row and is excluded from data extraction.
func parseResultsRows(rows *goquery.Selection, collection string) ([]Doc, error) {
	if rows.Length() == 0 {
		return nil, ParseError{Detail: "results table has no rows"}
	}

	headers := parseHeader(rows.First())

	var docs []Doc
	var rowErr error
	rows.Slice(1, rows.Length()).EachWithBreak(func(i int, row *goquery.Selection) bool {
		doc, err := parseResultsRow(row, headers, collection, i+1)
		if err != nil {
			rowErr = err
			return false
		}
		docs = append(docs, doc)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return docs, nil
}

func parseResultsRow(row *goquery.Selection, headers []string, collection string, rowNum int) (Doc, error) {
	cells := row.Find("td")

	fields := map[string]string{}
	for i, header := range headers {
		if i >= cells.Length() {
			break
		}
		fields[header] = htmlutil.CleanCell(cells.Eq(i))
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := fields[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return Doc{}, SchemaError{Row: rowNum, Missing: missing}
	}

	id, err := resultIdentifier(cells)
	if err != nil {
		return Doc{}, err
	}

	resultNum, err := strconv.Atoi(fields[colResultNum])
	if err != nil {
		return Doc{}, SchemaError{Row: rowNum, Cause: err}
	}

	return Doc{
		Id:          id,
		ResultNum:   resultNum,
		Type:        fields[colDocType],
		Date:        fields[colDate],
		Author:      fields[colAuthor],
		Origin:      fields[colOrigin],
		Addressee:   fields[colAddressee],
		Destination: fields[colDestination],
		Repository:  fields[colRepository],
		Collection:  collection,
	}, nil
}

// resultIdentifier extracts the document identifier from the link
// embedded in the row's second cell: the path component after the first
// two, with any query string dropped.
func resultIdentifier(cells *goquery.Selection) (string, error) {
	if cells.Length() < 2 {
		return "", ParseError{Detail: "row has no link cell"}
	}
	anchors := htmlutil.GetAnchors(cells.Eq(1))
	if len(anchors) == 0 {
		return "", ParseError{Detail: "row's link cell has no anchor"}
	}

	href, _, _ := strings.Cut(anchors[0].Href, "?")
	parts := strings.Split(href, "/")
	if len(parts) < 4 {
		return "", ParseError{Detail: "unexpected document link shape " + strconv.Quote(anchors[0].Href)}
	}
	return parts[3], nil
}
