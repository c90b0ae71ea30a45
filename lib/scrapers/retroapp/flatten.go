package retroapp

import (
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Entry is one flattened letter entry from a TableOfContents document.
type Entry struct {
	N    string
	Page string
	From string
	To   string
	D    string
	M    string
	Y    string
}

// CSVHeader is the fixed column sequence of the flattened output.
var CSVHeader = []string{"n", "page", "from", "to", "d", "m", "y"}

type tocDate struct {
	D string `xml:"d"`
	M string `xml:"m"`
	Y string `xml:"y"`
}

type tocTitle struct {
	From string  `xml:"from"`
	To   string  `xml:"to"`
	Date tocDate `xml:"date"`
}

type tocItem struct {
	N     string   `xml:"n"`
	Page  string   `xml:"page"`
	Title tocTitle `xml:"title"`
}

type tocDocument struct {
	Items []tocItem `xml:"item"`
}

// ParseTOC flattens the <item> elements of one TableOfContents document
// into entries.
func ParseTOC(body []byte) ([]Entry, error) {
	var doc tocDocument
	err := xml.Unmarshal(body, &doc)
	if err != nil {
		return nil, fmt.Errorf("parsing table of contents: %w", err)
	}

	entries := make([]Entry, len(doc.Items))
	for i, item := range doc.Items {
		entries[i] = Entry{
			N:    item.N,
			Page: item.Page,
			From: item.Title.From,
			To:   item.Title.To,
			D:    item.Title.Date.D,
			M:    item.Title.Date.M,
			Y:    item.Title.Date.Y,
		}
	}
	return entries, nil
}

// FlattenDir parses every .xml file under dir and concatenates their
// entries in directory order.
func FlattenDir(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".xml" {
			continue
		}
		body, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, err
		}
		parsed, err := ParseTOC(body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Name(), err)
		}
		entries = append(entries, parsed...)
	}
	return entries, nil
}

// WriteCSV writes the fixed header followed by one row per entry.
func WriteCSV(w io.Writer, entries []Entry) error {
	out := csv.NewWriter(w)
	err := out.Write(CSVHeader)
	if err != nil {
		return err
	}
	for _, e := range entries {
		err = out.Write([]string{e.N, e.Page, e.From, e.To, e.D, e.M, e.Y})
		if err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}
