package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// CleanCell returns the text content of a table cell with decorative
// bullet characters removed and surrounding whitespace stripped.
func CleanCell(cell *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, node := range cell.Nodes {
		buffer.WriteString(GetText(node))
	}
	return CleanCellText(buffer.String())
}

func CleanCellText(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "•", ""))
}

type Anchor struct {
	Name string
	Href string
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// non-printable runes become spaces so a name wrapping across lines
// keeps its word boundary once runs are collapsed
func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		} else {
			newStr.WriteRune(' ')
		}
	}
	return newStr.String()
}

// GetAnchors collects the <a> elements of a selection into name/href
// pairs with normalized names.
func GetAnchors(sel *goquery.Selection) []Anchor {
	anchors := []Anchor{}
	sel.Find("a").Each(func(_ int, a *goquery.Selection) {
		name := removeNonPrintable(a.Text())
		name = strings.Trim(name, " \t\n")
		name = innerWhitespace.ReplaceAllString(name, " ")

		anchors = append(anchors, Anchor{
			Name: name,
			Href: a.AttrOr("href", ""),
		})
	})
	return anchors
}
