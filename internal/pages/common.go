package pages

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrStubPage marks pages that legitimately have no content: near-empty
// shells the mirror produced for deleted forums, dead links, and the ID-0
// placeholder user. Callers skip these without recording an error.
var ErrStubPage = errors.New("stub page")

// StructureError means the page's HTML does not match the shape this
// importer was built against. That usually indicates a page variant we
// have never seen, so it should surface loudly rather than produce a
// silently wrong record.
type StructureError struct {
	Msg string
}

func (e *StructureError) Error() string { return e.Msg }

func structural(format string, args ...any) error {
	return &StructureError{Msg: fmt.Sprintf(format, args...)}
}

// href fragments that carry record IDs.
var (
	forumIDRegex = regexp.MustCompile(`(?i)forumid=(\d+)`)
	postIDRegex  = regexp.MustCompile(`(?i)replyid=(\d+)`)
)

// Matches the constant footer every rendered page carries:
//
//	<b>Time:</b> Wed January 18, 2023 11:32 PM
var renderTimeRegex = regexp.MustCompile(`Time: ([\w,: ]+)`)

// RenderTime extracts the page's own render time from the footer. The
// string is returned raw (timezone offset baked in) so callers can also
// use it as the reference for relative dates like "Today @ <time>".
func RenderTime(doc *goquery.Document) (string, error) {
	tables := doc.Find("table")
	timeTable := tables.Eq(tables.Length() - 2)

	match := renderTimeRegex.FindStringSubmatch(timeTable.Text())
	if match == nil {
		return "", structural("failed to extract mirror render time")
	}
	return strings.TrimSpace(match[1]), nil
}

// IsStub reports whether the page is an empty shell with just the common
// header. The first content row under the outer table wrapper is blank on
// every such page regardless of kind.
func IsStub(doc *goquery.Document) bool {
	row := doc.Find("body > table > tbody > tr:nth-child(2)").First()
	return row.Length() > 0 && strings.TrimSpace(row.Text()) == ""
}

// rowsOf collects the <tr> descendants of sel into a slice so extractors
// can shift and pop boilerplate rows positionally.
func rowsOf(sel *goquery.Selection) []*goquery.Selection {
	var rows []*goquery.Selection
	sel.Find("tr").Each(func(_ int, row *goquery.Selection) {
		rows = append(rows, row)
	})
	return rows
}

// nodeText is textContent for a raw html.Node: the concatenation of all
// text beneath it.
func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(nodeText(child))
	}
	return b.String()
}

// childNodes returns every child of the selection's first node, including
// text nodes, mirroring the DOM childNodes list.
func childNodes(sel *goquery.Selection) []*html.Node {
	if sel.Length() == 0 {
		return nil
	}
	var kids []*html.Node
	for child := sel.Get(0).FirstChild; child != nil; child = child.NextSibling {
		kids = append(kids, child)
	}
	return kids
}

// nullable maps the empty string to nil. The forum renders "not provided"
// and "provided but empty" identically, so this is a deliberate, lossy
// simplification.
func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
