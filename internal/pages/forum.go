package pages

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sigmmma/Halomaps/internal/dates"
	"github.com/Sigmmma/Halomaps/internal/records"
)

// ForumPage holds the Topics listed on one (possibly paginated) forum page.
// AuthorID is left nil on every Topic: the "Started By" column only gives
// us the name the author had when the topic was created, and resolving
// that name to a live user is the batch driver's job.
type ForumPage struct {
	ForumID int
	Topics  []records.Topic
}

// ExtractForum parses index.cfm?page=forum&forumID=x[&start=y] pages.
// This gives us everything for a Topic except its created_at timestamp,
// which is derived from the topic's own first post later.
func ExtractForum(doc *goquery.Document, filename string, loc *time.Location) (*ForumPage, error) {
	match := forumFileRegex.FindStringSubmatch(filepath.Base(filename))
	if match == nil {
		return nil, structural("failed to extract forum ID from %q", filepath.Base(filename))
	}
	forumID, _ := strconv.Atoi(match[1])

	renderStr, err := RenderTime(doc)
	if err != nil {
		return nil, err
	}
	renderTime, err := dates.Parse(renderStr, "", loc)
	if err != nil {
		return nil, err
	}

	topicTable := doc.Find("table table:nth-child(2)").First()

	// There's at least one invalid forum page in the mirror (ID = 19).
	if topicTable.Length() == 0 {
		return nil, ErrStubPage
	}

	rows := rowsOf(topicTable)
	if len(rows) < 2 {
		return nil, structural("forum %d topic table has no rows", forumID)
	}
	rows = rows[1:] // Ignore header row
	rows = rows[1:] // Ignore moderator row

	page := &ForumPage{ForumID: forumID}
	for _, row := range rows {
		topic, err := extractTopicRow(row)
		if err != nil {
			return nil, err
		}
		topic.ForumID = forumID
		topic.MirroredAt = renderTime
		// created_at comes later from the topic's first post.
		page.Topics = append(page.Topics, *topic)
	}

	return page, nil
}

// extractTopicRow reads one row of the topic table.
func extractTopicRow(row *goquery.Selection) (*records.Topic, error) {
	// Every topic row has an icon. Locked topics get a different one, and
	// pinned topics add a little paper clip.
	images := row.Find("img")
	locked := strings.Contains(images.Eq(0).AttrOr("src", ""), "locked")
	pinned := strings.Contains(images.Eq(1).AttrOr("src", ""), "clip")

	// The first link in a row USUALLY has both the topic ID and name. In
	// the rare case a topic was moved, the first link points at the forum
	// it was moved from, and the second link is the topic's own.
	links := row.Find("a")
	topicLink := links.Eq(0)
	var movedFrom *int
	if m := forumFileRegex.FindStringSubmatch(links.Eq(0).AttrOr("href", "")); m != nil {
		topicLink = links.Eq(1)
		from, _ := strconv.Atoi(m[1])
		movedFrom = &from
	}

	topicName := strings.TrimSpace(topicLink.Text())
	idMatch := topicFileRegex.FindStringSubmatch(topicLink.AttrOr("href", ""))
	if idMatch == nil {
		return nil, structural("failed to extract topic ID for row %q", topicName)
	}
	topicID, _ := strconv.Atoi(idMatch[1])
	if topicName == "" {
		return nil, structural("failed to extract topic name for topic %d", topicID)
	}

	cells := row.Find("td")
	authorName := strings.TrimSpace(cells.Eq(2).Text())
	views, err := strconv.Atoi(strings.TrimSpace(cells.Eq(4).Text()))
	if err != nil {
		return nil, structural("failed to extract view count for topic %d", topicID)
	}

	return &records.Topic{
		ID:         topicID,
		Name:       topicName,
		Views:      views,
		Pinned:     pinned,
		Locked:     locked,
		AuthorName: authorName,
		MovedFrom:  movedFrom,
	}, nil
}
