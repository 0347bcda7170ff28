package pages

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Sigmmma/Halomaps/internal/dates"
	"github.com/Sigmmma/Halomaps/internal/records"
)

// Post time renders inside the first <strong> tag of a post row.
var postTimeRegex = regexp.MustCompile(`Posted: ([\w,:@ ]+)`)

// Note the "mesagearea" typo: it is in the original markup.
var postContentRegex = regexp.MustCompile(`<div class="mesagearea" id="messagearea">(.*?)</div>`)

// TopicPage holds everything extracted from one (possibly paginated) topic
// page: the posts themselves, the quote/special back-fills for each
// poster, and (for the first page only) the deferred Topic fields that can
// only be known from the topic's first post.
type TopicPage struct {
	TopicID     int
	Posts       []records.Post
	UserPatches []records.UserPatch
	TopicPatch  *records.TopicPatch
}

// ExtractTopic parses index.cfm?page=topic&topicID=x[&start=y] pages.
//
// raw is the original file content; a handful of posts contain hand-edited
// HTML mangled badly enough that the DOM loses their content, and those
// are recovered by scanning raw directly.
func ExtractTopic(doc *goquery.Document, filename string, raw []byte, loc *time.Location) (*TopicPage, error) {
	match := topicFileRegex.FindStringSubmatch(filepath.Base(filename))
	if match == nil {
		return nil, structural("failed to extract topic ID from %q", filepath.Base(filename))
	}
	topicID, _ := strconv.Atoi(match[1])
	firstPage := match[2] == "" || match[2] == "1"

	renderStr, err := RenderTime(doc)
	if err != nil {
		return nil, err
	}
	renderTime, err := dates.Parse(renderStr, "", loc)
	if err != nil {
		return nil, err
	}

	// Find the table that actually holds the posts.
	var postTable *goquery.Selection
	doc.Find("table table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if table.Find("#messagearea").Length() > 0 {
			postTable = table
			return false
		}
		return true
	})
	if postTable == nil {
		return nil, ErrStubPage
	}

	rows := rowsOf(postTable)
	if len(rows) < 3 {
		return nil, structural("topic %d post table has too few rows", topicID)
	}
	rows = rows[1:]           // Ignore topic title row
	rows = rows[1:]           // Ignore moderator row
	rows = rows[:len(rows)-1] // Ignore empty end row
	if len(rows)%2 != 0 {
		return nil, structural("topic %d post rows are not paired", topicID)
	}

	page := &TopicPage{TopicID: topicID}

	// Each post is split across two sequential rows: the first has the
	// user, creation time, and content; the second has the post's ID
	// (buried in its reply link). Posts are also the only sure place to
	// get a user's special text and quote, so those are collected too.
	for i := 0; i < len(rows); i += 2 {
		post, patch, err := extractPostRows(rows[i], rows[i+1], raw)
		if err != nil {
			return nil, err
		}

		createdAt, err := dates.Parse(post.createdStr, renderStr, loc)
		if err != nil {
			return nil, structural("post %d has unparseable creation time: %v", post.id, err)
		}

		page.Posts = append(page.Posts, records.Post{
			ID:         post.id,
			AuthorID:   post.authorID,
			TopicID:    topicID,
			CreatedAt:  createdAt,
			Content:    post.content,
			MirroredAt: renderTime,
		})
		page.UserPatches = append(page.UserPatches, *patch)
	}

	// The first post of the first page supplies the topic's creation time,
	// and a provisional author in case the name lookup failed at the forum
	// stage. The author cleanup pass may still null it later.
	if firstPage && len(page.Posts) > 0 {
		first := page.Posts[0]
		page.TopicPatch = &records.TopicPatch{
			ID:        topicID,
			AuthorID:  &first.AuthorID,
			CreatedAt: &first.CreatedAt,
		}
	}

	return page, nil
}

type postRowInfo struct {
	id         int
	authorID   int
	content    string
	createdStr string
}

// extractPostRows reads one post from its pair of table rows.
func extractPostRows(postRow, idRow *goquery.Selection, raw []byte) (*postRowInfo, *records.UserPatch, error) {
	// Post rows have two cells: the user info, and the post content.
	userCell := postRow.Find("td").First()

	// The first link is the author's userInfo page, and thus their ID.
	idMatch := userFileRegex.FindStringSubmatch(userCell.Find("a").First().AttrOr("href", ""))
	if idMatch == nil {
		return nil, nil, structural("failed to extract post author ID")
	}
	authorID, _ := strconv.Atoi(idMatch[1])

	// The avatar quote has a unique class we can select on.
	quote := nullable(userCell.Find("span.avatar").First().Text())

	special, err := extractSpecial(userCell)
	if err != nil {
		return nil, nil, err
	}

	createdMatch := postTimeRegex.FindStringSubmatch(postRow.Find("strong").First().Text())
	if createdMatch == nil {
		return nil, nil, structural("failed to extract post creation time")
	}

	// The button for replying to a post links with the post's ID.
	postMatch := postIDRegex.FindStringSubmatch(idRow.Find("a").First().AttrOr("href", ""))
	if postMatch == nil {
		return nil, nil, structural("failed to extract post ID")
	}
	postID, _ := strconv.Atoi(postMatch[1])

	// Post content is (usually) easy: a div with a unique ID. It is
	// embedded HTML the user could edit directly, and there is no way to
	// sanitize that without losing information, so keep it verbatim.
	content, _ := postRow.Find("div#messagearea").First().Html()
	if content == "" {
		// Malformed posts parse to a defined-but-empty div.
		content = scanPostContent(raw, postID)
	}
	if content == "" {
		return nil, nil, structural("failed to extract content for post %d", postID)
	}

	info := &postRowInfo{
		id:         postID,
		authorID:   authorID,
		content:    content,
		createdStr: createdMatch[1],
	}
	patch := &records.UserPatch{
		ID:      authorID,
		Quote:   quote,
		Special: special,
	}
	return info, patch, nil
}

// extractSpecial reads the user's special marker from a post's user cell.
//
// It can be an image (Dennis' moderator badge) or a plain text node
// (Maniac's "helpful user" label). There's no good way to select this, so
// grab whatever comes after the user link that isn't the join date, if
// anything. Text specials can span several nodes, terminated by the
// "Joined ..." line. An unrecognized special image is a hard error so new
// badges get noticed instead of silently dropped.
func extractSpecial(userCell *goquery.Selection) (*string, error) {
	kids := childNodes(userCell)

	var textNode, imgNode *html.Node
	if len(kids) > 6 {
		textNode = kids[6]
	}
	if len(kids) > 7 {
		imgNode = kids[7]
	}

	if strings.TrimSpace(nodeText(textNode)) != "" {
		var lines []string
		for cur := textNode; cur != nil && len(lines) < 10; cur = cur.NextSibling {
			text := strings.TrimSpace(nodeText(cur))
			if strings.HasPrefix(text, "Joined") {
				break
			}
			if text != "" {
				lines = append(lines, text)
			}
		}
		return nullable(strings.Join(lines, "\n")), nil
	}

	if imgNode != nil && imgNode.Type == html.ElementNode && imgNode.Data == "img" {
		var src string
		for _, attr := range imgNode.Attr {
			if attr.Key == "src" {
				src = attr.Val
			}
		}
		if !strings.Contains(src, "moderator") {
			return nil, structural("user had unrecognized special image %q", src)
		}
		special := "moderator"
		return &special, nil
	}

	return nil, nil
}

// scanPostContent recovers a post's content without relying on HTML tags.
//
// Sometimes users mangled the HTML in their posts when editing, e.g.
// topicID=12627 contains `<div ... id="messagearea"></div id=quote>`,
// which convinces the parser there is no content at all. Scan the file
// line by line instead: remember the most recent content line, and when
// the reply link with the matching post ID shows up, that line was this
// post's content.
func scanPostContent(raw []byte, postID int) string {
	var current string
	for _, line := range strings.Split(string(raw), "\n") {
		if m := postContentRegex.FindStringSubmatch(line); m != nil {
			current = m[1]
		}
		if m := postIDRegex.FindStringSubmatch(line); m != nil {
			if id, err := strconv.Atoi(m[1]); err == nil && id == postID {
				return current
			}
		}
	}
	return ""
}
