package pages

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sigmmma/Halomaps/internal/dates"
	"github.com/Sigmmma/Halomaps/internal/records"
)

// ErrStatsTemplate means the home page footer did not match the fixed
// narrative sentence the stats are scraped from. The stats are load-bearing
// site-wide counters, so a template change is a format assumption violation
// that needs investigation; the batch driver aborts the whole run on it.
var ErrStatsTemplate = errors.New("home page stats did not match expected template")

// The stats footer is one fixed sentence:
//
//	N users have contributed to N threads and N posts ...
//	Most registered users online was N on <date>
var statsRegex = regexp.MustCompile(`(?s)(\d+) users have contributed to (\d+) threads and (\d+) posts.*Most registered users online was (\d+) on ([\w:, ]+)`)

// HomePage holds everything extracted from the main home page: the display
// order of the Categories (created earlier from their own pages) and the
// site-wide stats footer.
type HomePage struct {
	CategorySorts []records.CategorySort
	Stats         []records.Stat
}

// ExtractHome parses index.cfm?page=home. Most of the work was already done
// by ExtractHomeCategory; only ordering and stats live here.
func ExtractHome(doc *goquery.Document, loc *time.Location) (*HomePage, error) {
	// Categories use a third layer of nested tables, so be very specific.
	tables := doc.Find("body > table > tbody > tr > td > table")
	forumTable := tables.Eq(1)
	statsTable := tables.Eq(2)

	page := &HomePage{}

	var nameErr error
	forumTable.Find("table").Each(func(index int, table *goquery.Selection) {
		name, _, _ := strings.Cut(strings.TrimSpace(table.Text()), "\n")
		name = strings.TrimSpace(name)
		if name == "" && nameErr == nil {
			nameErr = structural("failed to extract category name at position %d", index)
		}
		page.CategorySorts = append(page.CategorySorts, records.CategorySort{
			SortIndex: index,
			Name:      name,
		})
	})
	if nameErr != nil {
		return nil, nameErr
	}

	match := statsRegex.FindStringSubmatch(statsTable.Text())
	if match == nil {
		return nil, ErrStatsTemplate
	}

	renderStr, err := RenderTime(doc)
	if err != nil {
		return nil, err
	}
	renderTime, err := dates.Parse(renderStr, "", loc)
	if err != nil {
		return nil, err
	}
	mostUsersAt, err := dates.Parse(match[5], renderStr, loc)
	if err != nil {
		return nil, err
	}

	users, _ := strconv.ParseInt(match[1], 10, 64)
	topics, _ := strconv.ParseInt(match[2], 10, 64)
	posts, _ := strconv.ParseInt(match[3], 10, 64)
	mostUsers, _ := strconv.ParseInt(match[4], 10, 64)

	for _, stat := range []records.Stat{
		{Name: "users", Value: users},
		{Name: "topics", Value: topics},
		{Name: "posts", Value: posts},
		{Name: "most_users_num", Value: mostUsers},
		{Name: "most_users_at", Value: mostUsersAt.Unix()},
	} {
		stat.MirroredAt = renderTime
		page.Stats = append(page.Stats, stat)
	}

	return page, nil
}
