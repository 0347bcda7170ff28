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

// HomeCategoryPage holds everything extracted from a
// index.cfm?page=home&categoryID=x page: one Category and its Forums.
type HomeCategoryPage struct {
	Category records.Category
	Forums   []records.Forum
}

// ExtractHomeCategory parses a per-category home page.
//
// Most Category and Forum information could be scraped from the main home
// page, but the home page is missing Category IDs. Forums belong to a
// Category, so the Category record has to exist first, which is why these
// pages are processed before everything else. The Category's sort order
// comes later from ExtractHome.
//
// The Category ID only exists in the filename, not the page body.
func ExtractHomeCategory(doc *goquery.Document, filename string, loc *time.Location) (*HomeCategoryPage, error) {
	match := homeCatFileRegex.FindStringSubmatch(filepath.Base(filename))
	if match == nil {
		return nil, structural("failed to extract category ID from %q", filepath.Base(filename))
	}
	categoryID, _ := strconv.Atoi(match[1])

	renderStr, err := RenderTime(doc)
	if err != nil {
		return nil, err
	}
	renderTime, err := dates.Parse(renderStr, "", loc)
	if err != nil {
		return nil, err
	}

	// Second nested table contains the Category / Forum info.
	rows := rowsOf(doc.Find("table table:nth-child(2)").First())
	if len(rows) == 0 {
		return nil, structural("failed to extract forum rows from category page")
	}

	rows = rows[1:] // Ignore constant header
	rows = rows[1:] // Ignore outer category row
	categoryRow := rows[0]
	rows = rows[1:]

	categoryName := strings.TrimSpace(categoryRow.Find("b").First().Text())
	if categoryName == "" {
		return nil, structural("failed to extract category name")
	}

	page := &HomeCategoryPage{
		Category: records.Category{
			ID:         categoryID,
			Name:       categoryName,
			SortIndex:  0, // ExtractHome fills this in later
			MirroredAt: renderTime,
		},
	}

	for index, forumRow := range rows {
		// The cell with the Forum's name, description, and lock status.
		info := forumRow.Find("td:nth-child(2)").First()

		locked := strings.Contains(info.Find("img").First().AttrOr("src", ""), "icon_lock")

		link := info.Find("a").First()
		if link.Length() == 0 {
			return nil, structural("failed to extract a forum link in category %d", categoryID)
		}

		forumName := strings.TrimSpace(link.Text())
		if forumName == "" {
			return nil, structural("failed to extract forum name in category %d", categoryID)
		}

		idMatch := forumIDRegex.FindStringSubmatch(link.AttrOr("href", ""))
		if idMatch == nil {
			return nil, structural("failed to parse forum ID for %q", forumName)
		}
		forumID, _ := strconv.Atoi(idMatch[1])

		desc := info.Find("div.SMALL")
		if desc.Length() == 0 {
			return nil, structural("failed to extract description for forum %d", forumID)
		}

		page.Forums = append(page.Forums, records.Forum{
			ID:          forumID,
			SortIndex:   index,
			Name:        forumName,
			Locked:      locked,
			Description: strings.TrimSpace(desc.Text()),
			CategoryID:  categoryID,
			MirroredAt:  renderTime,
		})
	}

	return page, nil
}
