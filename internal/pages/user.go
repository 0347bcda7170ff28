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

// ExtractUser parses a index.cfm?page=userInfo&viewuserid=x page.
//
// Everything for a User except their special text can be extracted here.
// Unless they don't have an avatar: then they can still have a quote that
// only renders on their posts, so quote stays a back-fillable field.
//
// Blank placeholder pages (like user ID 0) return ErrStubPage.
func ExtractUser(doc *goquery.Document, filename string, loc *time.Location) (*records.User, error) {
	match := userFileRegex.FindStringSubmatch(filepath.Base(filename))
	if match == nil {
		return nil, structural("failed to extract user ID from %q", filepath.Base(filename))
	}
	userID, _ := strconv.Atoi(match[1])
	if userID == 0 {
		return nil, ErrStubPage
	}

	tables := doc.Find("table table")
	userRows := rowsOf(tables.Eq(2))
	if len(userRows) < 3 {
		return nil, structural("user %d page is missing its info table", userID)
	}

	// The name row renders as "Viewing User Profile for: <name>".
	_, userName, found := strings.Cut(strings.TrimSpace(userRows[0].Text()), ": ")
	if !found || userName == "" {
		return nil, ErrStubPage
	}

	infoRows := rowsOf(userRows[2].Find("td").First())

	// From this point on, empty strings mean the value wasn't actually
	// provided on the page, so they are normalized to null.

	// The avatar row contains both the user's image and quote. If the user
	// has no avatar this row is absent entirely, EVEN IF they have a quote.
	//
	// The "avatars/" root is stripped from the image path so the files can
	// be served statically from anywhere later.
	var userAvatar, userQuote *string
	if len(infoRows) > 0 {
		last := infoRows[len(infoRows)-1]
		if strings.HasPrefix(strings.TrimSpace(last.Text()), "Avatar") {
			infoRows = infoRows[:len(infoRows)-1]

			if src, ok := last.Find("img").First().Attr("src"); ok {
				avatar := strings.Replace(src, "avatars/", "", 1)
				userAvatar = &avatar
			}
			userQuote = nullable(last.Find("td:nth-child(2)").Text())
		}
	}

	fields := make(map[string]string)
	for _, row := range infoRows {
		cells := row.Find("td")
		label, _, _ := strings.Cut(cells.Eq(0).Text(), ":")
		fields[strings.TrimSpace(label)] = strings.TrimSpace(cells.Eq(1).Text())
	}

	renderStr, err := RenderTime(doc)
	if err != nil {
		return nil, err
	}
	renderTime, err := dates.Parse(renderStr, "", loc)
	if err != nil {
		return nil, err
	}

	joinedAt, err := dates.Parse(fields["Joined"], renderStr, loc)
	if err != nil {
		return nil, structural("user %d has unparseable join date: %v", userID, err)
	}
	lastVisitAt, err := dates.Parse(fields["Last Visit"], renderStr, loc)
	if err != nil {
		return nil, structural("user %d has unparseable last visit date: %v", userID, err)
	}

	return &records.User{
		ID:          userID,
		Name:        userName,
		JoinedAt:    joinedAt,
		LastVisitAt: lastVisitAt,
		Special:     nil, // only renders on posts; back-filled by the topic extractor
		Avatar:      userAvatar,
		Quote:       userQuote,
		Location:    nullable(fields["Location"]),
		Occupation:  nullable(fields["Occupation"]),
		Interests:   nullable(fields["Interests"]),
		Age:         nullable(fields["Your Age"]),
		GamesPlayed: nullable(fields["What Games do you play"]),
		MirroredAt:  renderTime,
	}, nil
}
