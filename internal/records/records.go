// Package records defines the relational rows extracted from the mirror.
// Field names and nullability match the forum database schema. Every record
// carries MirroredAt: the instant the source page was rendered by the
// original Halomaps server, not the instant we imported it.
package records

import "time"

// User is built from a userinfo page. Quote and Special are back-filled
// from topic pages, since they only render reliably on posts.
type User struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	JoinedAt    time.Time `json:"joined_at"`
	LastVisitAt time.Time `json:"last_visit_at"`
	Special     *string   `json:"special"`
	Avatar      *string   `json:"avatar"`
	Quote       *string   `json:"quote"`
	Location    *string   `json:"location"`
	Occupation  *string   `json:"occupation"`
	Interests   *string   `json:"interests"`
	Age         *string   `json:"age"`
	GamesPlayed *string   `json:"games_played"`
	MirroredAt  time.Time `json:"mirrored_at"`
}

// Category is created from a per-category home page with SortIndex zero.
// The real sort order is only visible on the main home page, so it arrives
// later as a CategorySort update.
type Category struct {
	ID         int       `json:"id"`
	SortIndex  int       `json:"sort_index"`
	Name       string    `json:"name"`
	MirroredAt time.Time `json:"mirrored_at"`
}

// CategorySort assigns a display order to an already-created Category.
// Categories are matched by name because the home page has no category IDs.
type CategorySort struct {
	SortIndex int    `json:"sort_index"`
	Name      string `json:"name"`
}

type Forum struct {
	ID          int       `json:"id"`
	SortIndex   int       `json:"sort_index"`
	Name        string    `json:"name"`
	Locked      bool      `json:"locked"`
	Description string    `json:"description"`
	CategoryID  int       `json:"category_id"`
	MirroredAt  time.Time `json:"mirrored_at"`
}

// Topic is created from a forum listing page. AuthorName is the name the
// topic was started under and never changes; AuthorID is a best-effort
// lookup that the first post of the topic (and later the author cleanup
// pass) may correct. CreatedAt is only known once the first post is parsed.
type Topic struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Views      int        `json:"views"`
	Pinned     bool       `json:"pinned"`
	Locked     bool       `json:"locked"`
	ForumID    int        `json:"forum_id"`
	AuthorID   *int       `json:"author_id"`
	AuthorName string     `json:"author_name"`
	MovedFrom  *int       `json:"moved_from"`
	CreatedAt  *time.Time `json:"created_at"`
	MirroredAt time.Time  `json:"mirrored_at"`
}

// Post content is the embedded HTML exactly as rendered. Users could edit
// that HTML by hand, so any sanitization is lossy and we do none.
type Post struct {
	ID         int       `json:"id"`
	AuthorID   int       `json:"author_id"`
	TopicID    int       `json:"topic_id"`
	CreatedAt  time.Time `json:"created_at"`
	Content    string    `json:"content"`
	MirroredAt time.Time `json:"mirrored_at"`
}

// Stat is a site-wide counter scraped from the home page footer. These are
// NOT derived from the rows we import, which makes them an independent
// cross-check of import completeness.
type Stat struct {
	Name       string    `json:"name"`
	Value      int64     `json:"value"`
	MirroredAt time.Time `json:"mirrored_at"`
}

// TopicPatch fills Topic fields that were unknown when the topic row was
// first inserted. Fields are only written where currently null.
type TopicPatch struct {
	ID        int        `json:"id"`
	AuthorID  *int       `json:"author_id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// UserPatch carries the quote and special text that only render on posts.
type UserPatch struct {
	ID      int     `json:"id"`
	Quote   *string `json:"quote"`
	Special *string `json:"special"`
}

// AuthorMismatch is one aggregated row of the topic author reconciliation
// query: how many topics started under AuthorName resolved to a user
// currently named UserName.
type AuthorMismatch struct {
	TopicCount int    `json:"topic_count"`
	AuthorName string `json:"author_name"`
	UserName   string `json:"user_name"`
}
