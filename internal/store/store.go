// Package store is the importer's storage collaborator: a SQLite database
// exposing the small set of insert/upsert/patch operations the mirror
// loader needs. First-seen records insert ignoring conflicts, stats merge
// by name, and the deferred back-fills patch columns only where currently
// null, which together keep a re-run of the import idempotent.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Sigmmma/Halomaps/internal/records"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the forum database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// AddCategory inserts a category, ignoring re-imports of the same ID.
func (s *Store) AddCategory(category records.Category) error {
	_, err := s.db.Exec(`
		INSERT INTO categories (id, sort_index, name, mirrored_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		category.ID, category.SortIndex, category.Name, category.MirroredAt.Unix(),
	)
	return err
}

// UpdateCategorySorts sets the sort index for already-added categories.
// The home page has no category IDs, so the match is by name.
func (s *Store) UpdateCategorySorts(sorts []records.CategorySort) error {
	for _, sort := range sorts {
		_, err := s.db.Exec(
			`UPDATE categories SET sort_index = ? WHERE name = ?`,
			sort.SortIndex, sort.Name,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) AddForums(forums []records.Forum) error {
	for _, forum := range forums {
		_, err := s.db.Exec(`
			INSERT INTO forums (id, sort_index, name, locked, description, category_id, mirrored_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING`,
			forum.ID, forum.SortIndex, forum.Name, forum.Locked,
			forum.Description, forum.CategoryID, forum.MirroredAt.Unix(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) AddUser(user records.User) error {
	_, err := s.db.Exec(`
		INSERT INTO users (id, name, joined_at, last_visit_at, special, avatar,
			quote, location, occupation, interests, age, games_played, mirrored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		user.ID, user.Name, user.JoinedAt.Unix(), user.LastVisitAt.Unix(),
		nullString(user.Special), nullString(user.Avatar), nullString(user.Quote),
		nullString(user.Location), nullString(user.Occupation),
		nullString(user.Interests), nullString(user.Age),
		nullString(user.GamesPlayed), user.MirroredAt.Unix(),
	)
	return err
}

func (s *Store) AddTopics(topics []records.Topic) error {
	for _, topic := range topics {
		_, err := s.db.Exec(`
			INSERT INTO topics (id, name, views, pinned, locked, forum_id,
				author_id, author_name, moved_from, created_at, mirrored_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING`,
			topic.ID, topic.Name, topic.Views, topic.Pinned, topic.Locked,
			topic.ForumID, nullInt(topic.AuthorID), topic.AuthorName,
			nullInt(topic.MovedFrom), nullTime(topic.CreatedAt),
			topic.MirroredAt.Unix(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) AddPosts(posts []records.Post) error {
	for _, post := range posts {
		_, err := s.db.Exec(`
			INSERT INTO posts (id, author_id, topic_id, created_at, content, mirrored_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING`,
			post.ID, post.AuthorID, post.TopicID, post.CreatedAt.Unix(),
			post.Content, post.MirroredAt.Unix(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// AddStats upserts the site-wide counters, keyed by name.
func (s *Store) AddStats(stats []records.Stat) error {
	for _, stat := range stats {
		_, err := s.db.Exec(`
			INSERT INTO stats (name, value, mirrored_at)
			VALUES (?, ?, ?)
			ON CONFLICT (name) DO UPDATE
			SET value = excluded.value, mirrored_at = excluded.mirrored_at`,
			stat.Name, stat.Value, stat.MirroredAt.Unix(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// PatchTopicWhereNull fills author_id and created_at on a topic, but only
// where the column is currently null. Values already present, whether from
// the forum-page name lookup or an earlier page of the same topic, win.
func (s *Store) PatchTopicWhereNull(patch records.TopicPatch) error {
	if patch.AuthorID != nil {
		_, err := s.db.Exec(
			`UPDATE topics SET author_id = ? WHERE id = ? AND author_id IS NULL`,
			*patch.AuthorID, patch.ID,
		)
		if err != nil {
			return err
		}
	}
	if patch.CreatedAt != nil {
		_, err := s.db.Exec(
			`UPDATE topics SET created_at = ? WHERE id = ? AND created_at IS NULL`,
			patch.CreatedAt.Unix(), patch.ID,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// PatchUsers writes the quote and special text scraped from posts, but only
// where the column is currently null. A quote that arrived with the user's
// profile page, or from an earlier post, is never overwritten.
func (s *Store) PatchUsers(patches []records.UserPatch) error {
	for _, patch := range patches {
		if patch.Quote != nil {
			_, err := s.db.Exec(
				`UPDATE users SET quote = ? WHERE id = ? AND quote IS NULL`,
				*patch.Quote, patch.ID,
			)
			if err != nil {
				return err
			}
		}
		if patch.Special != nil {
			_, err := s.db.Exec(
				`UPDATE users SET special = ? WHERE id = ? AND special IS NULL`,
				*patch.Special, patch.ID,
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// UserIDByName finds a user by exact name. The boolean is false when no
// user has that name, which is an expected state, not an error.
func (s *Store) UserIDByName(name string) (int, bool, error) {
	var id int
	err := s.db.QueryRow(`SELECT id FROM users WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// MismatchedTopicAuthors returns every instance where a topic's recorded
// author_name differs from the current name of the user its author_id
// points at, grouped so each (author_name, user_name) pair carries the
// number of topics it covers.
func (s *Store) MismatchedTopicAuthors() ([]records.AuthorMismatch, error) {
	rows, err := s.db.Query(`
		SELECT COUNT(topics.id) AS topic_count,
		       topics.author_name,
		       users.name AS user_name
		FROM users
		INNER JOIN topics
			ON users.id = topics.author_id
			AND users.name != topics.author_name
		GROUP BY topics.author_name, users.name
		ORDER BY topics.author_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mismatches []records.AuthorMismatch
	for rows.Next() {
		var m records.AuthorMismatch
		if err := rows.Scan(&m.TopicCount, &m.AuthorName, &m.UserName); err != nil {
			return nil, err
		}
		mismatches = append(mismatches, m)
	}
	return mismatches, rows.Err()
}

// ClearTopicAuthors nulls author_id on every topic started by one of the
// given author names. Used by the author cleanup pass; idempotent.
func (s *Store) ClearTopicAuthors(authorNames []string) error {
	if len(authorNames) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(authorNames))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(authorNames))
	for i, name := range authorNames {
		args[i] = name
	}

	_, err := s.db.Exec(
		`UPDATE topics SET author_id = NULL WHERE author_name IN (`+placeholders+`)`,
		args...,
	)
	return err
}

// Counts returns the number of imported rows per table, for comparison
// against the scraped stats counters.
func (s *Store) Counts() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, table := range []string{"users", "categories", "forums", "topics", "posts"} {
		var n int64
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}

// Stats returns the scraped site-wide counters.
func (s *Store) Stats() ([]records.Stat, error) {
	rows, err := s.db.Query(`SELECT name, value, mirrored_at FROM stats ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []records.Stat
	for rows.Next() {
		var stat records.Stat
		var mirroredAt int64
		if err := rows.Scan(&stat.Name, &stat.Value, &mirroredAt); err != nil {
			return nil, err
		}
		stat.MirroredAt = time.Unix(mirroredAt, 0)
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
