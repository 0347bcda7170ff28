package store

import (
	"testing"
	"time"

	"github.com/Sigmmma/Halomaps/internal/records"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int { return &i }

var mirroredAt = time.Unix(1674102720, 0)

func testUser(id int, name string) records.User {
	return records.User{
		ID:          id,
		Name:        name,
		JoinedAt:    time.Unix(1159666140, 0),
		LastVisitAt: mirroredAt,
		MirroredAt:  mirroredAt,
	}
}

func testTopic(id int, name, author string, authorID *int) records.Topic {
	return records.Topic{
		ID:         id,
		Name:       name,
		Views:      10,
		ForumID:    4,
		AuthorID:   authorID,
		AuthorName: author,
		MirroredAt: mirroredAt,
	}
}

func TestInsertIgnoresReimports(t *testing.T) {
	s := testStore(t)

	category := records.Category{ID: 2, Name: "General Discussion", MirroredAt: mirroredAt}
	if err := s.AddCategory(category); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}

	// A second import of the same page must not error or duplicate.
	category.Name = "Renamed Since"
	if err := s.AddCategory(category); err != nil {
		t.Fatalf("AddCategory (re-import): %v", err)
	}

	counts, err := s.Counts()
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts["categories"] != 1 {
		t.Errorf("categories count = %d, want 1", counts["categories"])
	}
}

func TestUpdateCategorySorts(t *testing.T) {
	s := testStore(t)

	for id, name := range map[int]string{2: "General Discussion", 15: "Technical Support"} {
		if err := s.AddCategory(records.Category{ID: id, Name: name, MirroredAt: mirroredAt}); err != nil {
			t.Fatalf("AddCategory: %v", err)
		}
	}

	err := s.UpdateCategorySorts([]records.CategorySort{
		{SortIndex: 0, Name: "Technical Support"},
		{SortIndex: 1, Name: "General Discussion"},
	})
	if err != nil {
		t.Fatalf("UpdateCategorySorts: %v", err)
	}

	var sortIndex int
	if err := s.db.QueryRow(`SELECT sort_index FROM categories WHERE id = 15`).Scan(&sortIndex); err != nil {
		t.Fatalf("query: %v", err)
	}
	if sortIndex != 0 {
		t.Errorf("category 15 sort_index = %d, want 0", sortIndex)
	}
}

func TestAddStatsUpserts(t *testing.T) {
	s := testStore(t)

	first := []records.Stat{{Name: "posts", Value: 100, MirroredAt: mirroredAt}}
	if err := s.AddStats(first); err != nil {
		t.Fatalf("AddStats: %v", err)
	}
	later := time.Unix(1674189120, 0)
	second := []records.Stat{{Name: "posts", Value: 150, MirroredAt: later}}
	if err := s.AddStats(second); err != nil {
		t.Fatalf("AddStats (upsert): %v", err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("len(stats) = %d, want 1", len(stats))
	}
	if stats[0].Value != 150 {
		t.Errorf("posts value = %d, want 150", stats[0].Value)
	}
	if !stats[0].MirroredAt.Equal(later) {
		t.Errorf("posts mirrored_at = %v, want %v", stats[0].MirroredAt, later)
	}
}

func TestUserIDByName(t *testing.T) {
	s := testStore(t)

	if err := s.AddUser(testUser(442, "MosesofEgypt")); err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	id, ok, err := s.UserIDByName("MosesofEgypt")
	if err != nil {
		t.Fatalf("UserIDByName: %v", err)
	}
	if !ok || id != 442 {
		t.Errorf("UserIDByName = %d/%v, want 442/true", id, ok)
	}

	_, ok, err = s.UserIDByName("nobody")
	if err != nil {
		t.Fatalf("UserIDByName (miss): %v", err)
	}
	if ok {
		t.Error("UserIDByName found a user that was never added")
	}
}

func TestPatchTopicWhereNull(t *testing.T) {
	s := testStore(t)

	if err := s.AddTopics([]records.Topic{testTopic(101, "Cool maps", "oldname", nil)}); err != nil {
		t.Fatalf("AddTopics: %v", err)
	}

	created := time.Unix(1159666140, 0)
	patch := records.TopicPatch{ID: 101, AuthorID: intPtr(442), CreatedAt: &created}
	if err := s.PatchTopicWhereNull(patch); err != nil {
		t.Fatalf("PatchTopicWhereNull: %v", err)
	}

	var authorID int
	var createdAt int64
	err := s.db.QueryRow(`SELECT author_id, created_at FROM topics WHERE id = 101`).Scan(&authorID, &createdAt)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if authorID != 442 || createdAt != created.Unix() {
		t.Errorf("topic = author %d created %d, want 442 %d", authorID, createdAt, created.Unix())
	}

	// A later page of the same topic must not overwrite the first page's
	// values.
	second := records.TopicPatch{ID: 101, AuthorID: intPtr(7), CreatedAt: &mirroredAt}
	if err := s.PatchTopicWhereNull(second); err != nil {
		t.Fatalf("PatchTopicWhereNull (second): %v", err)
	}
	if err := s.db.QueryRow(`SELECT author_id FROM topics WHERE id = 101`).Scan(&authorID); err != nil {
		t.Fatalf("query: %v", err)
	}
	if authorID != 442 {
		t.Errorf("author_id = %d after second patch, want 442", authorID)
	}
}

func TestPatchUsersWriteIfNull(t *testing.T) {
	s := testStore(t)

	user := testUser(442, "MosesofEgypt")
	user.Quote = strPtr("original quote")
	if err := s.AddUser(user); err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	// Nil fields are skipped; set fields only fill null columns.
	patches := []records.UserPatch{{ID: 442, Quote: nil, Special: strPtr("Helpful user")}}
	if err := s.PatchUsers(patches); err != nil {
		t.Fatalf("PatchUsers: %v", err)
	}

	var quote, special string
	err := s.db.QueryRow(`SELECT quote, special FROM users WHERE id = 442`).Scan(&quote, &special)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if quote != "original quote" {
		t.Errorf("quote = %q, want untouched original", quote)
	}
	if special != "Helpful user" {
		t.Errorf("special = %q, want %q", special, "Helpful user")
	}

	// A later post's patch must not clobber values already set, whether
	// they came from the profile page or an earlier post.
	later := []records.UserPatch{{ID: 442, Quote: strPtr("later post quote"), Special: strPtr("later special")}}
	if err := s.PatchUsers(later); err != nil {
		t.Fatalf("PatchUsers (later): %v", err)
	}
	err = s.db.QueryRow(`SELECT quote, special FROM users WHERE id = 442`).Scan(&quote, &special)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if quote != "original quote" {
		t.Errorf("quote = %q after later patch, want %q", quote, "original quote")
	}
	if special != "Helpful user" {
		t.Errorf("special = %q after later patch, want %q", special, "Helpful user")
	}
}

func TestMismatchedTopicAuthors(t *testing.T) {
	s := testStore(t)

	if err := s.AddUser(testUser(1, "newname")); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if err := s.AddUser(testUser(2, "bystander")); err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	topics := []records.Topic{
		// Matching author, no mismatch row.
		testTopic(1, "fine", "newname", intPtr(1)),
		// Two topics under the author's old name.
		testTopic(2, "renamed a", "oldname", intPtr(1)),
		testTopic(3, "renamed b", "oldname", intPtr(1)),
		// One topic whose deleted author got linked to a bystander.
		testTopic(4, "orphaned", "ghost", intPtr(2)),
		// Unresolved author, no mismatch row.
		testTopic(5, "unresolved", "missing", nil),
	}
	if err := s.AddTopics(topics); err != nil {
		t.Fatalf("AddTopics: %v", err)
	}

	mismatches, err := s.MismatchedTopicAuthors()
	if err != nil {
		t.Fatalf("MismatchedTopicAuthors: %v", err)
	}

	want := []records.AuthorMismatch{
		{TopicCount: 1, AuthorName: "ghost", UserName: "bystander"},
		{TopicCount: 2, AuthorName: "oldname", UserName: "newname"},
	}
	if len(mismatches) != len(want) {
		t.Fatalf("got %d mismatch rows, want %d: %+v", len(mismatches), len(want), mismatches)
	}
	for i := range want {
		if mismatches[i] != want[i] {
			t.Errorf("mismatch[%d] = %+v, want %+v", i, mismatches[i], want[i])
		}
	}
}

func TestClearTopicAuthors(t *testing.T) {
	s := testStore(t)

	topics := []records.Topic{
		testTopic(1, "keep", "newname", intPtr(1)),
		testTopic(2, "clear a", "ghost", intPtr(2)),
		testTopic(3, "clear b", "ghost", intPtr(2)),
	}
	if err := s.AddTopics(topics); err != nil {
		t.Fatalf("AddTopics: %v", err)
	}

	if err := s.ClearTopicAuthors([]string{"ghost"}); err != nil {
		t.Fatalf("ClearTopicAuthors: %v", err)
	}

	var cleared int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM topics WHERE author_id IS NULL`).Scan(&cleared)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if cleared != 2 {
		t.Errorf("cleared topics = %d, want 2", cleared)
	}

	var kept int
	err = s.db.QueryRow(`SELECT author_id FROM topics WHERE id = 1`).Scan(&kept)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if kept != 1 {
		t.Errorf("topic 1 author_id = %d, want 1 untouched", kept)
	}

	// No names is a no-op, not a syntax error.
	if err := s.ClearTopicAuthors(nil); err != nil {
		t.Errorf("ClearTopicAuthors(nil) = %v, want nil", err)
	}
}

func TestAddPostsAndCounts(t *testing.T) {
	s := testStore(t)

	posts := []records.Post{
		{ID: 9001, AuthorID: 442, TopicID: 101, CreatedAt: time.Unix(1159666140, 0), Content: "First post", MirroredAt: mirroredAt},
		{ID: 9002, AuthorID: 7, TopicID: 101, CreatedAt: mirroredAt, Content: "Welcome", MirroredAt: mirroredAt},
	}
	if err := s.AddPosts(posts); err != nil {
		t.Fatalf("AddPosts: %v", err)
	}
	// Same page imported twice.
	if err := s.AddPosts(posts); err != nil {
		t.Fatalf("AddPosts (re-import): %v", err)
	}

	counts, err := s.Counts()
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts["posts"] != 2 {
		t.Errorf("posts count = %d, want 2", counts["posts"])
	}
}
