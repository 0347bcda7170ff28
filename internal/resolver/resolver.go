// Package resolver detects and fixes incorrect topic authors after the
// bulk load.
//
// Topics display the author's name as it was when the topic was created,
// even if that user was since renamed or deleted. The import optimistically
// assumes a failed name lookup means a rename, and trusts the topic's first
// post to supply the author ID. That assumption does not hold when the
// author's opening post was itself deleted (usually along with the user),
// so this pass reviews every author_name whose resolved user now has a
// different name and decides which linkages to revoke.
//
// A single pass during load is not possible: the authoritative author can
// only be inferred through the first post, which has not been parsed yet
// when the topic row is created.
package resolver

import (
	"sort"

	"github.com/Sigmmma/Halomaps/internal/records"
)

// ManualDeletedAuthors lists users confirmed deleted by manual review even
// though their mismatch rows look like genuine renames (more than one topic
// where the same undeleted user happened to respond first). Keep this list
// small, named, and auditable: it encodes human-verified exceptions to an
// otherwise sound heuristic.
var ManualDeletedAuthors = []string{
	"God of Halo",
	"hellreaper192",
}

// DeletedAuthors classifies the mismatch rows and returns the author names
// whose topics must have author_id nulled, sorted for stable output.
//
// With rows shaped `topic_count | author_name | user_name`:
//
//   - One author name, one user name, topic_count > 1: a genuine rename.
//     Every first post agrees on the same user, so the linkage stands.
//   - One author name, several user names: contradiction. The author
//     cannot have been renamed to two different people, so the linkage is
//     spurious and the author's opening posts were deleted.
//   - One author name, one user name, exactly one topic: not enough
//     evidence to tell a rename from a coincidental first responder.
//     Manual review of every such case in the mirror found a deleted user
//     each time, so these are treated as deleted. ManualDeletedAuthors is
//     the escape hatch for the multi-topic cases this rule misses.
func DeletedAuthors(mismatches []records.AuthorMismatch) []string {
	// author_name -> (user_name -> topic count)
	byAuthor := make(map[string]map[string]int)
	for _, m := range mismatches {
		if byAuthor[m.AuthorName] == nil {
			byAuthor[m.AuthorName] = make(map[string]int)
		}
		byAuthor[m.AuthorName][m.UserName] = m.TopicCount
	}

	var deleted []string
	for author, users := range byAuthor {
		if len(users) > 1 {
			deleted = append(deleted, author)
			continue
		}
		for _, count := range users {
			if count == 1 {
				deleted = append(deleted, author)
			}
		}
	}

	sort.Strings(deleted)
	return deleted
}
