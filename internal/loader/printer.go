package loader

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Sigmmma/Halomaps/internal/records"
)

// Printer is the dry-run Sink: it serializes every record as JSON instead
// of persisting, so an import can be inspected against the schema without
// a live database. Name lookups always miss and the reconciliation query
// returns nothing, since there is no data to look in.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) print(label string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.w, "%s %s\n", label, data)
	return err
}

func (p *Printer) AddCategory(category records.Category) error {
	return p.print("Category", category)
}

func (p *Printer) UpdateCategorySorts(sorts []records.CategorySort) error {
	return p.print("Category sort update", sorts)
}

func (p *Printer) AddForums(forums []records.Forum) error {
	return p.print("Forums", forums)
}

func (p *Printer) AddUser(user records.User) error {
	return p.print("User", user)
}

func (p *Printer) AddTopics(topics []records.Topic) error {
	return p.print("Topics", topics)
}

func (p *Printer) AddPosts(posts []records.Post) error {
	return p.print("Posts", posts)
}

func (p *Printer) AddStats(stats []records.Stat) error {
	return p.print("Stats", stats)
}

func (p *Printer) PatchTopicWhereNull(patch records.TopicPatch) error {
	return p.print("Topic update", patch)
}

func (p *Printer) PatchUsers(patches []records.UserPatch) error {
	return p.print("User updates", patches)
}

func (p *Printer) UserIDByName(string) (int, bool, error) {
	return 0, false, nil
}

func (p *Printer) MismatchedTopicAuthors() ([]records.AuthorMismatch, error) {
	return nil, nil
}

func (p *Printer) ClearTopicAuthors(authorNames []string) error {
	return p.print("Clear topic authors", authorNames)
}
