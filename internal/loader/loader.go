// Package loader is the batch driver: it walks a directory (or takes a
// single file) of mirror dumps, routes each file to the right extractor in
// dependency order, and hands the extracted records to a Sink.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sigmmma/Halomaps/internal/dates"
	"github.com/Sigmmma/Halomaps/internal/pages"
	"github.com/Sigmmma/Halomaps/internal/records"
	"github.com/Sigmmma/Halomaps/internal/report"
	"github.com/Sigmmma/Halomaps/internal/resolver"
)

// Sink receives extracted records. *store.Store implements it for real
// imports; Printer implements it for dry runs.
type Sink interface {
	AddCategory(records.Category) error
	UpdateCategorySorts([]records.CategorySort) error
	AddForums([]records.Forum) error
	AddUser(records.User) error
	AddTopics([]records.Topic) error
	AddPosts([]records.Post) error
	AddStats([]records.Stat) error
	PatchTopicWhereNull(records.TopicPatch) error
	PatchUsers([]records.UserPatch) error
	UserIDByName(name string) (int, bool, error)
	MismatchedTopicAuthors() ([]records.AuthorMismatch, error)
	ClearTopicAuthors(authorNames []string) error
}

// Options configures a Loader.
type Options struct {
	// Timezone of the server the mirror was scraped through. Every date in
	// the dump, including "Today @ <time>", is rendered in this zone.
	Timezone *time.Location
	Verbose  bool
}

// Loader drives the import. It is strictly sequential: one file is fully
// read, parsed, and persisted before the next begins. The per-kind
// processing order is itself the correctness mechanism that stands in for
// transactional foreign-key enforcement.
type Loader struct {
	sink Sink
	opts Options
	run  *report.Run
}

func New(sink Sink, opts Options) *Loader {
	if opts.Timezone == nil {
		// The mirror was rendered in a fixed zone; UTC only as a last
		// resort when the system has no tzdata for it.
		if loc, err := dates.Location(""); err == nil {
			opts.Timezone = loc
		} else {
			opts.Timezone = time.UTC
		}
	}
	return &Loader{
		sink: sink,
		opts: opts,
		run:  report.NewRun(),
	}
}

// Report returns the run report accumulated so far.
func (l *Loader) Report() *report.Run {
	return l.run
}

// Load imports a single mirror file, or every mirror file in a directory.
// After the files are in, it runs the topic author cleanup and the manual
// fix pass.
func (l *Loader) Load(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	switch {
	case info.Mode().IsRegular():
		kind, ok := pages.Classify(path)
		if !ok {
			fmt.Printf("No processor for file: %s\n", filepath.Base(path))
			l.run.AddSkipped(filepath.Base(path))
		} else if err := l.loadFile(path, kind); err != nil {
			return err
		}
	case info.IsDir():
		if err := l.loadDirectory(path); err != nil {
			return err
		}
	default:
		return fmt.Errorf("not a file or directory: %s", path)
	}

	if err := l.cleanInvalidTopicAuthors(); err != nil {
		return err
	}
	if err := l.applyManualFixes(); err != nil {
		return err
	}

	l.run.Finish()
	return nil
}

// loadDirectory enumerates the directory's regular files once, then runs
// each page kind in pages.ProcessOrder to completion before the next.
// Some records depend on others already being in the database (forums need
// their category, topics need forums and users, posts need topics), which
// is exactly what this ordering guarantees.
func (l *Loader) loadDirectory(directory string) error {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", directory, err)
	}

	fileset := make(map[string]bool)
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			fileset[entry.Name()] = true
		}
	}

	for _, kind := range pages.ProcessOrder {
		var matching []string
		for name := range fileset {
			if k, ok := pages.Classify(name); ok && k == kind {
				matching = append(matching, name)
			}
		}
		sort.Strings(matching)

		for _, name := range matching {
			delete(fileset, name)
			if err := l.loadFile(filepath.Join(directory, name), kind); err != nil {
				return err
			}
		}
	}

	// Whatever is left matched no kind. Report, don't abort.
	skipped := make([]string, 0, len(fileset))
	for name := range fileset {
		skipped = append(skipped, name)
	}
	sort.Strings(skipped)
	for _, name := range skipped {
		fmt.Printf("No processor for file: %s\n", name)
		l.run.AddSkipped(name)
	}

	return nil
}

// loadFile parses and persists one mirror file. Per-file failures are
// logged and recorded but do not stop the batch, except a stats template
// violation, which means a format assumption broke and the whole run needs
// investigation rather than a one-off skip.
func (l *Loader) loadFile(path string, kind pages.Kind) error {
	name := filepath.Base(path)
	if l.opts.Verbose {
		fmt.Println(name)
	}

	err := l.processFile(path, kind)
	switch {
	case errors.Is(err, pages.ErrStubPage):
		if l.opts.Verbose {
			fmt.Printf("Skipping stub file: %s\n", name)
		}
	case errors.Is(err, pages.ErrStatsTemplate):
		return fmt.Errorf("%s: %w", name, err)
	case err != nil:
		fmt.Printf("Failed to load %s: %v\n", name, err)
		l.run.AddFailure(name, err)
	default:
		l.run.AddProcessed(kind.String())
	}
	return nil
}

func (l *Loader) processFile(path string, kind pages.Kind) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Some pages in the mirror are empty stubs with just the common header.
	if pages.IsStub(doc) {
		return pages.ErrStubPage
	}

	switch kind {
	case pages.KindHomeCategory:
		return l.loadHomeCategory(doc, path)
	case pages.KindHome:
		return l.loadHome(doc)
	case pages.KindUser:
		return l.loadUser(doc, path)
	case pages.KindForum:
		return l.loadForum(doc, path)
	case pages.KindTopic:
		return l.loadTopic(doc, path, raw)
	}
	return fmt.Errorf("no processor for kind %v", kind)
}

func (l *Loader) loadHomeCategory(doc *goquery.Document, path string) error {
	page, err := pages.ExtractHomeCategory(doc, path, l.opts.Timezone)
	if err != nil {
		return err
	}
	if err := l.sink.AddCategory(page.Category); err != nil {
		return err
	}
	return l.sink.AddForums(page.Forums)
}

func (l *Loader) loadHome(doc *goquery.Document) error {
	page, err := pages.ExtractHome(doc, l.opts.Timezone)
	if err != nil {
		return err
	}
	if err := l.sink.UpdateCategorySorts(page.CategorySorts); err != nil {
		return err
	}
	return l.sink.AddStats(page.Stats)
}

func (l *Loader) loadUser(doc *goquery.Document, path string) error {
	user, err := pages.ExtractUser(doc, path, l.opts.Timezone)
	if err != nil {
		return err
	}
	return l.sink.AddUser(*user)
}

// loadForum resolves each topic's author name to a user ID before the
// topics are persisted. The "Started By" column reflects the name the
// author had when the topic was created, so the lookup fails for renamed
// and deleted users. That is expected, and the topic's first post will
// supply the author later.
func (l *Loader) loadForum(doc *goquery.Document, path string) error {
	page, err := pages.ExtractForum(doc, path, l.opts.Timezone)
	if err != nil {
		return err
	}

	for i := range page.Topics {
		topic := &page.Topics[i]
		id, found, err := l.sink.UserIDByName(topic.AuthorName)
		if err != nil {
			return err
		}
		if !found {
			fmt.Printf("No user found with name: %s\n", topic.AuthorName)
			continue
		}
		topic.AuthorID = &id
	}

	return l.sink.AddTopics(page.Topics)
}

func (l *Loader) loadTopic(doc *goquery.Document, path string, raw []byte) error {
	page, err := pages.ExtractTopic(doc, path, raw, l.opts.Timezone)
	if err != nil {
		return err
	}

	if page.TopicPatch != nil {
		if err := l.sink.PatchTopicWhereNull(*page.TopicPatch); err != nil {
			return err
		}
	}
	if err := l.sink.PatchUsers(page.UserPatches); err != nil {
		return err
	}
	return l.sink.AddPosts(page.Posts)
}

// cleanInvalidTopicAuthors runs the post-load author reconciliation pass.
func (l *Loader) cleanInvalidTopicAuthors() error {
	mismatches, err := l.sink.MismatchedTopicAuthors()
	if err != nil {
		return err
	}

	deleted := resolver.DeletedAuthors(mismatches)
	if l.opts.Verbose && len(deleted) > 0 {
		fmt.Printf("Clearing author for topics started by %d deleted users\n", len(deleted))
	}
	return l.sink.ClearTopicAuthors(deleted)
}

// applyManualFixes handles the few weird, one-off cases no amount of
// automatic edge-case detection catches.
func (l *Loader) applyManualFixes() error {
	return l.sink.ClearTopicAuthors(resolver.ManualDeletedAuthors)
}
