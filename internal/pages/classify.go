// Package pages classifies mirror filenames and extracts records from the
// rendered HTML behind them.
//
// The extraction code is a series of jank CSS selectors against equally
// jank server-rendered HTML. It is more art than science. Rule of thumb:
// Halomaps loves tables.
package pages

import (
	"path/filepath"
	"regexp"
)

// Kind identifies which of the five page layouts a mirror file holds.
type Kind int

const (
	KindHomeCategory Kind = iota
	KindHome
	KindUser
	KindForum
	KindTopic
)

func (k Kind) String() string {
	switch k {
	case KindHomeCategory:
		return "home-category"
	case KindHome:
		return "home"
	case KindUser:
		return "user"
	case KindForum:
		return "forum"
	case KindTopic:
		return "topic"
	}
	return "unknown"
}

// Filenames in the mirror preserve the original query strings, but the
// separator shows up as a literal "?", an URL-encoded "%3F", or an "_"
// depending on how the file was saved. Matching is case-insensitive
// because the mirror mixes cases freely.
var (
	homeFileRegex    = regexp.MustCompile(`(?i)index.cfm(?:\?|%3F|_)page=home$`)
	homeCatFileRegex = regexp.MustCompile(`(?i)index.cfm(?:\?|%3F|_)page=home&categoryid=(\d+)`)
	userFileRegex    = regexp.MustCompile(`(?i)index.cfm(?:\?|%3F|_)page=userinfo&viewuserid=(\d+)`)
	forumFileRegex   = regexp.MustCompile(`(?i)index.cfm(?:\?|%3F|_)page=forum&forumid=(\d+)(?:&start=(\d+))?`)
	topicFileRegex   = regexp.MustCompile(`(?i)index.cfm(?:\?|%3F|_)page=topic&topicid=(\d+)(?:&start=(\d+))?`)
)

var kindRegexes = map[Kind]*regexp.Regexp{
	KindHomeCategory: homeCatFileRegex,
	KindHome:         homeFileRegex,
	KindUser:         userFileRegex,
	KindForum:        forumFileRegex,
	KindTopic:        topicFileRegex,
}

// ProcessOrder is the order the batch driver must handle page kinds in.
// Forums reference their Category, Topics reference Forums and Users, and
// Posts reference Topics, so each kind has to land before the next.
var ProcessOrder = []Kind{
	KindHomeCategory,
	KindHome,
	KindUser,
	KindForum,
	KindTopic,
}

// Classify maps a mirror filename to its page kind. The second return is
// false for files no extractor handles; those are skipped, not fatal.
func Classify(filename string) (Kind, bool) {
	name := filepath.Base(filename)
	for _, kind := range ProcessOrder {
		if kindRegexes[kind].MatchString(name) {
			return kind, true
		}
	}
	return 0, false
}
