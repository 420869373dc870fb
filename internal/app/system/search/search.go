// internal/app/system/search/search.go
package search

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/adminusers/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
)

// DebounceDelay is how long search input must settle before the search
// request is sent.
const DebounceDelay = 250 * time.Millisecond

// userIDLen is the length of ids issued by the remote profile API.
const userIDLen = 26

var strict = bluemonday.StrictPolicy()

// tagPattern matches a complete element tag. A lone "<" as in "a<b" is
// not markup and is left alone.
var tagPattern = regexp.MustCompile(`<[a-zA-Z!/][^<>]*>`)

// NormalizeTerm trims the term and strips markup pasted into the search
// box. Text without complete tags is only trimmed, entities included, so
// NormalizeTerm(NormalizeTerm(t)) == NormalizeTerm(t).
func NormalizeTerm(term string) string {
	term = strings.TrimSpace(term)
	for tagPattern.MatchString(term) {
		// Sanitize escapes entities; undo that so "o'brien" stays searchable.
		next := strings.TrimSpace(html.UnescapeString(strict.Sanitize(term)))
		if next == term {
			break
		}
		term = next
	}
	return term
}

// Options builds the search payload. Inactive accounts are always
// included; role is added only when set.
//
// The status filter does not take part: search results include inactive
// users whatever the panel's status filter says.
func Options(role string) models.SearchOptions {
	opts := models.SearchOptions{AllowInactive: true}
	if r := strings.TrimSpace(role); r != "" {
		opts.Role = r
	}
	return opts
}

// LooksLikeUserID reports whether term has the shape of a user id
// (26 lowercase letters or digits), in which case a search that finds
// nothing is retried as a direct lookup.
func LooksLikeUserID(term string) bool {
	if len(term) != userIDLen {
		return false
	}
	for i := 0; i < len(term); i++ {
		c := term[i]
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
