package todo

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Metadata holds the fields extracted from a marker's raw text.
type Metadata struct {
	Text     string   // raw text with all tokens stripped, whitespace collapsed
	Priority int      // 0-3, count of leading ! run capped at 3
	Tags     []string // lowercase, deduplicated, sorted
	DueDate  string   // YYYY-MM-DD, empty when absent
}

var (
	tagRe  = regexp.MustCompile(`#(\w+(?:-\w+)*)`)
	dateRe = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	// A priority run must be bounded by whitespace or string edges,
	// so "!!not a priority" stays literal text.
	priorityRe = regexp.MustCompile(`(?:^|\s)(!+)(?:\s|$)`)
)

// ExtractMetadata parses priority, tags and due date out of a marker's
// raw text. Pure: identical input always yields identical output.
//
// Extraction order matters: tags are stripped first, then the due date,
// then the priority run, each operating on the already-stripped residue
// so later passes never re-consume removed tokens.
func ExtractMetadata(rawText string) Metadata {
	md := Metadata{}

	text := tagRe.ReplaceAllStringFunc(rawText, func(m string) string {
		md.Tags = append(md.Tags, strings.ToLower(m[1:]))
		return " "
	})
	md.Tags = dedupeSorted(md.Tags)

	text = extractDueDate(text, &md)
	text = extractPriority(text, &md)

	md.Text = strings.Join(strings.Fields(text), " ")
	return md
}

// extractDueDate removes the first standalone YYYY-MM-DD token that is a
// valid calendar date. Syntactically date-shaped but invalid tokens
// (month 13, day 40) are left as plain text and scanning continues.
func extractDueDate(text string, md *Metadata) string {
	for _, loc := range dateRe.FindAllStringSubmatchIndex(text, -1) {
		candidate := text[loc[2]:loc[3]]
		if _, err := time.Parse("2006-01-02", candidate); err != nil {
			continue
		}
		md.DueDate = candidate
		return text[:loc[2]] + " " + text[loc[3]:]
	}
	return text
}

// extractPriority removes the first whitespace-bounded run of ! characters.
// The priority value is capped at 3 even when the run is longer; any
// subsequent runs remain literal text.
func extractPriority(text string, md *Metadata) string {
	loc := priorityRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return text
	}
	md.Priority = min(loc[3]-loc[2], 3)
	return text[:loc[0]] + " " + text[loc[1]:]
}

func dedupeSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	sort.Strings(in)
	out := in[:1]
	for _, s := range in[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
