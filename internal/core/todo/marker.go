package todo

import (
	"bufio"
	"regexp"
	"strings"
)

// Marker is one raw checkbox line before metadata extraction.
type Marker struct {
	LineNumber int    // 1-based offset within the document
	Completed  bool   // [x] or [X]
	RawText    string // trimmed text after the checkbox token
}

// markerRe matches the task marker grammar: optional leading whitespace,
// a list bullet, whitespace, a checkbox token, then optionally whitespace
// and the rest of the line. A checkbox with nothing after it is a valid
// empty marker.
var markerRe = regexp.MustCompile(`^\s*[-*+]\s+\[([ xX])\](?:\s(.*))?$`)

// ParseMarkerLine parses a single line against the marker grammar.
// Returns ok=false for lines that are not task markers.
func ParseMarkerLine(line string) (completed bool, rawText string, ok bool) {
	m := markerRe.FindStringSubmatch(line)
	if m == nil {
		return false, "", false
	}
	return m[1] == "x" || m[1] == "X", strings.TrimSpace(m[2]), true
}

// CheckboxIndex locates the checkbox state character within a marker
// line. Returns the byte offset of the character between the brackets,
// its current value, and ok=false when the line does not match the
// grammar. Used by the write-back engine to flip exactly one byte.
func CheckboxIndex(line string) (offset int, completed bool, ok bool) {
	loc := markerRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return 0, false, false
	}
	state := line[loc[2]]
	return loc[2], state == 'x' || state == 'X', true
}

// MarkerScanner iterates over a document's task marker lines in file
// order. Like bufio.Scanner it is single-use: once Scan returns false
// the sequence is exhausted and cannot be restarted.
type MarkerScanner struct {
	sc   *bufio.Scanner
	line int
	cur  Marker
}

// NewMarkerScanner returns a scanner over content's marker lines.
func NewMarkerScanner(content string) *MarkerScanner {
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &MarkerScanner{sc: sc}
}

// Scan advances to the next marker line, returning false when the
// document is exhausted.
func (s *MarkerScanner) Scan() bool {
	for s.sc.Scan() {
		s.line++
		completed, raw, ok := ParseMarkerLine(s.sc.Text())
		if !ok {
			continue
		}
		s.cur = Marker{LineNumber: s.line, Completed: completed, RawText: raw}
		return true
	}
	return false
}

// Marker returns the marker found by the last successful Scan.
func (s *MarkerScanner) Marker() Marker {
	return s.cur
}
