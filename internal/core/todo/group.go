package todo

import (
	"regexp"
	"strings"
)

var headingRe = regexp.MustCompile(`^(#+)\s+(.*)$`)

// ParseHeadingLine parses a markdown heading line. Levels deeper than 6
// are clamped to 6.
func ParseHeadingLine(line string) (text string, level int, ok bool) {
	m := headingRe.FindStringSubmatch(line)
	if m == nil {
		return "", 0, false
	}
	return strings.TrimSpace(m[2]), min(len(m[1]), 6), true
}

// grouper tracks the current heading and group while walking a
// document's lines in order. A group is broken by a heading change or by
// any non-blank line that is neither a marker nor a heading; blank lines
// between markers keep the group open.
type grouper struct {
	filePath     string
	heading      string
	headingLevel int
	group        *Group
}

func newGrouper(filePath string) *grouper {
	return &grouper{filePath: filePath}
}

// observe classifies one non-marker line and updates state.
func (g *grouper) observe(line string) {
	if text, level, ok := ParseHeadingLine(line); ok {
		g.heading = text
		g.headingLevel = level
		g.group = nil
		return
	}
	if strings.TrimSpace(line) != "" {
		g.group = nil
	}
}

// groupAt returns the enclosing group for a marker at the given line,
// opening a new group if none is current. Never returns nil: an isolated
// marker still forms a group of size one.
func (g *grouper) groupAt(lineNumber int) Group {
	if g.group == nil {
		g.group = &Group{
			ID:           MakeGroupID(g.filePath, lineNumber),
			FilePath:     g.filePath,
			StartLine:    lineNumber,
			Heading:      g.heading,
			HeadingLevel: g.headingLevel,
		}
	}
	return *g.group
}
