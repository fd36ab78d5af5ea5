package todo

import "strings"

const contextMaxLen = 200

// ParseDocument runs the full per-document pipeline: marker parsing,
// metadata extraction, and context grouping. filePath is the
// corpus-relative path recorded on every produced todo. contextLines
// controls how many surrounding lines feed each todo's context excerpt.
func ParseDocument(filePath, content string, contextLines int) []Todo {
	lines := strings.Split(content, "\n")

	var todos []Todo
	g := newGrouper(filePath)

	for i, line := range lines {
		lineNumber := i + 1

		completed, raw, ok := ParseMarkerLine(line)
		if !ok {
			g.observe(line)
			continue
		}

		group := g.groupAt(lineNumber)
		md := ExtractMetadata(raw)

		todos = append(todos, Todo{
			ID:           MakeID(filePath, lineNumber, raw),
			FilePath:     filePath,
			LineNumber:   lineNumber,
			Completed:    completed,
			Text:         md.Text,
			RawText:      raw,
			Priority:     md.Priority,
			Tags:         md.Tags,
			DueDate:      md.DueDate,
			Context:      contextExcerpt(lines, i, contextLines),
			GroupID:      group.ID,
			GroupStart:   group.StartLine,
			Heading:      group.Heading,
			HeadingLevel: group.HeadingLevel,
		})
	}

	return todos
}

// contextExcerpt joins the non-blank, non-marker lines surrounding index
// i into a short disambiguation string, capped at contextMaxLen runes.
func contextExcerpt(lines []string, i, contextLines int) string {
	if contextLines <= 0 {
		return ""
	}

	start := max(0, i-contextLines)
	end := min(len(lines), i+contextLines+1)

	var parts []string
	for j := start; j < end; j++ {
		if j == i {
			continue
		}
		line := strings.TrimSpace(lines[j])
		if line == "" {
			continue
		}
		if _, _, ok := ParseMarkerLine(line); ok {
			continue
		}
		parts = append(parts, line)
	}

	excerpt := strings.Join(parts, " ")
	if runes := []rune(excerpt); len(runes) > contextMaxLen {
		excerpt = string(runes[:contextMaxLen])
	}
	return excerpt
}
