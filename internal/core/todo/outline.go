package todo

import "strings"

// NodeKind tags an outline node as either a section or a task leaf.
type NodeKind string

const (
	NodeSection NodeKind = "section"
	NodeTask    NodeKind = "task"
)

// OutlineNode is one node of a document's checklist outline: a tagged
// variant that is either a section (heading, or a bold marker acting as
// a pseudo-heading over deeper-indented markers) containing children, or
// a task leaf. Total and Done roll up completion counts over the
// subtree so callers can render per-section progress.
type OutlineNode struct {
	Kind      NodeKind       `json:"kind"`
	Title     string         `json:"title"`
	Line      int            `json:"line,omitempty"`
	Completed bool           `json:"completed,omitempty"`
	Total     int            `json:"total"`
	Done      int            `json:"done"`
	Children  []*OutlineNode `json:"children,omitempty"`
}

// outlineFrame tracks one open section during the build walk.
// headingLevel is set for #-heading sections (and 0 for the root);
// pseudo-sections from bold markers carry their marker indent instead.
type outlineFrame struct {
	node         *OutlineNode
	headingLevel int
	indent       int // -1 for heading sections and the root
}

// BuildOutline parses content into a nested checklist tree. Headings
// nest by level; bold-only markers ("- [ ] **Upstairs**") open
// pseudo-sections over markers indented below them, so arbitrarily deep
// checklist hierarchies get one uniform representation.
func BuildOutline(title, content string) *OutlineNode {
	root := &OutlineNode{Kind: NodeSection, Title: title}
	stack := []outlineFrame{{node: root, headingLevel: 0, indent: -1}}

	top := func() *outlineFrame { return &stack[len(stack)-1] }

	for i, line := range strings.Split(content, "\n") {
		lineNumber := i + 1

		if text, level, ok := ParseHeadingLine(line); ok {
			// Pop pseudo-sections and any heading at the same or
			// deeper level.
			for len(stack) > 1 && (top().indent >= 0 || top().headingLevel >= level) {
				stack = stack[:len(stack)-1]
			}
			node := &OutlineNode{Kind: NodeSection, Title: text, Line: lineNumber}
			top().node.Children = append(top().node.Children, node)
			stack = append(stack, outlineFrame{node: node, headingLevel: level, indent: -1})
			continue
		}

		completed, raw, ok := ParseMarkerLine(line)
		if !ok {
			continue
		}

		indent := markerIndent(line)
		for len(stack) > 1 && top().indent >= indent {
			stack = stack[:len(stack)-1]
		}

		if inner, isBold := boldTitle(raw); isBold {
			node := &OutlineNode{Kind: NodeSection, Title: inner, Line: lineNumber}
			top().node.Children = append(top().node.Children, node)
			stack = append(stack, outlineFrame{node: node, headingLevel: top().headingLevel, indent: indent})
			continue
		}

		top().node.Children = append(top().node.Children, &OutlineNode{
			Kind:      NodeTask,
			Title:     strings.ReplaceAll(raw, "**", ""),
			Line:      lineNumber,
			Completed: completed,
		})
	}

	rollup(root)
	return root
}

// rollup computes subtree completion counts post-order.
func rollup(n *OutlineNode) (total, done int) {
	if n.Kind == NodeTask {
		n.Total = 1
		if n.Completed {
			n.Done = 1
		}
		return n.Total, n.Done
	}
	for _, c := range n.Children {
		t, d := rollup(c)
		n.Total += t
		n.Done += d
	}
	return n.Total, n.Done
}

// markerIndent measures a marker line's indent depth: two spaces (or one
// tab) per level.
func markerIndent(line string) int {
	spaces := 0
	for _, r := range line {
		switch r {
		case ' ':
			spaces++
		case '\t':
			spaces += 2
		default:
			return spaces / 2
		}
	}
	return spaces / 2
}

// boldTitle reports whether raw is entirely bold-wrapped, which marks a
// pseudo-heading rather than an actionable task.
func boldTitle(raw string) (string, bool) {
	if len(raw) <= 4 || !strings.HasPrefix(raw, "**") || !strings.HasSuffix(raw, "**") {
		return "", false
	}
	inner := strings.TrimSpace(raw[2 : len(raw)-2])
	if inner == "" || strings.Contains(inner, "**") {
		return "", false
	}
	return inner, true
}
