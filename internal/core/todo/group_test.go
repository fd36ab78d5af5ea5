package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeadingLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantOK    bool
		wantText  string
		wantLevel int
	}{
		{name: "h1", line: "# Title", wantOK: true, wantText: "Title", wantLevel: 1},
		{name: "h2", line: "## Shopping", wantOK: true, wantText: "Shopping", wantLevel: 2},
		{name: "deep heading clamped", line: "######## Deep", wantOK: true, wantText: "Deep", wantLevel: 6},
		{name: "no space after hashes", line: "#tag"},
		{name: "plain text", line: "hello"},
		{name: "marker", line: "- [ ] task"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, level, ok := ParseHeadingLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

func TestGrouping(t *testing.T) {
	t.Run("consecutive markers share a group", func(t *testing.T) {
		todos := ParseDocument("notes.md", "## Shopping\n- [ ] milk\n- [ ] eggs\n", 0)
		require.Len(t, todos, 2)

		assert.Equal(t, todos[0].GroupID, todos[1].GroupID)
		assert.Equal(t, 2, todos[0].GroupStart)
		assert.Equal(t, 2, todos[1].GroupStart)
		assert.Equal(t, "Shopping", todos[0].Heading)
		assert.Equal(t, 2, todos[0].HeadingLevel)
	})

	t.Run("blank lines keep the group open", func(t *testing.T) {
		todos := ParseDocument("notes.md", "- [ ] one\n\n\n- [ ] two\n", 0)
		require.Len(t, todos, 2)
		assert.Equal(t, todos[0].GroupID, todos[1].GroupID)
	})

	t.Run("intervening prose starts a new group", func(t *testing.T) {
		todos := ParseDocument("notes.md", "## Shopping\n- [ ] milk\nremember the coupons\n- [ ] eggs\n", 0)
		require.Len(t, todos, 2)

		assert.NotEqual(t, todos[0].GroupID, todos[1].GroupID)
		// Same heading context on both sides of the break.
		assert.Equal(t, "Shopping", todos[0].Heading)
		assert.Equal(t, "Shopping", todos[1].Heading)
	})

	t.Run("heading change starts a new group", func(t *testing.T) {
		todos := ParseDocument("notes.md", "## A\n- [ ] one\n## B\n- [ ] two\n", 0)
		require.Len(t, todos, 2)

		assert.NotEqual(t, todos[0].GroupID, todos[1].GroupID)
		assert.Equal(t, "A", todos[0].Heading)
		assert.Equal(t, "B", todos[1].Heading)
	})

	t.Run("marker before any heading", func(t *testing.T) {
		todos := ParseDocument("notes.md", "- [ ] early bird\n# Later\n", 0)
		require.Len(t, todos, 1)

		assert.Empty(t, todos[0].Heading)
		assert.Zero(t, todos[0].HeadingLevel)
		assert.NotEmpty(t, todos[0].GroupID)
	})

	t.Run("isolated marker forms a group of one", func(t *testing.T) {
		todos := ParseDocument("notes.md", "prose\n- [ ] alone\nprose\n", 0)
		require.Len(t, todos, 1)

		assert.NotEmpty(t, todos[0].GroupID)
		assert.Equal(t, 2, todos[0].GroupStart)
		assert.Equal(t, MakeGroupID("notes.md", 2), todos[0].GroupID)
	})

	t.Run("group start never exceeds member line", func(t *testing.T) {
		todos := ParseDocument("notes.md", "# H\n- [ ] a\n- [ ] b\n\n- [ ] c\n", 0)
		for _, td := range todos {
			assert.LessOrEqual(t, td.GroupStart, td.LineNumber)
		}
	})
}
