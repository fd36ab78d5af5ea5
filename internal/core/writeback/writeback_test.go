package writeback

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, maxSize int64) (*Engine, string) {
	t.Helper()
	root := t.TempDir()
	return New(root, maxSize, zerolog.Nop()), root
}

func writeDoc(t *testing.T, root, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
}

func readDoc(t *testing.T, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, name))
	require.NoError(t, err)
	return string(data)
}

func TestToggleFlipsOnlyTargetLine(t *testing.T) {
	eng, root := newTestEngine(t, 0)
	content := "# Plan\n\n- [ ] buy paint\n- [x] pick colors\ntrailing prose\n"
	writeDoc(t, root, "plan.md", content)

	res, err := eng.Toggle("plan.md", 3)
	require.NoError(t, err)
	assert.Equal(t, Result{FilePath: "plan.md", LineNumber: 3, Completed: true}, res)

	assert.Equal(t, "# Plan\n\n- [x] buy paint\n- [x] pick colors\ntrailing prose\n", readDoc(t, root, "plan.md"))
}

func TestToggleUnchecks(t *testing.T) {
	eng, root := newTestEngine(t, 0)
	writeDoc(t, root, "done.md", "- [x] water plants\n")

	res, err := eng.Toggle("done.md", 1)
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Equal(t, "- [ ] water plants\n", readDoc(t, root, "done.md"))
}

func TestToggleNormalizesUppercaseX(t *testing.T) {
	eng, root := newTestEngine(t, 0)
	writeDoc(t, root, "doc.md", "- [X] shout\n")

	res, err := eng.Toggle("doc.md", 1)
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Equal(t, "- [ ] shout\n", readDoc(t, root, "doc.md"))
}

func TestToggleRoundTripRestoresDocument(t *testing.T) {
	eng, root := newTestEngine(t, 0)
	content := "intro\n- [ ] task one #tag !!\n- [ ] task two\n"
	writeDoc(t, root, "doc.md", content)

	_, err := eng.Toggle("doc.md", 2)
	require.NoError(t, err)
	_, err = eng.Toggle("doc.md", 2)
	require.NoError(t, err)

	assert.Equal(t, content, readDoc(t, root, "doc.md"))
}

func TestTogglePreservesCRLF(t *testing.T) {
	eng, root := newTestEngine(t, 0)
	writeDoc(t, root, "win.md", "# Title\r\n- [ ] windows task\r\n- [ ] other\r\n")

	_, err := eng.Toggle("win.md", 2)
	require.NoError(t, err)

	assert.Equal(t, "# Title\r\n- [x] windows task\r\n- [ ] other\r\n", readDoc(t, root, "win.md"))
}

func TestTogglePreservesMixedEndingsAndNoFinalNewline(t *testing.T) {
	eng, root := newTestEngine(t, 0)
	writeDoc(t, root, "mixed.md", "one\r\n- [ ] target\ntwo\r\n- [ ] last no newline")

	_, err := eng.Toggle("mixed.md", 2)
	require.NoError(t, err)
	assert.Equal(t, "one\r\n- [x] target\ntwo\r\n- [ ] last no newline", readDoc(t, root, "mixed.md"))

	_, err = eng.Toggle("mixed.md", 4)
	require.NoError(t, err)
	assert.Equal(t, "one\r\n- [x] target\ntwo\r\n- [x] last no newline", readDoc(t, root, "mixed.md"))
}

func TestTogglePreservesIndentAndBullet(t *testing.T) {
	eng, root := newTestEngine(t, 0)
	writeDoc(t, root, "nest.md", "- [ ] parent\n  * [ ] child\n\t+ [ ] tabbed\n")

	_, err := eng.Toggle("nest.md", 2)
	require.NoError(t, err)
	_, err = eng.Toggle("nest.md", 3)
	require.NoError(t, err)

	assert.Equal(t, "- [ ] parent\n  * [x] child\n\t+ [x] tabbed\n", readDoc(t, root, "nest.md"))
}

func TestToggleMissingFile(t *testing.T) {
	eng, _ := newTestEngine(t, 0)

	_, err := eng.Toggle("gone.md", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleRejectsEscapingPath(t *testing.T) {
	eng, root := newTestEngine(t, 0)
	writeDoc(t, root, "doc.md", "- [ ] here\n")

	for _, path := range []string{"../doc.md", "/etc/passwd", "a/../../doc.md"} {
		_, err := eng.Toggle(path, 1)
		assert.ErrorIs(t, err, ErrNotFound, path)
	}
}

func TestToggleStaleLineOutOfBounds(t *testing.T) {
	eng, root := newTestEngine(t, 0)
	content := "- [ ] only line\n"
	writeDoc(t, root, "doc.md", content)

	for _, line := range []int{0, -1, 2, 100} {
		_, err := eng.Toggle("doc.md", line)
		assert.ErrorIs(t, err, ErrStaleReference, "line %d", line)
	}
	assert.Equal(t, content, readDoc(t, root, "doc.md"))
}

func TestToggleStaleNotAMarker(t *testing.T) {
	eng, root := newTestEngine(t, 0)
	content := "# Heading\nplain prose\n- [ ] real task\n-[ ] missing space\n"
	writeDoc(t, root, "doc.md", content)

	for _, line := range []int{1, 2, 4} {
		_, err := eng.Toggle("doc.md", line)
		assert.ErrorIs(t, err, ErrStaleReference, "line %d", line)
	}
	assert.Equal(t, content, readDoc(t, root, "doc.md"))
}

func TestToggleTooLarge(t *testing.T) {
	eng, root := newTestEngine(t, 16)
	content := "- [ ] this line alone is longer than the limit\n"
	writeDoc(t, root, "big.md", content)

	_, err := eng.Toggle("big.md", 1)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, content, readDoc(t, root, "big.md"))
}

func TestTogglePreservesPermissions(t *testing.T) {
	eng, root := newTestEngine(t, 0)
	path := filepath.Join(root, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("- [ ] task\n"), 0o600))

	_, err := eng.Toggle("doc.md", 1)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestToggleLeavesNoTempFiles(t *testing.T) {
	eng, root := newTestEngine(t, 0)
	writeDoc(t, root, "doc.md", "- [ ] task\n")

	_, err := eng.Toggle("doc.md", 1)
	require.NoError(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc.md", entries[0].Name())
}

func TestToggleConcurrentSameFile(t *testing.T) {
	eng, root := newTestEngine(t, 0)
	writeDoc(t, root, "doc.md", "- [ ] a\n- [ ] b\n- [ ] c\n- [ ] d\n")

	var wg sync.WaitGroup
	for line := 1; line <= 4; line++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.Toggle("doc.md", line)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, "- [x] a\n- [x] b\n- [x] c\n- [x] d\n", readDoc(t, root, "doc.md"))
}

func TestToggleConcurrentDifferentFiles(t *testing.T) {
	eng, root := newTestEngine(t, 0)
	writeDoc(t, root, "a.md", "- [ ] first\n")
	writeDoc(t, root, "b.md", "- [ ] second\n")

	var wg sync.WaitGroup
	for _, name := range []string{"a.md", "b.md"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.Toggle(name, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, "- [x] first\n", readDoc(t, root, "a.md"))
	assert.Equal(t, "- [x] second\n", readDoc(t, root, "b.md"))
}

func TestToggleSubdirectory(t *testing.T) {
	eng, root := newTestEngine(t, 0)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "projects"), 0o755))
	writeDoc(t, root, "projects/kitchen.md", "- [ ] demo cabinets\n")

	res, err := eng.Toggle("projects/kitchen.md", 1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("projects", "kitchen.md"), res.FilePath)
	assert.Equal(t, "- [x] demo cabinets\n", readDoc(t, root, "projects/kitchen.md"))
}

func TestSplitKeepEnds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "lf", input: "a\nb\n", want: []string{"a\n", "b\n"}},
		{name: "crlf", input: "a\r\nb\r\n", want: []string{"a\r\n", "b\r\n"}},
		{name: "no final newline", input: "a\nb", want: []string{"a\n", "b"}},
		{name: "blank lines", input: "\n\n", want: []string{"\n", "\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitKeepEnds(tt.input)
			assert.Equal(t, tt.want, got)
			// Rejoining must reproduce the input exactly.
			joined := ""
			for _, l := range got {
				joined += l
			}
			assert.Equal(t, tt.input, joined)
		})
	}
}
