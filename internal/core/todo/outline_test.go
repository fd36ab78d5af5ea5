package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOutlineFlat(t *testing.T) {
	root := BuildOutline("Checklist", "# Tasks\n- [x] one\n- [ ] two\n")

	assert.Equal(t, NodeSection, root.Kind)
	assert.Equal(t, "Checklist", root.Title)
	assert.Equal(t, 2, root.Total)
	assert.Equal(t, 1, root.Done)

	require.Len(t, root.Children, 1)
	section := root.Children[0]
	assert.Equal(t, "Tasks", section.Title)
	require.Len(t, section.Children, 2)
	assert.Equal(t, NodeTask, section.Children[0].Kind)
	assert.True(t, section.Children[0].Completed)
	assert.Equal(t, "two", section.Children[1].Title)
}

func TestBuildOutlineHeadingNesting(t *testing.T) {
	content := `# House
## Interior
- [ ] paint hallway
## Exterior
- [x] clean gutters
- [ ] stain deck
`

	root := BuildOutline("house.md", content)
	require.Len(t, root.Children, 1)

	house := root.Children[0]
	require.Len(t, house.Children, 2)

	interior := house.Children[0]
	assert.Equal(t, "Interior", interior.Title)
	assert.Equal(t, 1, interior.Total)
	assert.Equal(t, 0, interior.Done)

	exterior := house.Children[1]
	assert.Equal(t, "Exterior", exterior.Title)
	assert.Equal(t, 2, exterior.Total)
	assert.Equal(t, 1, exterior.Done)

	assert.Equal(t, 3, root.Total)
	assert.Equal(t, 1, root.Done)
}

func TestBuildOutlineBoldPseudoSections(t *testing.T) {
	content := `## Painting
- [ ] **Upstairs**
  - [ ] **Great Room**
    - [x] ceiling
    - [ ] walls
  - [ ] **Hallway**
    - [ ] trim
- [ ] **Downstairs**
  - [x] doors
`

	root := BuildOutline("paint.md", content)
	require.Len(t, root.Children, 1)

	painting := root.Children[0]
	assert.Equal(t, "Painting", painting.Title)
	require.Len(t, painting.Children, 2)

	upstairs := painting.Children[0]
	assert.Equal(t, NodeSection, upstairs.Kind)
	assert.Equal(t, "Upstairs", upstairs.Title)
	require.Len(t, upstairs.Children, 2)

	greatRoom := upstairs.Children[0]
	assert.Equal(t, "Great Room", greatRoom.Title)
	assert.Equal(t, 2, greatRoom.Total)
	assert.Equal(t, 1, greatRoom.Done)

	hallway := upstairs.Children[1]
	assert.Equal(t, "Hallway", hallway.Title)
	assert.Equal(t, 1, hallway.Total)

	downstairs := painting.Children[1]
	assert.Equal(t, "Downstairs", downstairs.Title)
	assert.Equal(t, 1, downstairs.Total)
	assert.Equal(t, 1, downstairs.Done)

	assert.Equal(t, 4, painting.Total)
	assert.Equal(t, 2, painting.Done)
}

func TestBuildOutlineSiblingAfterNestedSection(t *testing.T) {
	content := `- [ ] **Phase 1**
  - [ ] a
- [ ] **Phase 2**
  - [x] b
`

	root := BuildOutline("plan.md", content)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "Phase 1", root.Children[0].Title)
	assert.Equal(t, "Phase 2", root.Children[1].Title)
	assert.Equal(t, 2, root.Total)
	assert.Equal(t, 1, root.Done)
}

func TestBuildOutlineEmptyDocument(t *testing.T) {
	root := BuildOutline("empty.md", "")
	assert.Zero(t, root.Total)
	assert.Empty(t, root.Children)
}

func TestBoldTitle(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{raw: "**Upstairs**", want: "Upstairs", wantOK: true},
		{raw: "** Padded **", want: "Padded", wantOK: true},
		{raw: "plain task", wantOK: false},
		{raw: "**partial** bold", wantOK: false},
		{raw: "****", wantOK: false},
		{raw: "**a**b**", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := boldTitle(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
