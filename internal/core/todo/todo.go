// Package todo defines the todo domain model extracted from markdown
// checkbox markers, plus the line grammar shared by the corpus scanner
// and the write-back engine.
package todo

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// Todo is one fully parsed task marker with extracted metadata.
//
// ID is stable only within one index generation: it is derived from the
// file path, line number, and raw text, so any edit to the source document
// invalidates it. Callers must re-resolve after a rescan.
type Todo struct {
	ID           string   `json:"id"`
	FilePath     string   `json:"file"`
	LineNumber   int      `json:"line_number"`
	Completed    bool     `json:"completed"`
	Text         string   `json:"text"`
	RawText      string   `json:"raw_text"`
	Priority     int      `json:"priority"`
	Tags         []string `json:"tags"`
	DueDate      string   `json:"due_date,omitempty"`
	Context      string   `json:"context,omitempty"`
	GroupID      string   `json:"group_id"`
	GroupStart   int      `json:"group_start"`
	Heading      string   `json:"heading,omitempty"`
	HeadingLevel int      `json:"heading_level,omitempty"`
}

// Group is a maximal run of consecutive markers sharing one heading
// context. StartLine anchors navigation; every todo belongs to exactly
// one group, even a group of size one.
type Group struct {
	ID           string `json:"id"`
	FilePath     string `json:"file"`
	StartLine    int    `json:"start_line"`
	Heading      string `json:"heading,omitempty"`
	HeadingLevel int    `json:"heading_level,omitempty"`
}

// MakeID derives the synthetic todo identifier from its locator and raw
// text. Deterministic: identical inputs always yield the same ID.
func MakeID(filePath string, lineNumber int, rawText string) string {
	return shortHash(fmt.Sprintf("%s:%d:%s", filePath, lineNumber, rawText))
}

// MakeGroupID derives a group identifier from the group's file path and
// start line.
func MakeGroupID(filePath string, startLine int) string {
	return shortHash(fmt.Sprintf("%s:%d", filePath, startLine))
}

func shortHash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
