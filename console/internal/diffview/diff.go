// Package diffview computes line diffs between two texts and renders them as
// an original/optimized pair of panels.
package diffview

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Chunk is a run of whole lines that are unchanged, added or removed. Value
// keeps the lines' newlines so chunks concatenate back to the input.
type Chunk struct {
	Value   string `json:"value"`
	Added   bool   `json:"added,omitempty"`
	Removed bool   `json:"removed,omitempty"`
}

// Lines is the number of lines in the chunk.
func (c Chunk) Lines() int { return len(splitLines(c.Value)) }

// Compute diffs old against new line by line.
func Compute(old, new string) []Chunk {
	a, b := splitLines(old), splitLines(new)
	m := difflib.NewMatcherWithJunk(a, b, false, nil)

	var chunks []Chunk
	push := func(lines []string, added, removed bool) {
		if len(lines) == 0 {
			return
		}
		chunks = append(chunks, Chunk{Value: strings.Join(lines, ""), Added: added, Removed: removed})
	}
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e':
			push(a[op.I1:op.I2], false, false)
		case 'd':
			push(a[op.I1:op.I2], false, true)
		case 'i':
			push(b[op.J1:op.J2], true, false)
		case 'r':
			push(a[op.I1:op.I2], false, true)
			push(b[op.J1:op.J2], true, false)
		}
	}
	return chunks
}

// Left is the original panel: everything except added chunks.
func Left(chunks []Chunk) []Chunk {
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if !c.Added {
			out = append(out, c)
		}
	}
	return out
}

// Right is the updated panel: everything except removed chunks.
func Right(chunks []Chunk) []Chunk {
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if !c.Removed {
			out = append(out, c)
		}
	}
	return out
}

// Join concatenates chunk values.
func Join(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Value)
	}
	return b.String()
}

// Stats counts changed lines.
type Stats struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// Changed reports whether any line differs.
func (s Stats) Changed() bool { return s.Added > 0 || s.Removed > 0 }

// StatsOf tallies added and removed lines.
func StatsOf(chunks []Chunk) Stats {
	var s Stats
	for _, c := range chunks {
		switch {
		case c.Added:
			s.Added += c.Lines()
		case c.Removed:
			s.Removed += c.Lines()
		}
	}
	return s
}

// splitLines splits after each newline; a final line without a newline is
// kept as is and no empty trailing element is produced.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
