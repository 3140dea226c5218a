// Package docdiff computes unified-style plain-text diffs between two
// versions of a doc's body.
//
// Grounded on the teacher's internal/diff package (Compute/format/
// Colourise), trimmed to the parts import merge diagnostics need: the
// teacher's path/version-range CLI plumbing (Differ, Run, ParseVersionRange)
// has no analog here since there's no "doc diff" CLI verb in this module —
// diffs are only ever surfaced as import_docs merge diagnostics (spec.md
// §4.6, SPEC_FULL.md's grounding note for github.com/sergi/go-diff).
package docdiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines shown before/after changes.
const contextLines = 3

// Compute returns a unified-style plain-text diff between oldContent and
// newContent. An unchanged body produces an empty string.
func Compute(oldContent, newContent string) string {
	dmp := diffmatchpatch.New()
	d := dmp.DiffMain(oldContent, newContent, false)
	d = dmp.DiffCleanupSemantic(d)
	return format(d)
}

func format(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		if text == "" {
			continue
		}
		lines := strings.Split(text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for _, l := range lines {
				b.WriteString("- " + l + "\n")
			}
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				b.WriteString("+ " + l + "\n")
			}
		case diffmatchpatch.DiffEqual:
			if len(lines) > 2*contextLines {
				for i := range contextLines {
					b.WriteString("  " + lines[i] + "\n")
				}
				b.WriteString("  ...\n")
				for i := len(lines) - contextLines; i < len(lines); i++ {
					b.WriteString("  " + lines[i] + "\n")
				}
			} else {
				for _, l := range lines {
					b.WriteString("  " + l + "\n")
				}
			}
		}
	}
	return b.String()
}
