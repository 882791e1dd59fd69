// Package golden compares rendered terminal output against expected text and
// reports mismatches as a readable character diff.
package golden

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff returns a line-oriented description of how actual differs from expected.
// It returns an empty string when both are equal.
func Diff(expected, actual string) string {
	if expected == actual {
		return ""
	}

	var b strings.Builder
	b.WriteString("--- Expected ---\n")
	writeNumbered(&b, expected)
	b.WriteString("--- Actual ---\n")
	writeNumbered(&b, actual)
	b.WriteString("--- Diff ---\n")

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(expected, actual, false)
	for _, d := range dmp.DiffCleanupSemantic(diffs) {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(&b, "- %q\n", d.Text)
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(&b, "+ %q\n", d.Text)
		case diffmatchpatch.DiffEqual:
			if len(d.Text) > 50 {
				fmt.Fprintf(&b, "  %q...\n", d.Text[:47])
			} else {
				fmt.Fprintf(&b, "  %q\n", d.Text)
			}
		}
	}
	return b.String()
}

// Equal fails the test with a diff when actual does not match expected.
// Trailing newlines are ignored on both sides.
func Equal(t testing.TB, expected, actual string) bool {
	t.Helper()
	diff := Diff(strings.TrimRight(expected, "\n"), strings.TrimRight(actual, "\n"))
	if diff == "" {
		return true
	}
	t.Errorf("output mismatch\n%s", diff)
	return false
}

func writeNumbered(b *strings.Builder, content string) {
	for i, line := range strings.Split(content, "\n") {
		fmt.Fprintf(b, "%4d| %s\n", i+1, line)
	}
}
