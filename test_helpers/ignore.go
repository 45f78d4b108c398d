package test_helpers

import (
	"strings"

	"github.com/sesam/prologcoin/logic"
	"github.com/sesam/prologcoin/term"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var (
	IgnoreUnexported = cmp.Options{
		cmpopts.IgnoreUnexported(logic.Comp{}),
		cmpopts.IgnoreUnexported(logic.Clause{}),
		cmpopts.IgnoreUnexported(logic.Var{}),
		cmpopts.IgnoreUnexported(term.Heap{}),
	}
)

func numSpaces(s string) int {
	n := 0
	for _, ch := range s {
		if ch != ' ' {
			break
		}
		n++
	}
	return n
}

// Dedent strips, from every line of s, the smallest number of leading
// spaces found among the lines that start with a space (lines with no
// leading space do not count), then trims surrounding whitespace — for
// comparing multi-line program/query fixtures written as indented backtick
// strings against rendered term output.
func Dedent(s string) string {
	lines := strings.Split(s, "\n")
	minSpaces := len(s)
	for _, line := range lines {
		n := numSpaces(line)
		if n == 0 {
			continue
		}
		if n < minSpaces {
			minSpaces = n
		}
	}
	prefix := strings.Repeat(" ", minSpaces)
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
