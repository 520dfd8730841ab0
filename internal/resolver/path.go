package resolver

import (
	"strconv"
	"strings"

	"github.com/konflabs/konf-server/internal/loader"
	"github.com/konflabs/konf-server/internal/value"
)

// splitHead matches the template path's leading segments against known
// logical names in table, per §4.E step 1. Most logical names contain no
// dot, so the common case resolves on the first "." boundary; the
// algorithm still tries every prefix length (longest first) because a
// file such as "app.v2.yaml" yields a logical name with a dot in it.
// Exactly one prefix length matching a known name is required;
// more than one is ambiguous, none is an unknown reference.
func splitHead(table importTable, path string) (name string, rest []string, err error) {
	segments := strings.Split(path, ".")

	type match struct {
		length int
		name   string
	}
	var matches []match
	for length := len(segments); length >= 1; length-- {
		candidate := strings.Join(segments[:length], ".")
		if _, ok := table[candidate]; ok {
			matches = append(matches, match{length: length, name: candidate})
		}
	}

	switch len(matches) {
	case 0:
		return "", nil, unknownKey(path)
	case 1:
		m := matches[0]
		return m.name, segments[m.length:], nil
	default:
		return "", nil, ambiguousRef(path)
	}
}

// walkPath descends doc's unrendered body by the remaining path segments,
// per §4.E step 2: a segment is a sequence index when it parses as a
// non-negative base-10 integer and the current node is a Sequence,
// otherwise it is a mapping key.
func walkPath(doc *loader.Document, segments []string, fullPath string) (value.Value, error) {
	current := doc.Body
	for _, seg := range segments {
		if current.Kind() == value.Sequence {
			if isDigitString(seg) {
				idx, err := strconv.Atoi(seg)
				if err != nil {
					return value.Value{}, badNumber(fullPath, seg)
				}
				next, ok := current.Index(idx)
				if !ok {
					return value.Value{}, unknownKey(fullPath)
				}
				current = next
				continue
			}
		}
		next, ok := current.Get(seg)
		if !ok {
			return value.Value{}, unknownKey(fullPath)
		}
		current = next
	}
	return current, nil
}

// isDigitString reports whether seg is composed entirely of base-10
// digits, i.e. looks like a non-negative integer regardless of whether it
// fits in an int. A segment that fails this check is a mapping key
// attempt, not a malformed index, and walkPath falls through to Get
// accordingly; one that passes but still fails strconv.Atoi (too many
// digits to fit in an int) is a malformed index, reported as badNumber.
func isDigitString(seg string) bool {
	if seg == "" {
		return false
	}
	for _, c := range seg {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
