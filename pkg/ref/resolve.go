package ref

import (
	"slices"
	"strings"
)

// Table is a symbol table of output keys in insertion order.
type Table interface {
	// EachKey calls fn for every key, oldest first, until fn returns false.
	EachKey(fn func(key string) bool)
}

// Match is the outcome of a successful resolution.
type Match struct {
	Ref Ref
	// Key is the symbol table key that matched.
	Key string
	// SubPath is the part of the reference below the matched output,
	// without a leading ".".
	SubPath string
}

// Resolve binds r to the longest table key that prefixes r.Key.
// When several keys of the same length match, the first inserted wins.
func Resolve(r Ref, table Table) (Match, bool) {
	best := ""
	found := false
	table.EachKey(func(key string) bool {
		if strings.HasPrefix(r.Key, key) && (!found || len(key) > len(best)) {
			best, found = key, true
		}
		return true
	})
	if !found {
		return Match{}, false
	}
	rest := r.Key[len(best):]
	rest = strings.TrimPrefix(rest, ".")
	return Match{Ref: r, Key: best, SubPath: rest}, true
}

// ResolveString parses s and resolves it in one step.
func ResolveString(s string, table Table) (Match, bool) {
	r, ok := Parse(s)
	if !ok {
		return Match{}, false
	}
	return Resolve(r, table)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
