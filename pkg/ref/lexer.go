package ref

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepflow/pkg/domain"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Ref is a parsed template reference.
type Ref struct {
	// Raw is the complete parameter string, delimiters included.
	Raw string
	// Key is the text between the delimiters, e.g. "__3.source.id".
	Key string
	// ID is the word run following the "__" prefix, e.g. "3".
	ID string
	// Tail is whatever follows ID inside Key, e.g. ".source.id".
	Tail string
}

// ScopeID returns the id of the node whose path governs visibility:
// ID itself when it is a decimal number, otherwise the global scope.
func (r Ref) ScopeID() string {
	if isDigits(r.ID) {
		return r.ID
	}
	return domain.GlobalScopeID
}

// IsGlobal reports whether the reference addresses the global scope.
func (r Ref) IsGlobal() bool {
	return r.ScopeID() == domain.GlobalScopeID
}

func (r Ref) String() string { return r.Raw }

// Parse reads s as a whole-string reference. It reports false when s is
// not a reference; text around a reference is not allowed.
func Parse(s string) (Ref, bool) {
	if len(s) < len(openDelim)+len(closeDelim) ||
		!strings.HasPrefix(s, openDelim) || !strings.HasSuffix(s, closeDelim) {
		return Ref{}, false
	}
	inner := s[len(openDelim) : len(s)-len(closeDelim)]
	if strings.ContainsAny(inner, "\n\r\u2028\u2029") {
		return Ref{}, false
	}
	if !strings.HasPrefix(inner, domain.OutputKeyPrefix) {
		return Ref{}, false
	}
	body := inner[len(domain.OutputKeyPrefix):]
	n := 0
	for n < len(body) && isWord(body[n]) {
		n++
	}
	if n == 0 {
		return Ref{}, false
	}
	return Ref{Raw: s, Key: inner, ID: body[:n], Tail: body[n:]}, true
}

// MustParse is like Parse but panics when s is not a reference.
func MustParse(s string) Ref {
	r, ok := Parse(s)
	if !ok {
		panic(fmt.Sprintf("ref: %q is not a template reference", s))
	}
	return r
}

// IsReference reports whether s is a whole-string reference.
func IsReference(s string) bool {
	_, ok := Parse(s)
	return ok
}

// Format builds the reference string for an output of ownerID.
// outputKey is used verbatim, so it normally starts with ".".
func Format(ownerID, outputKey string) string {
	return openDelim + domain.OutputKey(ownerID, outputKey) + closeDelim
}

// Collect returns every reference found in a parameter tree, in a
// deterministic order (map keys sorted).
func Collect(value any) []Ref {
	var refs []Ref
	collect(value, &refs)
	return refs
}

func collect(value any, refs *[]Ref) {
	switch v := value.(type) {
	case string:
		if r, ok := Parse(v); ok {
			*refs = append(*refs, r)
		}
	case []any:
		for _, e := range v {
			collect(e, refs)
		}
	case map[string]any:
		for _, k := range sortedKeys(v) {
			collect(v[k], refs)
		}
	}
}

func isWord(c byte) bool {
	return c == '_' ||
		('0' <= c && c <= '9') ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z')
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
