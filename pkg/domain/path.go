package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

type segmentKind uint8

const (
	segmentIndex segmentKind = iota
	segmentArm
	segmentConditions
)

// Segment is one coordinate of a Path.
//
// Index is an ordinary sequence position. BranchArm selects one arm of a
// Branches step; arms are mutually exclusive at runtime. ConditionScope marks
// the condition set of a branch, which runs before the branch's own steps.
type Segment struct {
	kind  segmentKind
	value int
}

// Index returns an ordinary sequence position.
func Index(n int) Segment { return Segment{kind: segmentIndex, value: n} }

// BranchArm returns the position of one arm inside a Branches step.
func BranchArm(n int) Segment { return Segment{kind: segmentArm, value: n} }

// ConditionScope returns the segment marking a branch's condition set.
func ConditionScope() Segment { return Segment{kind: segmentConditions, value: -1} }

// IsConditionScope reports whether s marks a condition set.
func (s Segment) IsConditionScope() bool { return s.kind == segmentConditions }

// IsBranchArm reports whether s selects a branch arm.
func (s Segment) IsBranchArm() bool { return s.kind == segmentArm }

// Value returns the numeric position; the condition scope reports -1.
func (s Segment) Value() int { return s.value }

// Compare orders two segments at the same depth.
// The condition scope sorts before every positional segment.
func (s Segment) Compare(o Segment) int {
	sc, oc := s.kind == segmentConditions, o.kind == segmentConditions
	switch {
	case sc && oc:
		return 0
	case sc:
		return -1
	case oc:
		return 1
	}
	switch {
	case s.value < o.value:
		return -1
	case s.value > o.value:
		return 1
	}
	return 0
}

func (s Segment) String() string {
	switch s.kind {
	case segmentConditions:
		return "?"
	case segmentArm:
		return "b" + strconv.Itoa(s.value)
	}
	return strconv.Itoa(s.value)
}

// MarshalJSON keeps the wire format the editor expects: plain integers,
// with -1 for the condition scope.
func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.value)
}

// UnmarshalJSON decodes the integer wire format. Arm information is not
// carried on the wire, so decoded positions are plain indices.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n < 0 {
		*s = ConditionScope()
		return nil
	}
	*s = Index(n)
	return nil
}

// Path locates a node inside the step tree.
type Path []Segment

// NewPath builds a path of ordinary indices.
func NewPath(indices ...int) Path {
	p := make(Path, len(indices))
	for i, n := range indices {
		p[i] = Index(n)
	}
	return p
}

// Append returns a new path extended with segs; p is never modified.
func (p Path) Append(segs ...Segment) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	return append(out, segs...)
}

// HasPrefix reports whether prefix is a (non-strict) prefix of p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal reports whether both paths have identical segments.
func (p Path) Equal(o Path) bool {
	return len(p) == len(o) && p.HasPrefix(o)
}

// Compare orders paths lexicographically; a prefix sorts first.
func (p Path) Compare(o Path) int {
	for i := 0; i < len(p) && i < len(o); i++ {
		if c := p[i].Compare(o[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(p) < len(o):
		return -1
	case len(p) > len(o):
		return 1
	}
	return 0
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}
