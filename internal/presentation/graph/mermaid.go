package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/validate"
)

// GraphOverlay carries validation state to be drawn on top of the tree.
type GraphOverlay struct {
	// Invalid maps failing keys (step ids or branch condition sets) to their kind.
	Invalid map[validate.ErrorKey]domain.ErrorKind
	// Focus highlights a single step, e.g. the origin of a reference lookup.
	Focus string
}

// OverlayFromResult builds an overlay from a validation result.
func OverlayFromResult(res validate.Result) *GraphOverlay {
	return &GraphOverlay{Invalid: res.Errors}
}

type mermaid struct {
	sb      strings.Builder
	overlay *GraphOverlay
	invalid []string
}

// GenerateMermaid converts a step tree into a Mermaid flowchart.
func GenerateMermaid(steps []domain.Step, overlay *GraphOverlay) string {
	m := &mermaid{overlay: overlay}
	m.sb.WriteString("graph TD\n")
	m.sequence(steps, "", true)

	if overlay != nil {
		if len(m.invalid) > 0 {
			m.sb.WriteString("\n    classDef invalid fill:#fee2e2,stroke:#dc2626,stroke-width:2px;\n")
			slices.Sort(m.invalid)
			fmt.Fprintf(&m.sb, "    class %s invalid;\n", strings.Join(m.invalid, ","))
		}
		if overlay.Focus != "" {
			m.sb.WriteString("\n    classDef focus fill:#dbeafe,stroke:#2563eb,stroke-width:3px;\n")
			fmt.Fprintf(&m.sb, "    class %s focus;\n", sanitizeMermaidID(overlay.Focus))
		}
	}
	return m.sb.String()
}

// sequence draws steps in order and links the last one to exit ("" for none).
// The first step of the top-level sequence is the trigger.
func (m *mermaid) sequence(steps []domain.Step, exit string, top bool) {
	for i := range steps {
		next := exit
		if i+1 < len(steps) {
			next = steps[i+1].ID
		}
		m.step(&steps[i], top && i == 0, next)
	}
}

func (m *mermaid) step(s *domain.Step, trigger bool, next string) {
	id := sanitizeMermaidID(s.ID)
	label := escapeLabel(stepLabel(s))

	switch {
	case trigger:
		fmt.Fprintf(&m.sb, "    %s((\"%s\"))\n", id, label)
	case s.IsBranches():
		fmt.Fprintf(&m.sb, "    %s{\"%s\"}\n", id, label)
	case s.IsLoop():
		fmt.Fprintf(&m.sb, "    %s[[\"%s\"]]\n", id, label)
	default:
		fmt.Fprintf(&m.sb, "    %s[\"%s\"]\n", id, label)
	}
	if m.failed(validate.StepKey(s.ID)) {
		m.invalid = append(m.invalid, id)
	}

	if ds := s.DataSource; ds != nil {
		dsID := sanitizeMermaidID(ds.ID)
		fmt.Fprintf(&m.sb, "    %s[(\"%s\")]\n", dsID, escapeLabel(stepLabel(ds)))
		fmt.Fprintf(&m.sb, "    %s -. data .-> %s\n", dsID, id)
		if m.failed(validate.StepKey(ds.ID)) {
			m.invalid = append(m.invalid, dsID)
		}
	}

	switch {
	case s.IsBranches():
		for i := range s.Branches {
			m.branch(id, &s.Branches[i], next)
		}
	case s.IsLoop():
		if len(s.Steps) > 0 {
			fmt.Fprintf(&m.sb, "    %s -- \"each\" --> %s\n", id, sanitizeMermaidID(s.Steps[0].ID))
			m.sequence(s.Steps, s.ID, false)
		}
		if next != "" {
			fmt.Fprintf(&m.sb, "    %s -- \"done\" --> %s\n", id, sanitizeMermaidID(next))
		}
	default:
		if next != "" {
			fmt.Fprintf(&m.sb, "    %s --> %s\n", id, sanitizeMermaidID(next))
		}
	}
}

func (m *mermaid) branch(from string, b *domain.Branch, next string) {
	target := next
	if len(b.Steps) > 0 {
		target = b.Steps[0].ID
	}
	if target == "" {
		return
	}
	label := conditionLabel(b)
	if m.failed(validate.ConditionsKey(b.ID)) {
		label = "(!) " + label
	}
	fmt.Fprintf(&m.sb, "    %s -- \"%s\" --> %s\n", from, escapeLabel(label), sanitizeMermaidID(target))
	m.sequence(b.Steps, next, false)
}

func (m *mermaid) failed(key validate.ErrorKey) bool {
	if m.overlay == nil {
		return false
	}
	_, ok := m.overlay.Invalid[key]
	return ok
}

func stepLabel(s *domain.Step) string {
	name := s.Title
	if name == "" {
		name = s.Operator
	}
	if name == "" {
		return s.ID
	}
	return s.ID + ": " + name
}

// conditionLabel renders the OR-of-AND condition set of a branch.
// A branch without conditions is the fallback arm.
func conditionLabel(b *domain.Branch) string {
	var groups []string
	for _, g := range b.Conditions {
		ids := make([]string, 0, len(g))
		for _, c := range g {
			ids = append(ids, c.ID)
		}
		if len(ids) > 0 {
			groups = append(groups, strings.Join(ids, " and "))
		}
	}
	if len(groups) == 0 {
		return b.ID + ": otherwise"
	}
	return b.ID + ": " + strings.Join(groups, " or ")
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "'")
}

func sanitizeMermaidID(id string) string {
	// Mermaid IDs cannot contain spaces or special chars.
	r := strings.NewReplacer(
		" ", "_",
		"/", "_",
		".", "_",
		"-", "_",
		":", "_",
	)
	return "n_" + r.Replace(id)
}
