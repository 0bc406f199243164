package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/validate"
)

const defaultWidth = 80

// TerminalWidth reports the width of f, or a default when f is not a terminal.
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// NewRenderer returns a function that renders markdown using glamour.
// Word wrapping follows width; zero disables it.
func NewRenderer(width int) func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// ReportMarkdown describes a validation result as a markdown document.
// steps is used to show the title and operator of failing steps.
func ReportMarkdown(name string, steps []domain.Step, res validate.Result) string {
	var sb strings.Builder
	if name == "" {
		name = "flow"
	}
	fmt.Fprintf(&sb, "# %s\n\n", StripControl(name))

	if res.Err != nil {
		fmt.Fprintf(&sb, "**Invalid:** %s\n", res.Err)
		return sb.String()
	}
	if res.OK {
		sb.WriteString("All steps are valid.\n")
		return sb.String()
	}

	byID := map[string]*domain.Step{}
	domain.Walk(steps, func(s *domain.Step, _ *domain.Step) bool {
		byID[s.ID] = s
		return true
	})

	issues := res.Issues()
	fmt.Fprintf(&sb, "Found **%d** issue(s).\n\n", len(issues))
	sb.WriteString("| Target | Operator | Error |\n")
	sb.WriteString("| --- | --- | --- |\n")
	for _, is := range issues {
		target, op := "step `"+is.StepID+"`", ""
		if is.BranchID != "" {
			target = "conditions of `" + is.BranchID + "`"
		} else if s, ok := byID[is.StepID]; ok {
			op = "`" + s.Operator + "`"
			if s.Title != "" {
				target += " " + StripControl(s.Title)
			}
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", target, op, is.Kind)
	}
	return sb.String()
}
