package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/internal/presentation/tui"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/validate"
)

// Output formats of the report commands.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// JSONReport is the machine-readable form of a validation report.
type JSONReport struct {
	Flow   string                                 `json:"flow,omitempty"`
	OK     bool                                   `json:"ok"`
	Errors map[validate.ErrorKey]domain.ErrorKind `json:"errors"`
	Issues []validate.Issue                       `json:"issues"`
	Error  string                                 `json:"error,omitempty"`
}

// NewJSONReport flattens rep for encoding.
func NewJSONReport(name string, rep *stepflow.Report) JSONReport {
	out := JSONReport{
		Flow:   name,
		OK:     rep.OK(),
		Errors: rep.Result.Errors,
		Issues: rep.Result.Issues(),
	}
	if out.Errors == nil {
		out.Errors = map[validate.ErrorKey]domain.ErrorKind{}
	}
	if rep.Result.Err != nil {
		out.Error = rep.Result.Err.Error()
	}
	return out
}

// WriteReport prints rep to w in the given format.
func WriteReport(w io.Writer, format, name string, rep *stepflow.Report) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewJSONReport(name, rep))
	case FormatMarkdown:
		var steps []domain.Step
		if rep.Flow != nil {
			steps = rep.Flow.Steps
		}
		md := tui.ReportMarkdown(name, steps, rep.Result)
		width := 0
		if f, ok := w.(*os.File); ok {
			width = tui.TerminalWidth(f)
		}
		out, err := tui.NewRenderer(width)(md)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	case "", FormatText:
		return writeText(w, name, rep)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writeText(w io.Writer, name string, rep *stepflow.Report) error {
	name = tui.StripControl(name)
	if name == "" {
		name = "flow"
	}
	switch {
	case rep.Result.Err != nil:
		_, err := fmt.Fprintf(w, "%s: invalid: %v\n", name, rep.Result.Err)
		return err
	case rep.OK():
		_, err := fmt.Fprintf(w, "%s: ok\n", name)
		return err
	}
	issues := rep.Result.Issues()
	if _, err := fmt.Fprintf(w, "%s: %d issue(s)\n", name, len(issues)); err != nil {
		return err
	}
	for _, is := range issues {
		if _, err := fmt.Fprintf(w, "  - %s\n", is); err != nil {
			return err
		}
	}
	return nil
}
