package validate

import (
	"reflect"
	"strings"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/graph"
	"github.com/aretw0/stepflow/pkg/ref"
)

// parameters walks a step's parameters. The parameters object itself is
// depth 1, its direct values depth 2.
func (p *pass) parameters(step *domain.Step, at *graph.Node) bool {
	if step.NullParameters() {
		return p.value(step, at, nil, 1)
	}
	return p.value(step, at, step.Parameters, 1)
}

func (p *pass) value(step *domain.Step, at *graph.Node, v any, depth int) bool {
	switch v := v.(type) {
	case nil:
		return nullAllowed(step.Operator, depth)
	case string:
		r, ok := ref.Parse(v)
		if !ok {
			return true
		}
		return p.reference(r, at)
	case map[string]any:
		for _, e := range v {
			if !p.value(step, at, e, depth+1) {
				return false
			}
		}
		return true
	case []any:
		for _, e := range v {
			if !p.value(step, at, e, depth+1) {
				return false
			}
		}
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if !p.value(step, at, rv.Index(i).Interface(), depth+1) {
				return false
			}
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if !p.value(step, at, iter.Value().Interface(), depth+1) {
				return false
			}
		}
	}
	return true
}

// nullAllowed permits a null directly under the parameters of template
// operators, whose optional fields are stored as null.
func nullAllowed(operator string, depth int) bool {
	return strings.Contains(operator, domain.SetTemplateMarker) && depth == 2
}

// reference resolves r and checks that the node at may see its owner.
func (p *pass) reference(r ref.Ref, at *graph.Node) bool {
	if at == nil {
		return false
	}
	return p.ix.ResolveFrom(r, at).Visible
}
