package domain

// Visit is called for every step reached by Walk. parent is nil for
// top-level steps. Returning false skips the step's children.
type Visit func(step *Step, parent *Step) bool

// Walk visits steps depth-first in execution order: a step, then its data
// source, then each branch's conditions followed by the branch's steps,
// then loop steps.
func Walk(steps []Step, fn Visit) {
	for i := range steps {
		walkStep(&steps[i], nil, fn)
	}
}

func walkStep(step *Step, parent *Step, fn Visit) {
	if !fn(step, parent) {
		return
	}
	if step.DataSource != nil {
		walkStep(step.DataSource, step, fn)
	}
	for b := range step.Branches {
		branch := &step.Branches[b]
		for g := range branch.Conditions {
			for c := range branch.Conditions[g] {
				walkStep(&branch.Conditions[g][c], step, fn)
			}
		}
		for i := range branch.Steps {
			walkStep(&branch.Steps[i], step, fn)
		}
	}
	for i := range step.Steps {
		walkStep(&step.Steps[i], step, fn)
	}
}

// IDs returns every step, branch and condition id in depth-first order.
func IDs(steps []Step) []string {
	var ids []string
	Walk(steps, func(step *Step, _ *Step) bool {
		ids = append(ids, step.ID)
		for _, b := range step.Branches {
			ids = append(ids, b.ID)
		}
		return true
	})
	return ids
}
