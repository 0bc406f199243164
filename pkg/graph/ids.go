package graph

import (
	"strings"

	"github.com/aretw0/stepflow/pkg/domain"
)

// checkIDs enforces tree-wide id uniqueness over steps, branches,
// conditions and data sources, and keeps reserved ids free.
func checkIDs(steps []domain.Step) error {
	seen := make(map[string]struct{})
	var err error
	check := func(id string) bool {
		switch {
		case id == "":
			err = &IndexError{Err: domain.ErrEmptyID}
		case id == domain.GlobalScopeID, strings.HasPrefix(id, domain.ConditionsKeyPrefix):
			err = &IndexError{ID: id, Err: domain.ErrReservedID}
		default:
			if _, dup := seen[id]; dup {
				err = &IndexError{ID: id, Err: domain.ErrDuplicateID}
			}
			seen[id] = struct{}{}
		}
		return err == nil
	}

	domain.Walk(steps, func(step *domain.Step, _ *domain.Step) bool {
		if err != nil || !check(step.ID) {
			return false
		}
		for _, br := range step.Branches {
			if !check(br.ID) {
				return false
			}
		}
		return true
	})
	return err
}
