package domain

import "time"

// Flow is a named, stored step tree.
type Flow struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	Steps     []Step    `json:"steps" yaml:"steps"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Trigger returns the first step, or nil for an empty flow.
func (f *Flow) Trigger() *Step {
	if f == nil || len(f.Steps) == 0 {
		return nil
	}
	return &f.Steps[0]
}
