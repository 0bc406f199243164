package graph

import "fmt"

// IndexError reports a structural problem found while indexing.
type IndexError struct {
	ID  string
	Err error
}

func (e *IndexError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("index: %v", e.Err)
	}
	return fmt.Sprintf("index: node %q: %v", e.ID, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }
