package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/stepflow"
)

// DefaultDebounce lets the file system settle before flows are revalidated.
const DefaultDebounce = 100 * time.Millisecond

// ReportFunc receives the outcome of validating one flow.
type ReportFunc func(id string, rep *stepflow.Report, err error)

// Watch validates the given flows (every flow of the source when ids is
// empty), then revalidates each one that changes until ctx is done.
func Watch(ctx context.Context, eng *stepflow.Engine, ids []string, debounce time.Duration, onReport ReportFunc) error {
	changes, err := eng.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch flows: %w", err)
	}

	initial := ids
	if len(initial) == 0 {
		initial, err = FlowIDs(ctx, eng)
		if err != nil {
			return err
		}
	}
	for _, id := range initial {
		rep, err := eng.ValidateFlow(ctx, id)
		onReport(id, rep, err)
	}

	wanted := func(id string) bool {
		if len(ids) == 0 {
			return !isReservedID(id)
		}
		return slices.Contains(ids, id)
	}

	pending := map[string]struct{}{}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-changes:
			if !ok {
				return nil
			}
			if !wanted(id) {
				continue
			}
			eng.Logger().Info("Change detected", "flow", id)
			pending[id] = struct{}{}
			timer.Reset(debounce)
		case <-timer.C:
			batch := make([]string, 0, len(pending))
			for id := range pending {
				batch = append(batch, id)
			}
			clear(pending)
			slices.Sort(batch)
			for _, id := range batch {
				rep, err := eng.ValidateFlow(ctx, id)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				onReport(id, rep, err)
			}
		}
	}
}
