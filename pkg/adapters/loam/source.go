package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/stepflow/pkg/domain"
)

// Source adapts a loam repository to ports.FlowSource.
type Source struct {
	Repo *loam.TypedRepository[FlowMetadata]
}

// New creates a new loam flow source.
func New(repo *loam.TypedRepository[FlowMetadata]) *Source {
	return &Source{
		Repo: repo,
	}
}

// Open initializes a read-only loam repository at dir and wraps it.
func Open(dir string, opts ...loam.Option) (*Source, error) {
	opts = append([]loam.Option{loam.WithStrict(true), loam.WithReadOnly(true)}, opts...)
	repo, err := loam.Init(dir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open flow repository %s: %w", dir, err)
	}
	return New(loam.NewTypedRepository[FlowMetadata](repo)), nil
}

// GetFlow loads one flow document. Loam resolves the id to its file, so
// "approve" finds approve.yaml or approve.md.
func (s *Source) GetFlow(ctx context.Context, id string) (*domain.Flow, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: loam get failed for %s: %v", domain.ErrFlowNotFound, id, err)
	}

	steps, err := decodeSteps(doc.Data.Steps)
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", id, err)
	}

	rawID := doc.Data.ID
	if rawID == "" {
		rawID = doc.ID
	}

	return &domain.Flow{
		ID:    trimExtension(rawID),
		Name:  doc.Data.Name,
		Steps: steps,
	}, nil
}

// SaveFlow writes flow as a markdown document whose body is description.
// The repository must have been opened writable.
func (s *Source) SaveFlow(ctx context.Context, flow *domain.Flow, description string) error {
	meta, err := NewFlowMetadata(flow)
	if err != nil {
		return err
	}
	err = s.Repo.Save(ctx, &loam.DocumentModel[FlowMetadata]{
		ID:      flow.ID,
		Content: description,
		Data:    meta,
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", flow.ID, err)
	}
	return nil
}

// ListFlows lists every flow in the repository. Two documents that
// normalize to the same id are an error.
func (s *Source) ListFlows(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	return ids, nil
}

// Watch emits the id of every flow document that changes.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// decodeSteps re-encodes the loosely typed document tree into steps.
func decodeSteps(raw []any) ([]domain.Step, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(normalize(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to encode steps: %w", err)
	}
	var steps []domain.Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("failed to decode steps: %w", err)
	}
	return steps, nil
}

// normalize converts yaml-style map[any]any values into json-encodable maps.
func normalize(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[fmt.Sprintf("%v", k)] = normalize(sub)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = normalize(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = normalize(sub)
		}
		return out
	default:
		return v
	}
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
