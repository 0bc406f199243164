package schema

import (
	"strings"
	"testing"
)

func isRef(v any) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}")
}

func TestValidate(t *testing.T) {
	s := Schema{
		"docid":   String(),
		"retries": Int(),
		"tags":    Optional(Slice(String())),
	}

	tests := []struct {
		name     string
		data     map[string]any
		opts     []Option
		wantErrs int
	}{
		{"valid", map[string]any{"docid": "d", "retries": 3}, nil, 0},
		{"optional present", map[string]any{"docid": "d", "retries": 3, "tags": []any{"x"}}, nil, 0},
		{"optional null", map[string]any{"docid": "d", "retries": 3, "tags": nil}, nil, 0},
		{"missing required", map[string]any{"docid": "d"}, nil, 1},
		{"type mismatch", map[string]any{"docid": 1, "retries": "x"}, nil, 2},
		{"reference without placeholder", map[string]any{"docid": "d", "retries": "{{__1.n}}"}, nil, 1},
		{"reference with placeholder", map[string]any{"docid": "d", "retries": "{{__1.n}}"}, []Option{WithPlaceholder(isRef)}, 0},
		{"extra field lenient", map[string]any{"docid": "d", "retries": 1, "x": 1}, nil, 0},
		{"extra field strict", map[string]any{"docid": "d", "retries": 1, "x": 1}, []Option{WithStrict()}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(s, tt.data, tt.opts...)
			if got := len(ValidationErrors(err)); got != tt.wantErrs {
				t.Errorf("Validate() = %d errors (%v), want %d", got, err, tt.wantErrs)
			}
		})
	}
}

func TestValidate_OrderIsStable(t *testing.T) {
	s := Schema{"b": Int(), "a": Int(), "c": Int()}
	err := Validate(s, map[string]any{})
	errs := ValidationErrors(err)
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3", len(errs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if ve := errs[i].(*ValidationError); ve.Key != want {
			t.Errorf("errs[%d].Key = %q, want %q", i, ve.Key, want)
		}
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	if err := Validate(nil, map[string]any{"x": 1}); err != nil {
		t.Errorf("Validate() with nil schema should return nil, got %v", err)
	}
}
