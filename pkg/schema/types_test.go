package schema

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestScalarTypes(t *testing.T) {
	tests := []struct {
		typ     Type
		value   any
		wantErr bool
	}{
		{String(), "hello", false},
		{String(), "", false},
		{String(), 42, true},
		{String(), nil, true},
		{Int(), 42, false},
		{Int(), int64(42), false},
		{Int(), uint8(1), false},
		{Int(), float64(42), false},
		{Int(), 42.5, true},
		{Int(), "42", true},
		{Int(), json.Number("7"), false},
		{Int(), json.Number("7.5"), true},
		{Number(), json.Number("7.5"), false},
		{Number(), 3.14, false},
		{Number(), 7, false},
		{Number(), "3.14", true},
		{Float(), float32(1), false},
		{Bool(), true, false},
		{Bool(), 1, true},
		{Object(), map[string]any{"a": 1}, false},
		{Object(), map[int]any{1: 1}, true},
		{Object(), []any{}, true},
		{Any(), "x", false},
		{Any(), nil, true},
	}

	for _, tt := range tests {
		err := tt.typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s.Validate(%v) error = %v, wantErr %v", tt.typ.Name(), tt.value, err, tt.wantErr)
		}
	}
}

func TestSliceType(t *testing.T) {
	tests := []struct {
		typ     Type
		value   any
		wantErr bool
		desc    string
	}{
		{Slice(String()), []string{"a", "b"}, false, "string slice"},
		{Slice(String()), []any{"a", "b"}, false, "any slice with strings"},
		{Slice(String()), []any{"a", 2}, true, "mixed slice"},
		{Slice(String()), "not a slice", true, "string instead of slice"},
		{Slice(Slice(Int())), []any{[]any{1}, []any{2, 3}}, false, "nested"},
		{Slice(Object()), []any{map[string]any{}}, false, "objects"},
	}

	for _, tt := range tests {
		err := tt.typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate(%v) error = %v, wantErr %v", tt.desc, tt.value, err, tt.wantErr)
		}
	}
}

func TestOptionalType(t *testing.T) {
	opt := Optional(Int())
	if opt.Name() != "int?" {
		t.Errorf("Name() = %q, want int?", opt.Name())
	}
	if Optional(opt) != opt {
		t.Error("Optional should not wrap twice")
	}
	if err := opt.Validate(nil); err != nil {
		t.Errorf("Validate(nil) = %v, want nil", err)
	}
	if err := opt.Validate("x"); err == nil {
		t.Error("Validate(\"x\") should fail")
	}
}

func TestCustomType(t *testing.T) {
	even := Custom("even", func(v any) error {
		i, ok := v.(int)
		if !ok || i%2 != 0 {
			return errors.New("not even")
		}
		return nil
	})

	if even.Name() != "even" {
		t.Errorf("Name() = %q, want even", even.Name())
	}
	if err := even.Validate(4); err != nil {
		t.Errorf("Validate(4) = %v", err)
	}
	if err := even.Validate(3); err == nil {
		t.Error("Validate(3) should fail")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		wantErr  bool
		wantName string
	}{
		{"string", false, "string"},
		{"int", false, "int"},
		{"number", false, "number"},
		{"float", false, "float"},
		{"bool", false, "bool"},
		{"object", false, "object"},
		{"any", false, "any"},
		{"[string]", false, "[string]"},
		{"[[int]]", false, "[[int]]"},
		{"string?", false, "string?"},
		{"[object]?", false, "[object]?"},
		{" int ", false, "int"},
		{"invalid", true, ""},
		{"[invalid]", true, ""},
		{"?", true, ""},
	}

	for _, tt := range tests {
		typ, err := ParseType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && typ.Name() != tt.wantName {
			t.Errorf("ParseType(%q) Name() = %q, want %q", tt.input, typ.Name(), tt.wantName)
		}
	}
}

func TestParseTypeMapError(t *testing.T) {
	if _, err := ParseTypeMap(map[string]string{"api_key": "invalid"}); err == nil {
		t.Fatal("ParseTypeMap() should return error for invalid type")
	}
}
