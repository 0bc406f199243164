package schema

import "slices"

// Schema maps parameter names to their expected types.
type Schema map[string]Type

// Option configures a validation run.
type Option func(*options)

type options struct {
	placeholder func(any) bool
	strict      bool
}

// WithPlaceholder accepts any value for which fn returns true, whatever
// the declared type. Used for template references resolved at run time.
func WithPlaceholder(fn func(any) bool) Option {
	return func(o *options) { o.placeholder = fn }
}

// WithStrict rejects fields that the schema does not declare.
func WithStrict() Option {
	return func(o *options) { o.strict = true }
}

// Fields returns the declared field names in sorted order.
func (s Schema) Fields() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Validate checks data against the schema and reports every failing field.
// Fields are checked in name order so the aggregate is stable.
func Validate(schema Schema, data map[string]any, opts ...Option) error {
	if len(schema) == 0 {
		return nil
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var errs []error
	for _, key := range schema.Fields() {
		fieldType := schema[key]
		value, exists := data[key]
		if !exists {
			if !IsOptional(fieldType) {
				errs = append(errs, &ValidationError{Key: key, Reason: "required"})
			}
			continue
		}
		if o.placeholder != nil && o.placeholder(value) {
			continue
		}
		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
		}
	}

	if o.strict {
		extra := make([]string, 0)
		for key := range data {
			if _, ok := schema[key]; !ok {
				extra = append(extra, key)
			}
		}
		slices.Sort(extra)
		for _, key := range extra {
			errs = append(errs, &ValidationError{Key: key, Reason: "not defined in schema"})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
