package accounts

import (
	"html"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// Options configures a validation pass. The zero value collects every
// failure, keeps unknown fields, and leaves strings untouched.
type Options struct {
	// AbortEarly stops at the first field failure instead of collecting all.
	AbortEarly bool
	// StripUnknown removes fields not declared in the schema.
	StripUnknown bool
	// EscapeHTML sanitizes string values.
	EscapeHTML bool
}

// DefaultOptions mirrors the service defaults: collect every failure, strip
// unknown fields, no HTML escaping.
func DefaultOptions() Options {
	return Options{StripUnknown: true}
}

// Input is the joint validation target for one request: the parsed JSON
// payload and the query parameters.
type Input struct {
	Data  map[string]any
	Query map[string]any
}

// FieldError names a single failed field, its pre-declared message, and the
// offending value. The whole input object is never echoed back.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Validate executes a schema against the input, producing the normalized
// input (defaults applied, unknown fields stripped, values coerced) or a
// single invalid-input error aggregating the field failures. Validation is
// atomic: on any failure no normalized output is produced. Pure function.
func Validate(in Input, schema *Schema, opts Options) (Input, error) {
	var failures []FieldError

	query, queryFailures := validateSection(
		in.Query, schema.Query, schema.RequireQuery, "query", schema.QueryMessage, opts,
	)
	failures = append(failures, queryFailures...)

	if opts.AbortEarly && len(failures) > 0 {
		failures = failures[:1]
	} else {
		data, dataFailures := validateSection(
			in.Data, schema.Payload, schema.RequirePayload, "data", schema.PayloadMessage, opts,
		)
		failures = append(failures, dataFailures...)
		if len(failures) == 0 {
			return Input{Data: data, Query: query}, nil
		}
		if opts.AbortEarly {
			failures = failures[:1]
		}
	}

	return Input{}, validationError(failures)
}

func validateSection(src map[string]any, fields []Field, required bool, section, message string, opts Options) (map[string]any, []FieldError) {
	if src == nil {
		if required {
			return nil, []FieldError{{Field: section, Message: message}}
		}
		if len(fields) == 0 {
			return nil, nil
		}
		src = map[string]any{}
	}

	var failures []FieldError
	out := make(map[string]any, len(src))

	declared := make(map[string]bool, len(fields))

	for _, f := range fields {
		declared[f.Name] = true

		value, present := src[f.Name]
		if !present || value == nil {
			if f.Required {
				failures = append(failures, FieldError{Field: f.Name, Message: f.Message})
				if opts.AbortEarly {
					return nil, failures
				}
				continue
			}
			if f.Default != nil {
				out[f.Name] = f.Default
			}
			continue
		}

		if f.Convert != nil {
			converted, err := f.Convert(value)
			if err != nil {
				failures = append(failures, FieldError{Field: f.Name, Message: f.Message, Value: value})
				if opts.AbortEarly {
					return nil, failures
				}
				continue
			}
			value = converted
		}

		if err := validation.Validate(value, f.Rules...); err != nil {
			failures = append(failures, FieldError{Field: f.Name, Message: f.Message, Value: value})
			if opts.AbortEarly {
				return nil, failures
			}
			continue
		}

		if s, ok := value.(string); ok && opts.EscapeHTML {
			value = html.EscapeString(s)
		}

		out[f.Name] = value
	}

	if !opts.StripUnknown {
		for k, v := range src {
			if !declared[k] {
				out[k] = v
			}
		}
	}

	if len(failures) > 0 {
		return nil, failures
	}

	return out, nil
}

func validationError(failures []FieldError) *goerrors.Error {
	detail := map[string]any{"errors": failures}
	if len(failures) == 1 && failures[0].Value != nil {
		detail["value"] = failures[0].Value
	}
	return Normalize(failures[0].Message, detail, 400)
}
