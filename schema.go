package accounts

import (
	"fmt"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// Field is one declarative validation rule. Every field maps exactly one
// validation failure to exactly one user-facing message.
type Field struct {
	Name     string
	Required bool
	Rules    []validation.Rule
	Default  any
	Convert  func(any) (any, error)
	Message  string
}

// Require marks the field as required.
func (f Field) Require() Field {
	f.Required = true
	return f
}

// WithRules appends value constraints to the field.
func (f Field) WithRules(rules ...validation.Rule) Field {
	f.Rules = append(f.Rules, rules...)
	return f
}

// WithDefault declares a value applied when the field is absent.
func (f Field) WithDefault(v any) Field {
	f.Default = v
	return f
}

// Schema is the named set of field rules for one (resource, operation) pair.
// Defined at process start, immutable thereafter.
type Schema struct {
	Query          []Field
	Payload        []Field
	RequireQuery   bool
	RequirePayload bool
	QueryMessage   string
	PayloadMessage string
}

// Registry holds every schema, keyed by (resource, operation). It is built
// once and safe for unsynchronized concurrent reads.
type Registry struct {
	schemas map[Resource]map[Operation]*Schema
}

// NewRegistry builds the registry with the account, authentication, and
// documentation schemas installed.
func NewRegistry() *Registry {
	r := &Registry{schemas: map[Resource]map[Operation]*Schema{}}

	registerAccountSchemas(r)
	registerAuthSchemas(r)
	registerDocumentationSchemas(r)

	return r
}

// Get resolves the schema for a (resource, operation) pair. A missing entry
// is a wiring mistake, not caller input, so it surfaces as an internal error.
func (r *Registry) Get(resource Resource, operation Operation) (*Schema, error) {
	if ops, ok := r.schemas[resource]; ok {
		if schema, ok := ops[operation]; ok {
			return schema, nil
		}
	}

	return nil, goerrors.New(
		fmt.Sprintf("no schema registered for %s/%s", resource, operation),
		goerrors.CategoryInternal,
	).WithTextCode(KindInternal).WithCode(500)
}

func (r *Registry) register(resource Resource, operation Operation, schema *Schema) {
	if _, ok := r.schemas[resource]; !ok {
		r.schemas[resource] = map[Operation]*Schema{}
	}
	r.schemas[resource][operation] = schema
}

// Reusable primitive field validators.

func StringField(name, message string) Field {
	return Field{
		Name:    name,
		Message: message,
		Convert: toString,
	}
}

func BooleanField(name, message string) Field {
	return Field{
		Name:    name,
		Message: message,
		Convert: toBool,
	}
}

func NumberField(name, message string) Field {
	return Field{
		Name:    name,
		Message: message,
		Convert: toInt,
	}
}

func EmailField(name, message string) Field {
	return StringField(name, message).WithRules(is.Email)
}

func URLField(name, message string) Field {
	return StringField(name, message).WithRules(is.URL)
}

// DateField accepts ISO 8601 dates, with or without a time component.
func DateField(name, message string) Field {
	return StringField(name, message).WithRules(validation.By(isISODate))
}

// PhoneField accepts E.164 formatted phone numbers.
func PhoneField(name, message string) Field {
	return StringField(name, message).WithRules(validation.By(isPhoneNumber))
}

func isISODate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("must be a string")
	}

	if _, err := time.Parse("2006-01-02", s); err == nil {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return nil
	}

	return fmt.Errorf("must be a valid ISO 8601 date")
}

func isPhoneNumber(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("must be a string")
	}

	parsed, err := phonenumbers.Parse(s, "")
	if err != nil {
		return fmt.Errorf("must be a valid E.164 phone number")
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return fmt.Errorf("must be a valid phone number")
	}

	return nil
}

func toString(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("must be a string")
	}
	return s, nil
}

func toBool(v any) (any, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return nil, fmt.Errorf("must be a boolean")
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("must be a boolean")
	}
}

func toInt(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("must be a number")
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("must be a number")
	}
}
