package simulation

import (
	"strconv"
	"strings"
	"sync"
)

// Builder holds the editable Config plus the active variant and projects
// them into a Payload on demand.
type Builder struct {
	mu      sync.RWMutex
	config  Config
	variant Variant
}

// NewBuilder returns a builder with default field values and no variant.
func NewBuilder() *Builder {
	return &Builder{config: DefaultConfig()}
}

// SetField coerces raw according to the field's kind and stores it.
// Integer fields accept base-10 non-negative integers only; on rejection the
// previous value is kept.
func (b *Builder) SetField(name, raw string) error {
	spec, ok := LookupField(Field(name))
	if !ok {
		return &UnknownFieldError{Name: name}
	}

	switch spec.Kind {
	case KindString:
		b.mu.Lock()
		b.config.URL = raw
		b.mu.Unlock()
		return nil
	case KindInt:
		n, err := parseCount(spec.Name, raw)
		if err != nil {
			return err
		}
		b.mu.Lock()
		*b.config.intField(spec.Name) = n
		b.mu.Unlock()
		return nil
	default:
		checked, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return &InvalidFieldValueError{Field: spec.Name, Raw: raw, Reason: "expected checked or unchecked"}
		}
		return b.SetChecked(name, checked)
	}
}

// SetChecked is the checkbox path of SetField. Only boolean fields accept it.
func (b *Builder) SetChecked(name string, checked bool) error {
	spec, ok := LookupField(Field(name))
	if !ok {
		return &UnknownFieldError{Name: name}
	}
	if spec.Kind != KindBool {
		return &InvalidFieldValueError{
			Field:  spec.Name,
			Raw:    strconv.FormatBool(checked),
			Reason: "field is " + spec.Kind.String() + ", not boolean",
		}
	}
	// No boolean field exists in the shared set yet.
	return nil
}

// SelectVariant sets the active variant. Field values are left untouched.
func (b *Builder) SelectVariant(v Variant) error {
	if _, err := Lookup(v); err != nil {
		return err
	}
	b.mu.Lock()
	b.variant = v
	b.mu.Unlock()
	return nil
}

// Variant returns the active variant, empty when none is selected.
func (b *Builder) Variant() Variant {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.variant
}

// Config returns a snapshot of the editable state.
func (b *Builder) Config() Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// BuildPayload projects the current state onto the active variant.
func (b *Builder) BuildPayload() (Payload, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.variant == "" {
		return Payload{}, ErrNoVariantSelected
	}
	fields, err := RequiredFields(b.variant)
	if err != nil {
		return Payload{}, err
	}

	p := Payload{
		URL:      b.config.URL,
		Simulate: b.variant,
		Fields:   make([]FieldValue, 0, len(fields)),
	}
	for _, f := range fields {
		n, _ := b.config.Int(f)
		p.Fields = append(p.Fields, FieldValue{Name: f, Value: n})
	}
	return p, nil
}

func parseCount(f Field, raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, &InvalidFieldValueError{Field: f, Raw: raw, Reason: "not a base-10 integer"}
	}
	if n < 0 {
		return 0, &InvalidFieldValueError{Field: f, Raw: raw, Reason: "must not be negative"}
	}
	if f == FieldSegmentFailureCode && (n < 100 || n > 599) {
		return 0, &InvalidFieldValueError{Field: f, Raw: raw, Reason: "must be an HTTP status between 100 and 599"}
	}
	return n, nil
}
