// File: structargs/field.go
package structargs

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Shape classifies a field's container form. It determines which CLI
// argument shape the field receives and how merged values are layered.
type Shape int

const (
	ShapeScalar Shape = iota
	ShapeList
	ShapeOptionalScalar
	ShapeOptionalList
	ShapeMapping
	ShapeOptionalMapping
)

// String returns a human-readable shape name.
func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeList:
		return "list"
	case ShapeOptionalScalar:
		return "optional scalar"
	case ShapeOptionalList:
		return "optional list"
	case ShapeMapping:
		return "mapping"
	case ShapeOptionalMapping:
		return "optional mapping"
	default:
		return "unknown"
	}
}

// IsList reports whether the shape is a list (optional or not).
func (s Shape) IsList() bool {
	return s == ShapeList || s == ShapeOptionalList
}

// IsMapping reports whether the shape is a nested mapping (optional or not).
func (s Shape) IsMapping() bool {
	return s == ShapeMapping || s == ShapeOptionalMapping
}

// IsOptional reports whether the shape was declared through a pointer type.
func (s Shape) IsOptional() bool {
	return s == ShapeOptionalScalar || s == ShapeOptionalList || s == ShapeOptionalMapping
}

// FieldDescriptor is the normalized introspection result for one struct
// field. Descriptors are computed once per record type at builder
// construction and are immutable afterwards.
type FieldDescriptor struct {
	Name   string // config key: toml tag name or the Go field name
	GoName string
	Shape  Shape
	Type   reflect.Type // declared field type, pointer unwrapped for optionals
	Elem   reflect.Type // element type for lists and mappings

	// Default tri-state: HasDefault is false only for fields tagged
	// `required`; otherwise Default holds the prototype field's value,
	// zero values included.
	HasDefault bool
	Default    any

	Short        string
	Help         string
	Choices      []string
	FileLoadable bool
	Excluded     bool
	Included     bool
	Positional   bool
	NArgs        string // "", "?", "*", "+", or a decimal count
	Metavar      string

	// CLI reports whether the field passed the filter policy and is
	// exposed as an argument. Filtered-out fields keep their descriptor
	// for default seeding and the required check.
	CLI bool

	index int // struct field index
}

// boolField reports whether the field is boolean-valued and gets the dual
// positive/negative flag treatment.
func (d *FieldDescriptor) boolField() bool {
	return (d.Shape == ShapeScalar || d.Shape == ShapeOptionalScalar) && d.Type.Kind() == reflect.Bool
}

// cliName returns the long flag name for the field (underscores become
// dashes, as in the generated --field-name form).
func (d *FieldDescriptor) cliName() string {
	return strings.ReplaceAll(d.Name, "_", "-")
}

// overrideName returns the abbreviated flag name for map-field property
// overrides: the joined initials of the field's underscore-separated words
// (max_retry_count -> mrc), or the first letter for single-word names.
func (d *FieldDescriptor) overrideName() string {
	words := strings.Split(d.Name, "_")
	if len(words) == 1 {
		return d.Name[:1]
	}
	var b strings.Builder
	for _, w := range words {
		if w != "" {
			b.WriteByte(w[0])
		}
	}
	return b.String()
}

// FieldFilter decides field inclusion. It receives the field's config key
// and its descriptor and returns true to expose the field on the CLI.
// When a filter is supplied it wins outright: include/exclude sets are not
// consulted.
type FieldFilter func(name string, d FieldDescriptor) bool

// analyzeFields inspects the record type and produces a descriptor per
// exported field, in declaration order. The prototype value supplies
// literal defaults. Fields tagged `toml:"-"` are skipped entirely.
func analyzeFields(recordType reflect.Type, prototype reflect.Value, opts filterOptions) (map[string]*FieldDescriptor, []string, error) {
	if recordType.Kind() != reflect.Struct {
		return nil, nil, builderErrorf("record type must be a struct, got %s", recordType)
	}
	if opts.include != nil && opts.exclude != nil {
		return nil, nil, builderErrorf("cannot specify both include and exclude field sets")
	}

	fields := make(map[string]*FieldDescriptor)
	var order []string

	for i := 0; i < recordType.NumField(); i++ {
		sf := recordType.Field(i)
		if !sf.IsExported() {
			continue
		}

		key := sf.Name
		if tag := sf.Tag.Get("toml"); tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				key = parts[0]
			}
		}
		if _, dup := fields[key]; dup {
			return nil, nil, builderErrorf("duplicate field name %q in %s", key, recordType)
		}

		d := &FieldDescriptor{
			Name:   key,
			GoName: sf.Name,
			index:  i,
		}
		classifyShape(d, sf.Type)

		if err := parseAnnotations(d, sf); err != nil {
			return nil, nil, err
		}

		if d.HasDefault {
			d.Default = prototype.Field(i).Interface()
		}

		d.CLI = shouldInclude(key, d, opts)

		fields[key] = d
		order = append(order, key)
	}

	return fields, order, nil
}

// classifyShape resolves the container shape from the declared Go type.
// Pointer types mark optionality and recurse once into the pointee.
// Unknown kinds fail open as opaque scalars coerced by string.
func classifyShape(d *FieldDescriptor, t reflect.Type) {
	optional := false
	if t.Kind() == reflect.Ptr {
		optional = true
		t = t.Elem()
	}

	d.Type = t
	switch t.Kind() {
	case reflect.Slice:
		d.Elem = t.Elem()
		if optional {
			d.Shape = ShapeOptionalList
		} else {
			d.Shape = ShapeList
		}
	case reflect.Map:
		d.Elem = t.Elem()
		if optional {
			d.Shape = ShapeOptionalMapping
		} else {
			d.Shape = ShapeMapping
		}
	default:
		if optional {
			d.Shape = ShapeOptionalScalar
		} else {
			d.Shape = ShapeScalar
		}
	}
}

// parseAnnotations reads the `cli` and `help` struct tags into the
// descriptor. Malformed annotations are builder-construction errors.
func parseAnnotations(d *FieldDescriptor, sf reflect.StructField) error {
	d.Help = sf.Tag.Get("help")
	d.HasDefault = true

	tag, ok := sf.Tag.Lookup("cli")
	if !ok || tag == "" {
		return nil
	}

	for _, opt := range strings.Split(tag, ",") {
		key, val, hasVal := strings.Cut(opt, "=")
		switch key {
		case "short":
			if !hasVal || len(val) != 1 {
				return builderErrorf("field %q: short option must be a single character, got %q", d.Name, val)
			}
			d.Short = val
		case "help":
			// `help` is its own tag; tolerate it inside cli too.
			d.Help = val
		case "choices":
			if !hasVal || val == "" {
				return builderErrorf("field %q: choices requires at least one choice", d.Name)
			}
			d.Choices = strings.Split(val, "|")
		case "metavar":
			d.Metavar = val
		case "nargs":
			if err := validateNArgs(val); err != nil {
				return builderErrorf("field %q: %v", d.Name, err)
			}
			d.NArgs = val
		case "file":
			d.FileLoadable = true
		case "exclude":
			d.Excluded = true
		case "include":
			d.Included = true
		case "required":
			d.HasDefault = false
		case "positional":
			d.Positional = true
		case "":
			// empty segment from a trailing comma
		default:
			return builderErrorf("field %q: unknown cli tag option %q", d.Name, key)
		}
	}

	return nil
}

func validateNArgs(val string) error {
	switch val {
	case "?", "*", "+":
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 1 {
		return fmt.Errorf("invalid nargs %q (expected ?, *, + or a positive count)", val)
	}
	return nil
}

// filterOptions carries the builder's field filtering configuration.
type filterOptions struct {
	include        map[string]bool // nil when unset
	exclude        map[string]bool // nil when unset
	filter         FieldFilter
	useAnnotations bool
}

// shouldInclude applies the filter policy in fixed order: exclusion
// annotation, custom filter, include-only set, exclude set, default
// include. The custom filter, when present, is the escape hatch: the
// include/exclude sets are not consulted.
func shouldInclude(name string, d *FieldDescriptor, opts filterOptions) bool {
	if opts.useAnnotations && d.Excluded {
		return false
	}
	if opts.filter != nil {
		return opts.filter(name, *d)
	}
	if opts.include != nil {
		return opts.include[name]
	}
	if opts.exclude != nil && opts.exclude[name] {
		return false
	}
	return true
}
