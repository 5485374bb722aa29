// File: structargs/builder.go
package structargs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
)

// Builder provides a fluent interface for building record instances from
// CLI arguments and an optional base configuration file. A Builder is
// configured once; descriptors and argument specs are computed on the
// first build and reused for repeated builds without locking.
type Builder struct {
	prototype      any
	args           []string
	baseConfigName string
	program        string
	output         io.Writer
	errorHandling  ErrorHandling
	filterOpts     filterOptions
	err            error

	// computed lazily, immutable afterwards
	ready      bool
	recordType reflect.Type
	defaults   reflect.Value
	fields     map[string]*FieldDescriptor
	order      []string
	parser     *argParser
}

// NewBuilder creates a builder for the prototype's record type. The
// prototype is a struct value or pointer to struct whose field values
// serve as literal defaults (fields tagged `required` have none).
func NewBuilder(prototype any) *Builder {
	program := "structargs"
	if len(os.Args) > 0 {
		program = filepath.Base(os.Args[0])
	}
	return &Builder{
		prototype:      prototype,
		args:           os.Args[1:],
		baseConfigName: "config",
		program:        program,
		output:         os.Stderr,
		errorHandling:  ExitOnError,
		filterOpts:     filterOptions{useAnnotations: true},
	}
}

// WithArgs sets the argument vector to parse. Defaults to os.Args[1:].
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithBaseConfigName sets the name of the base configuration file flag.
// The default is "config" (i.e. --config PATH).
func (b *Builder) WithBaseConfigName(name string) *Builder {
	if name == "" {
		b.fail("base config name cannot be empty")
		return b
	}
	b.baseConfigName = name
	return b
}

// WithProgramName sets the name shown in usage and error output.
func (b *Builder) WithProgramName(name string) *Builder {
	b.program = name
	return b
}

// WithOutput sets the writer for usage and error output. Defaults to
// os.Stderr.
func (b *Builder) WithOutput(w io.Writer) *Builder {
	b.output = w
	return b
}

// WithErrorHandling selects how parse failures are reported. The default,
// ExitOnError, prints usage and terminates the process.
func (b *Builder) WithErrorHandling(eh ErrorHandling) *Builder {
	b.errorHandling = eh
	return b
}

// WithExcludeFields removes the named fields from the CLI. Exclusive with
// WithIncludeFields.
func (b *Builder) WithExcludeFields(names ...string) *Builder {
	if b.filterOpts.exclude == nil {
		b.filterOpts.exclude = make(map[string]bool)
	}
	for _, n := range names {
		b.filterOpts.exclude[n] = true
	}
	return b
}

// WithIncludeFields limits the CLI to the named fields. Exclusive with
// WithExcludeFields.
func (b *Builder) WithIncludeFields(names ...string) *Builder {
	if b.filterOpts.include == nil {
		b.filterOpts.include = make(map[string]bool)
	}
	for _, n := range names {
		b.filterOpts.include[n] = true
	}
	return b
}

// WithFieldFilter sets a custom inclusion filter. When present its verdict
// wins outright; include/exclude sets are not consulted.
func (b *Builder) WithFieldFilter(fn FieldFilter) *Builder {
	b.filterOpts.filter = fn
	return b
}

// WithAnnotations controls whether `cli:"exclude"` tags are honored.
// Enabled by default.
func (b *Builder) WithAnnotations(use bool) *Builder {
	b.filterOpts.useAnnotations = use
	return b
}

func (b *Builder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = builderErrorf(format, args...)
	}
}

// init resolves the record type, analyzes fields, and builds the argument
// parser. It runs once; later builds reuse the computed state.
func (b *Builder) init() error {
	if b.err != nil {
		return b.err
	}
	if b.ready {
		return nil
	}

	v := reflect.ValueOf(b.prototype)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			b.err = builderErrorf("prototype must be a non-nil struct or struct pointer")
			return b.err
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		b.err = builderErrorf("prototype must be a struct, got %T", b.prototype)
		return b.err
	}

	b.recordType = v.Type()
	// Snapshot the defaults: the prototype may be the same struct the
	// caller later decodes into.
	defaults := reflect.New(b.recordType).Elem()
	defaults.Set(v)
	b.defaults = defaults

	fields, order, err := analyzeFields(b.recordType, defaults, b.filterOpts)
	if err != nil {
		b.err = err
		return err
	}
	b.fields = fields
	b.order = order

	flags, positionals, err := buildArgSpecs(fields, order, b.baseConfigName)
	if err != nil {
		b.err = err
		return err
	}
	b.parser = newArgParser(flags, positionals, fields, b.program, b.output, b.errorHandling)

	b.ready = true
	return nil
}

// Fields returns the computed field descriptors keyed by config name.
// Useful for diagnostics; the returned descriptors must not be mutated.
func (b *Builder) Fields() (map[string]*FieldDescriptor, error) {
	if err := b.init(); err != nil {
		return nil, err
	}
	return b.fields, nil
}

// Build runs the pipeline through the merge step and returns the merged
// configuration mapping without constructing the record.
func (b *Builder) Build() (map[string]any, error) {
	if err := b.init(); err != nil {
		return nil, err
	}

	pa, err := b.parser.Parse(b.args)
	if err != nil {
		return nil, err
	}

	base := make(map[string]any)
	if pa.baseConfigPath != "" {
		base, err = loadStructuredFile(pa.baseConfigPath)
		if err != nil {
			return nil, &ConfigError{
				Path: pa.baseConfigPath,
				Msg:  fmt.Sprintf("failed to load base config from %s", pa.baseConfigPath),
				Err:  err,
			}
		}
	}

	return b.mergeSources(base, pa)
}

// BuildInto runs the full pipeline and populates target, which must be a
// non-nil pointer to the record type. On error the target's contents are
// undefined.
func (b *Builder) BuildInto(target any) error {
	merged, err := b.Build()
	if err != nil {
		return err
	}
	return b.constructRecord(target, merged)
}

// MustBuildInto is like BuildInto but panics on error.
func (b *Builder) MustBuildInto(target any) {
	if err := b.BuildInto(target); err != nil {
		panic(fmt.Sprintf("structargs: build failed: %v", err))
	}
}
