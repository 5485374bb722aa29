// File: structargs/args.go
package structargs

import (
	"fmt"
	"strings"
)

// argKind distinguishes how a flag consumes tokens and where its value
// lands in the parse result.
type argKind int

const (
	argScalar argKind = iota
	argBoolPositive
	argBoolNegative
	argList
	argMapFile
	argMapOverride
	argPositional
)

// argSpec is one CLI argument definition derived from a field descriptor.
// Boolean fields produce two specs sharing one destination; mapping fields
// produce a file-path spec plus a repeatable override spec. Specs are
// derived deterministically and never mutated.
type argSpec struct {
	Field      string // destination field name ("" only for the base config flag)
	Long       string // long flag name without the leading dashes
	Short      string // optional single-character alias
	Kind       argKind
	Help       string
	Metavar    string
	NArgs      string // list and positional arity
	Choices    []string
	Coerce     func(string) (any, error)
	BaseConfig bool // the top-level base config file argument
}

// flagLabel renders the spec's flag names for errors and usage text.
func (s *argSpec) flagLabel() string {
	if s.Kind == argPositional {
		return s.metavar()
	}
	label := "--" + s.Long
	if s.Short != "" {
		label = "-" + s.Short + ", " + label
	}
	return label
}

func (s *argSpec) metavar() string {
	if s.Metavar != "" {
		return s.Metavar
	}
	return strings.ToUpper(strings.ReplaceAll(s.Long, "-", "_"))
}

// buildArgSpecs maps descriptors to argument definitions, registering the
// base config file argument first and then one or two specs per included
// field in declaration order. Positional fields are returned separately,
// in declaration order. Flag-name collisions fail fast.
func buildArgSpecs(fields map[string]*FieldDescriptor, order []string, baseConfigName string) (flags []*argSpec, positionals []*argSpec, err error) {
	byLong := make(map[string]string)  // long name -> field
	byShort := make(map[string]string) // short char -> field

	claimLong := func(long, field string) error {
		if prev, taken := byLong[long]; taken {
			return builderErrorf("flag --%s for field %q collides with field %q", long, field, prev)
		}
		byLong[long] = field
		return nil
	}
	claimShort := func(short, field string) error {
		if short == "" {
			return nil
		}
		if prev, taken := byShort[short]; taken {
			return builderErrorf("short flag -%s for field %q collides with field %q", short, field, prev)
		}
		byShort[short] = field
		return nil
	}

	base := &argSpec{
		Long:       baseConfigName,
		Kind:       argScalar,
		Help:       "Base configuration file (JSON, YAML, or TOML)",
		Metavar:    "PATH",
		Coerce:     func(s string) (any, error) { return s, nil },
		BaseConfig: true,
	}
	if err := claimLong(baseConfigName, "(base config)"); err != nil {
		return nil, nil, err
	}
	flags = append(flags, base)

	for _, name := range order {
		d := fields[name]
		if !d.CLI {
			continue
		}

		help := d.Help
		if help == "" {
			help = d.Name
		}
		if d.FileLoadable {
			help += " (supports @file.txt to load from file)"
		}
		if len(d.Choices) > 0 {
			help += fmt.Sprintf(" (choices: %s)", strings.Join(d.Choices, ", "))
		}

		if d.Positional {
			spec := &argSpec{
				Field:   name,
				Long:    d.cliName(),
				Kind:    argPositional,
				Help:    help,
				Metavar: d.Metavar,
				NArgs:   d.NArgs,
				Choices: d.Choices,
				Coerce:  coerceFunc(d.Type),
			}
			positionals = append(positionals, spec)
			continue
		}

		long := d.cliName()
		if err := claimLong(long, name); err != nil {
			return nil, nil, err
		}
		if err := claimShort(d.Short, name); err != nil {
			return nil, nil, err
		}

		switch {
		case d.boolField():
			boolHelp := help
			switch v := d.Default.(type) {
			case bool:
				boolHelp = fmt.Sprintf("%s (default: %v)", help, v)
			case *bool:
				if v != nil {
					boolHelp = fmt.Sprintf("%s (default: %v)", help, *v)
				}
			}
			flags = append(flags, &argSpec{
				Field: name,
				Long:  long,
				Short: d.Short,
				Kind:  argBoolPositive,
				Help:  boolHelp,
			})
			negative := "no-" + long
			if err := claimLong(negative, name); err != nil {
				return nil, nil, err
			}
			flags = append(flags, &argSpec{
				Field: name,
				Long:  negative,
				Kind:  argBoolNegative,
				Help:  "Disable " + help,
			})

		case d.Shape.IsList():
			nargs := "+"
			listHelp := help + " (specify one or more values)"
			if d.Shape.IsOptional() || d.HasDefault {
				nargs = "*"
				listHelp = help + " (specify zero or more values)"
			}
			flags = append(flags, &argSpec{
				Field:   name,
				Long:    long,
				Short:   d.Short,
				Kind:    argList,
				Help:    listHelp,
				Metavar: d.Metavar,
				NArgs:   nargs,
				Choices: d.Choices,
			})

		case d.Shape.IsMapping():
			flags = append(flags, &argSpec{
				Field:   name,
				Long:    long,
				Short:   d.Short,
				Kind:    argMapFile,
				Help:    help + " configuration file path",
				Metavar: "PATH",
			})
			ovName := d.overrideName()
			if err := claimLong(ovName, name); err != nil {
				return nil, nil, err
			}
			flags = append(flags, &argSpec{
				Field:   name,
				Long:    ovName,
				Kind:    argMapOverride,
				Help:    help + " property override (format: key.path:value)",
				Metavar: "KEY.PATH:VALUE",
			})

		default:
			flags = append(flags, &argSpec{
				Field:   name,
				Long:    long,
				Short:   d.Short,
				Kind:    argScalar,
				Help:    help,
				Metavar: d.Metavar,
				Choices: d.Choices,
				Coerce:  coerceFunc(d.Type),
			})
		}
	}

	if err := validatePositionals(positionals); err != nil {
		return nil, nil, err
	}

	return flags, positionals, nil
}

// validatePositionals enforces the variadic-positional constraints: at
// most one positional may take a variable number of tokens, and it must be
// declared last.
func validatePositionals(positionals []*argSpec) error {
	for i, spec := range positionals {
		variadic := spec.NArgs == "*" || spec.NArgs == "+"
		if variadic && i != len(positionals)-1 {
			return builderErrorf("variadic positional %q must be the last positional argument", spec.Field)
		}
	}
	return nil
}
