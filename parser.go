// File: structargs/parser.go
package structargs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrorHandling defines how parse failures are reported, following the
// convention of the standard flag package.
type ErrorHandling int

const (
	// ExitOnError prints the error and usage to the output writer and
	// calls os.Exit(2); help requests exit 0.
	ExitOnError ErrorHandling = iota
	// ContinueOnError returns the error (ErrHelp for help requests).
	ContinueOnError
)

// parsedArgs is the result of one tokenizer pass: coerced per-field
// values, override tokens in command-line order, and the base config path.
type parsedArgs struct {
	baseConfigPath string
	values         map[string]any      // field -> scalar, bool, or []string
	overrides      map[string][]string // field -> key.path:value tokens
}

// argParser tokenizes an argument vector against a fixed set of argument
// specs. It is built once per Builder and holds no per-parse state.
type argParser struct {
	flags       []*argSpec
	positionals []*argSpec
	byLong      map[string]*argSpec
	byShort     map[string]*argSpec
	boolDefault map[string]bool // bool field -> declared default (pre-parse slot value)

	program       string
	output        io.Writer
	errorHandling ErrorHandling
}

func newArgParser(flags, positionals []*argSpec, fields map[string]*FieldDescriptor, program string, output io.Writer, eh ErrorHandling) *argParser {
	p := &argParser{
		flags:         flags,
		positionals:   positionals,
		byLong:        make(map[string]*argSpec),
		byShort:       make(map[string]*argSpec),
		boolDefault:   make(map[string]bool),
		program:       program,
		output:        output,
		errorHandling: eh,
	}
	for _, s := range flags {
		p.byLong[s.Long] = s
		if s.Short != "" {
			p.byShort[s.Short] = s
		}
	}
	for _, d := range fields {
		if !d.CLI || !d.boolField() || !d.HasDefault {
			continue
		}
		// Only concrete defaults backfill; a nil *bool default leaves the
		// slot empty so a base-file value survives the merge.
		switch v := d.Default.(type) {
		case bool:
			p.boolDefault[d.Name] = v
		case *bool:
			if v != nil {
				p.boolDefault[d.Name] = *v
			}
		}
	}
	return p
}

// Parse tokenizes args and applies the configured error handling. With
// ExitOnError a failure terminates the process after printing usage.
func (p *argParser) Parse(args []string) (*parsedArgs, error) {
	pa, err := p.parse(args)
	if err == nil {
		return pa, nil
	}

	if p.errorHandling == ContinueOnError {
		return nil, err
	}

	if errors.Is(err, ErrHelp) {
		p.printUsage()
		os.Exit(0)
	}
	fmt.Fprintf(p.output, "%s: error: %v\n", p.program, err)
	p.printUsage()
	os.Exit(2)
	return nil, err // unreachable
}

func (p *argParser) parse(args []string) (*parsedArgs, error) {
	pa := &parsedArgs{
		values:    make(map[string]any),
		overrides: make(map[string][]string),
	}

	var posTokens []string
	flagsDone := false

	i := 0
	for i < len(args) {
		arg := args[i]
		i++

		switch {
		case flagsDone:
			posTokens = append(posTokens, arg)

		case arg == "--":
			flagsDone = true

		case strings.HasPrefix(arg, "--"):
			name, inline, hasInline := strings.Cut(arg[2:], "=")
			if name == "help" {
				return nil, ErrHelp
			}
			spec, ok := p.byLong[name]
			if !ok {
				return nil, fmt.Errorf("unknown flag --%s", name)
			}
			if err := p.consumeFlag(spec, inline, hasInline, args, &i, pa); err != nil {
				return nil, err
			}

		case len(arg) > 1 && arg[0] == '-' && !looksNumeric(arg):
			name, inline, hasInline := strings.Cut(arg[1:], "=")
			if name == "h" {
				if _, claimed := p.byShort["h"]; !claimed {
					return nil, ErrHelp
				}
			}
			spec, ok := p.byShort[name]
			if !ok {
				return nil, fmt.Errorf("unknown flag -%s", name)
			}
			if err := p.consumeFlag(spec, inline, hasInline, args, &i, pa); err != nil {
				return nil, err
			}

		default:
			posTokens = append(posTokens, arg)
		}
	}

	if err := p.assignPositionals(posTokens, pa); err != nil {
		return nil, err
	}

	// Boolean slots default to the field's declared value so that
	// omission on the command line preserves it.
	for field, def := range p.boolDefault {
		if _, set := pa.values[field]; !set {
			pa.values[field] = def
		}
	}

	return pa, nil
}

// consumeFlag applies one recognized flag, consuming value tokens from
// args as the spec's kind requires. i points past the flag token.
func (p *argParser) consumeFlag(spec *argSpec, inline string, hasInline bool, args []string, i *int, pa *parsedArgs) error {
	switch spec.Kind {
	case argBoolPositive:
		if hasInline {
			return fmt.Errorf("flag %s does not take a value", spec.flagLabel())
		}
		pa.values[spec.Field] = true

	case argBoolNegative:
		if hasInline {
			return fmt.Errorf("flag --%s does not take a value", spec.Long)
		}
		pa.values[spec.Field] = false

	case argList:
		var vals []string
		if hasInline {
			// --items=a takes exactly the inline value.
			vals = append(vals, inline)
		} else {
			for *i < len(args) && !looksLikeFlag(args[*i]) {
				vals = append(vals, args[*i])
				*i++
			}
		}
		if spec.NArgs == "+" && len(vals) == 0 {
			return fmt.Errorf("flag %s requires at least one value", spec.flagLabel())
		}
		for _, v := range vals {
			if err := checkChoice(spec, v); err != nil {
				return err
			}
		}
		pa.values[spec.Field] = vals

	case argMapOverride:
		val, err := p.flagValue(spec, inline, hasInline, args, i)
		if err != nil {
			return err
		}
		pa.overrides[spec.Field] = append(pa.overrides[spec.Field], val)

	default: // argScalar, argMapFile
		val, err := p.flagValue(spec, inline, hasInline, args, i)
		if err != nil {
			return err
		}
		if err := checkChoice(spec, val); err != nil {
			return err
		}
		if spec.BaseConfig {
			pa.baseConfigPath = val
			return nil
		}
		if spec.Kind == argMapFile {
			pa.values[spec.Field] = val
			return nil
		}
		coerced, err := spec.Coerce(val)
		if err != nil {
			return fmt.Errorf("flag %s: %v", spec.flagLabel(), err)
		}
		pa.values[spec.Field] = coerced
	}
	return nil
}

func (p *argParser) flagValue(spec *argSpec, inline string, hasInline bool, args []string, i *int) (string, error) {
	if hasInline {
		return inline, nil
	}
	if *i >= len(args) || looksLikeFlag(args[*i]) {
		return "", fmt.Errorf("flag %s expects one argument", spec.flagLabel())
	}
	val := args[*i]
	*i++
	return val, nil
}

// assignPositionals distributes collected positional tokens across the
// positional specs in declaration order. Because at most one positional is
// variadic and it is last, a single left-to-right pass with a lookahead
// minimum suffices.
func (p *argParser) assignPositionals(tokens []string, pa *parsedArgs) error {
	minNeeded := func(spec *argSpec) int {
		switch spec.NArgs {
		case "", "+":
			return 1
		case "?", "*":
			return 0
		default:
			n, _ := strconv.Atoi(spec.NArgs)
			return n
		}
	}

	rem := tokens
	for idx, spec := range p.positionals {
		minAfter := 0
		for _, later := range p.positionals[idx+1:] {
			minAfter += minNeeded(later)
		}
		avail := len(rem) - minAfter

		var take int
		switch spec.NArgs {
		case "":
			if avail < 1 {
				return fmt.Errorf("missing required positional argument %s", spec.metavar())
			}
			take = 1
		case "?":
			if avail >= 1 {
				take = 1
			}
		case "*":
			take = max(avail, 0)
		case "+":
			if avail < 1 {
				return fmt.Errorf("positional argument %s requires at least one value", spec.metavar())
			}
			take = avail
		default:
			n, _ := strconv.Atoi(spec.NArgs)
			if avail < n {
				return fmt.Errorf("positional argument %s expects %d values", spec.metavar(), n)
			}
			take = n
		}

		vals := rem[:take]
		rem = rem[take:]

		for _, v := range vals {
			if err := checkChoice(spec, v); err != nil {
				return err
			}
		}

		switch spec.NArgs {
		case "", "?":
			if take == 1 {
				coerced, err := spec.Coerce(vals[0])
				if err != nil {
					return fmt.Errorf("positional argument %s: %v", spec.metavar(), err)
				}
				pa.values[spec.Field] = coerced
			}
		default:
			pa.values[spec.Field] = append([]string(nil), vals...)
		}
	}

	if len(rem) > 0 {
		return fmt.Errorf("unrecognized arguments: %s", strings.Join(rem, " "))
	}
	return nil
}

// checkChoice enforces the restricted-choice constraint: case-sensitive
// exact match against the stringified choice list.
func checkChoice(spec *argSpec, val string) error {
	if len(spec.Choices) == 0 {
		return nil
	}
	for _, c := range spec.Choices {
		if val == c {
			return nil
		}
	}
	return fmt.Errorf("invalid choice %q for %s (choose from: %s)",
		val, spec.flagLabel(), strings.Join(spec.Choices, ", "))
}

// looksLikeFlag reports whether a token terminates greedy value
// consumption. Negative numbers are values, not flags.
func looksLikeFlag(tok string) bool {
	return len(tok) > 1 && tok[0] == '-' && !looksNumeric(tok)
}

func looksNumeric(tok string) bool {
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}

// printUsage writes the generated usage text: positionals in order, then
// one line per flag with metavar and help.
func (p *argParser) printUsage() {
	var header strings.Builder
	header.WriteString("Usage: " + p.program + " [options]")
	for _, spec := range p.positionals {
		mv := spec.metavar()
		switch spec.NArgs {
		case "?":
			header.WriteString(" [" + mv + "]")
		case "*":
			header.WriteString(" [" + mv + " ...]")
		case "+":
			header.WriteString(" " + mv + " [" + mv + " ...]")
		case "":
			header.WriteString(" " + mv)
		default:
			n, _ := strconv.Atoi(spec.NArgs)
			for k := 0; k < n; k++ {
				header.WriteString(" " + mv)
			}
		}
	}
	fmt.Fprintln(p.output, header.String())

	if len(p.positionals) > 0 {
		fmt.Fprintln(p.output, "\nPositional arguments:")
		for _, spec := range p.positionals {
			fmt.Fprintf(p.output, "  %-24s %s\n", spec.metavar(), spec.Help)
		}
	}

	fmt.Fprintln(p.output, "\nOptions:")
	fmt.Fprintf(p.output, "  %-24s %s\n", "-h, --help", "show this help message and exit")
	for _, spec := range p.flags {
		label := spec.flagLabel()
		switch spec.Kind {
		case argBoolPositive, argBoolNegative:
			// no metavar
		case argList:
			label += " " + spec.metavar() + " ..."
		default:
			label += " " + spec.metavar()
		}
		fmt.Fprintf(p.output, "  %-24s %s\n", label, spec.Help)
	}
}
