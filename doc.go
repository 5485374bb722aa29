// File: structargs/doc.go

// Package structargs builds typed configuration structs from command-line
// arguments layered over an optional base configuration file (JSON, YAML,
// or TOML), deriving the whole CLI surface from the struct's fields.
//
// Features:
//   - CLI argument generation per struct field (long flags, short aliases,
//     positional arguments, restricted choices, generated help text)
//   - Dual positive/negative flags for boolean fields (--verbose / --no-verbose)
//   - Greedy multi-value flags for slice fields (--items a b c)
//   - Map fields loaded from a structured file with repeatable
//     key.path:value override flags applied in command-line order
//   - '@file' indirection for string fields marked file-loadable
//   - Deterministic precedence: base file < CLI values < dotted overrides
//   - Field filtering via tags, include/exclude sets, or a custom filter
//
// Quick Start:
//
//	type Config struct {
//	    Name    string         `toml:"name" cli:"short=n" help:"Service name"`
//	    Port    int            `toml:"port"`
//	    Verbose bool           `toml:"verbose"`
//	    Items   []string       `toml:"items"`
//	    Message string         `toml:"message" cli:"file" help:"Message text"`
//	    Extra   map[string]any `toml:"extra"`
//	}
//
//	cfg := Config{Port: 8080}
//	if err := structargs.Parse(&cfg, os.Args[1:]); err != nil {
//	    log.Fatal(err)
//	}
//
// Merge semantics:
//
// The base file (selected with --config PATH) supplies initial values.
// CLI values overwrite them field by field: slices are replaced wholesale
// (never appended to), map fields loaded from a CLI-supplied file are
// shallow-merged over the base map with CLI keys winning, and scalars
// simply overwrite. Override flags for map fields (for example --mrc for a
// max_retry_count field) write into the map via dotted paths after all
// other layering, later overrides winning.
//
// The pipeline is synchronous and single-shot. Field descriptors are
// computed once per Builder and never mutated afterwards, so repeated
// builds on one Builder are safe without locking.
package structargs
