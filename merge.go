// File: structargs/merge.go
package structargs

import (
	"encoding/json"
	"fmt"
	"strings"
)

// mergeSources layers CLI-supplied values over the base mapping, field by
// field in declaration order: list values replace wholesale, mapping
// values are loaded from the referenced file and shallow-merged over any
// base mapping (CLI keys win), scalars run through '@file' resolution and
// overwrite. Dotted-path overrides for mapping fields are applied last, in
// command-line order. A failure for any field aborts the whole merge.
//
// Base keys never touched by the CLI survive untouched, including keys
// that match no descriptor; the record constructor ignores what it cannot
// place.
func (b *Builder) mergeSources(base map[string]any, pa *parsedArgs) (map[string]any, error) {
	merged := copyMap(base)

	for _, name := range b.order {
		d := b.fields[name]
		if !d.CLI {
			continue
		}

		if value, supplied := pa.values[name]; supplied {
			switch {
			case d.Shape.IsList():
				// CLI replaces the base value, never appends.
				merged[name] = value

			case d.Shape.IsMapping():
				path := value.(string)
				loaded, err := loadStructuredFile(path)
				if err != nil {
					return nil, &ConfigError{
						Field: name,
						Path:  path,
						Msg:   fmt.Sprintf("failed to load dictionary config for field '%s' from %s", name, path),
						Err:   err,
					}
				}
				if existing, isMap := merged[name].(map[string]any); isMap {
					combined := copyMap(existing)
					for k, v := range loaded {
						combined[k] = v
					}
					merged[name] = combined
				} else {
					merged[name] = loaded
				}

			default:
				if raw, isStr := value.(string); isStr {
					resolved, err := resolveFileLoadable(raw, name, d)
					if err != nil {
						return nil, err
					}
					merged[name] = resolved
				} else {
					merged[name] = value
				}
			}
		}

		if d.Shape.IsMapping() {
			if overrides := pa.overrides[name]; len(overrides) > 0 {
				target := make(map[string]any)
				if existing, isMap := merged[name].(map[string]any); isMap {
					target = deepCopyMap(existing)
				}
				for _, override := range overrides {
					if err := applyPropertyOverride(target, override); err != nil {
						return nil, &ConfigError{
							Field: name,
							Msg:   fmt.Sprintf("failed to apply property overrides for field '%s'", name),
							Err:   err,
						}
					}
				}
				merged[name] = target
			}
		}
	}

	return merged, nil
}

// applyPropertyOverride parses one key.path:value token and writes it into
// the target mapping, creating intermediate maps as needed.
func applyPropertyOverride(target map[string]any, override string) error {
	path, value, err := splitOverride(override)
	if err != nil {
		return err
	}
	setNestedValue(target, path, parseOverrideValue(value))
	return nil
}

// splitOverride splits a token at the first unescaped ':'. An escaped
// colon ('\:') in the path is kept literally.
func splitOverride(override string) (path, value string, err error) {
	escaped := false
	var pathBuilder strings.Builder
	for i := 0; i < len(override); i++ {
		c := override[i]
		switch {
		case escaped:
			pathBuilder.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == ':':
			return pathBuilder.String(), override[i+1:], nil
		default:
			pathBuilder.WriteByte(c)
		}
	}
	return "", "", fmt.Errorf("invalid override format: %s (expected key.path:value)", override)
}

// parseOverrideValue interprets an override value JSON-first: numbers,
// booleans, null and nested JSON documents decode as such, anything else
// stays a literal string. Numbers keep full precision as json.Number.
func parseOverrideValue(s string) any {
	if !json.Valid([]byte(s)) {
		return s
	}
	decoder := json.NewDecoder(strings.NewReader(s))
	decoder.UseNumber()
	var v any
	if err := decoder.Decode(&v); err != nil {
		return s
	}
	return v
}
