// File: structargs/construct.go
package structargs

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// constructRecord instantiates the record from the merged mapping: the
// target is seeded with the prototype's defaults, required fields are
// checked, and the mapping is decoded over the defaults. Construction is
// all-or-nothing; on error the target's contents are undefined and the
// caller must discard it.
func (b *Builder) constructRecord(target any, merged map[string]any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return builderErrorf("target must be a non-nil pointer to %s, got %T", b.recordType, target)
	}
	elem := rv.Elem()
	if elem.Type() != b.recordType {
		return builderErrorf("target type %s does not match record type %s", elem.Type(), b.recordType)
	}

	// Seed defaults so fields absent from every source keep them.
	elem.Set(b.defaults)

	for _, name := range b.order {
		d := b.fields[name]
		if d.HasDefault {
			continue
		}
		if _, present := merged[name]; !present {
			return &ConfigError{
				Field: name,
				Msg:   fmt.Sprintf("failed to create %s", b.recordType.Name()),
				Err:   fmt.Errorf("missing required field '%s'", name),
			}
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "toml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return &ConfigError{Msg: "failed to create decoder", Err: err}
	}

	if err := decoder.Decode(merged); err != nil {
		return &ConfigError{
			Msg: fmt.Sprintf("failed to create %s", b.recordType.Name()),
			Err: err,
		}
	}

	return nil
}
