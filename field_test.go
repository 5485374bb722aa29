// File: structargs/field_test.go
package structargs

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeFor(t *testing.T, prototype any, opts filterOptions) (map[string]*FieldDescriptor, []string) {
	t.Helper()
	v := reflect.ValueOf(prototype)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	fields, order, err := analyzeFields(v.Type(), v, opts)
	require.NoError(t, err)
	return fields, order
}

func defaultFilterOpts() filterOptions {
	return filterOptions{useAnnotations: true}
}

func TestShapeClassification(t *testing.T) {
	type Config struct {
		Name     string          `toml:"name"`
		Count    int             `toml:"count"`
		Ratio    *float64        `toml:"ratio"`
		Items    []string        `toml:"items"`
		MoreOpt  *[]int          `toml:"more_opt"`
		Settings map[string]any  `toml:"settings"`
		Extra    *map[string]int `toml:"extra"`
		Opaque   struct{ X int } `toml:"opaque"`
	}

	fields, order, err := analyzeFields(reflect.TypeOf(Config{}), reflect.ValueOf(Config{}), defaultFilterOpts())
	require.NoError(t, err)
	require.Len(t, order, 8)

	assert.Equal(t, ShapeScalar, fields["name"].Shape)
	assert.Equal(t, ShapeScalar, fields["count"].Shape)
	assert.Equal(t, ShapeOptionalScalar, fields["ratio"].Shape)
	assert.Equal(t, ShapeList, fields["items"].Shape)
	assert.Equal(t, ShapeOptionalList, fields["more_opt"].Shape)
	assert.Equal(t, ShapeMapping, fields["settings"].Shape)
	assert.Equal(t, ShapeOptionalMapping, fields["extra"].Shape)

	// Unknown generics fail open as opaque scalars.
	assert.Equal(t, ShapeScalar, fields["opaque"].Shape)

	assert.Equal(t, reflect.TypeOf(""), fields["items"].Elem)
	assert.Equal(t, reflect.TypeOf(0), fields["extra"].Elem)
}

func TestFieldNaming(t *testing.T) {
	type Config struct {
		HostName string `toml:"host_name"`
		Plain    string
		Skipped  string `toml:"-"`
	}

	fields, order := analyzeFor(t, Config{}, defaultFilterOpts())

	assert.Equal(t, []string{"host_name", "Plain"}, order)
	assert.Equal(t, "host-name", fields["host_name"].cliName())
	assert.NotContains(t, fields, "Skipped")
}

func TestOverrideName(t *testing.T) {
	d := &FieldDescriptor{Name: "max_retry_count"}
	assert.Equal(t, "mrc", d.overrideName())

	single := &FieldDescriptor{Name: "settings"}
	assert.Equal(t, "s", single.overrideName())
}

func TestDefaultTriState(t *testing.T) {
	type Config struct {
		Port    int    `toml:"port"`
		Name    string `toml:"name" cli:"required"`
		Verbose bool   `toml:"verbose"`
	}

	fields, _ := analyzeFor(t, Config{Port: 8080}, defaultFilterOpts())

	require.True(t, fields["port"].HasDefault)
	assert.Equal(t, 8080, fields["port"].Default)

	assert.False(t, fields["name"].HasDefault)

	// A zero-valued default is a literal default, not "no default".
	require.True(t, fields["verbose"].HasDefault)
	assert.Equal(t, false, fields["verbose"].Default)
}

func TestAnnotationParsing(t *testing.T) {
	t.Run("AllOptions", func(t *testing.T) {
		type Config struct {
			Region  string   `toml:"region" cli:"short=r,choices=us-east|us-west" help:"AWS region"`
			Message string   `toml:"message" cli:"file"`
			Hidden  string   `toml:"hidden" cli:"exclude"`
			Files   []string `toml:"files" cli:"positional,nargs=+,metavar=FILE"`
		}

		fields, _ := analyzeFor(t, Config{}, defaultFilterOpts())

		r := fields["region"]
		assert.Equal(t, "r", r.Short)
		assert.Equal(t, []string{"us-east", "us-west"}, r.Choices)
		assert.Equal(t, "AWS region", r.Help)

		assert.True(t, fields["message"].FileLoadable)
		assert.True(t, fields["hidden"].Excluded)

		f := fields["files"]
		assert.True(t, f.Positional)
		assert.Equal(t, "+", f.NArgs)
		assert.Equal(t, "FILE", f.Metavar)
	})

	t.Run("BadShort", func(t *testing.T) {
		type Config struct {
			Name string `toml:"name" cli:"short=nn"`
		}
		_, _, err := analyzeFields(reflect.TypeOf(Config{}), reflect.ValueOf(Config{}), defaultFilterOpts())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "single character")
	})

	t.Run("BadNArgs", func(t *testing.T) {
		type Config struct {
			Files []string `toml:"files" cli:"positional,nargs=zero"`
		}
		_, _, err := analyzeFields(reflect.TypeOf(Config{}), reflect.ValueOf(Config{}), defaultFilterOpts())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid nargs")
	})

	t.Run("UnknownOption", func(t *testing.T) {
		type Config struct {
			Name string `toml:"name" cli:"shiny"`
		}
		_, _, err := analyzeFields(reflect.TypeOf(Config{}), reflect.ValueOf(Config{}), defaultFilterOpts())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown cli tag option")
	})
}

func TestFilterPolicy(t *testing.T) {
	type Config struct {
		A string `toml:"a"`
		B string `toml:"b" cli:"exclude"`
		C string `toml:"c"`
	}

	t.Run("DefaultIncludesAll", func(t *testing.T) {
		fields, _ := analyzeFor(t, Config{}, defaultFilterOpts())
		assert.True(t, fields["a"].CLI)
		assert.False(t, fields["b"].CLI)
		assert.True(t, fields["c"].CLI)
	})

	t.Run("ExclusionAnnotationWinsOverCustomFilter", func(t *testing.T) {
		opts := defaultFilterOpts()
		opts.filter = func(name string, d FieldDescriptor) bool { return true }
		fields, _ := analyzeFor(t, Config{}, opts)
		assert.False(t, fields["b"].CLI)
	})

	t.Run("CustomFilterOverridesSets", func(t *testing.T) {
		opts := defaultFilterOpts()
		opts.exclude = map[string]bool{"a": true}
		// exclude set conflicts with include set normally; the filter
		// bypasses both.
		opts.filter = func(name string, d FieldDescriptor) bool { return name == "a" }
		fields, _ := analyzeFor(t, Config{}, opts)
		assert.True(t, fields["a"].CLI)
		assert.False(t, fields["c"].CLI)
	})

	t.Run("IncludeSet", func(t *testing.T) {
		opts := defaultFilterOpts()
		opts.include = map[string]bool{"a": true}
		fields, _ := analyzeFor(t, Config{}, opts)
		assert.True(t, fields["a"].CLI)
		assert.False(t, fields["c"].CLI)
	})

	t.Run("ExcludeSet", func(t *testing.T) {
		opts := defaultFilterOpts()
		opts.exclude = map[string]bool{"c": true}
		fields, _ := analyzeFor(t, Config{}, opts)
		assert.True(t, fields["a"].CLI)
		assert.False(t, fields["c"].CLI)
	})

	t.Run("AnnotationsDisabled", func(t *testing.T) {
		opts := defaultFilterOpts()
		opts.useAnnotations = false
		fields, _ := analyzeFor(t, Config{}, opts)
		assert.True(t, fields["b"].CLI)
	})

	t.Run("BothSetsIsError", func(t *testing.T) {
		opts := defaultFilterOpts()
		opts.include = map[string]bool{"a": true}
		opts.exclude = map[string]bool{"b": true}
		_, _, err := analyzeFields(reflect.TypeOf(Config{}), reflect.ValueOf(Config{}), opts)
		require.Error(t, err)

		var berr *BuilderError
		require.ErrorAs(t, err, &berr)
		assert.True(t, strings.Contains(err.Error(), "include"))
	})
}

func TestNonStructRecordType(t *testing.T) {
	_, _, err := analyzeFields(reflect.TypeOf(42), reflect.ValueOf(42), defaultFilterOpts())
	require.Error(t, err)

	var berr *BuilderError
	assert.ErrorAs(t, err, &berr)
}
