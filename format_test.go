// File: structargs/format_test.go
package structargs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadStructuredFile(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		path := writeTempFile(t, "config.json", `{"name": "svc", "port": 8080}`)
		m, err := loadStructuredFile(path)
		require.NoError(t, err)
		assert.Equal(t, "svc", m["name"])
		// Numbers keep precision as json.Number.
		assert.Equal(t, json.Number("8080"), m["port"])
	})

	t.Run("YAML", func(t *testing.T) {
		path := writeTempFile(t, "config.yaml", "name: svc\nport: 8080\nitems:\n  - a\n  - b\n")
		m, err := loadStructuredFile(path)
		require.NoError(t, err)
		assert.Equal(t, "svc", m["name"])
		assert.Equal(t, 8080, m["port"])
		assert.Equal(t, []any{"a", "b"}, m["items"])
	})

	t.Run("YMLExtension", func(t *testing.T) {
		path := writeTempFile(t, "config.yml", "name: svc\n")
		m, err := loadStructuredFile(path)
		require.NoError(t, err)
		assert.Equal(t, "svc", m["name"])
	})

	t.Run("TOML", func(t *testing.T) {
		path := writeTempFile(t, "config.toml", "name = \"svc\"\nport = 8080\n\n[limits]\nmax = 10\n")
		m, err := loadStructuredFile(path)
		require.NoError(t, err)
		assert.Equal(t, "svc", m["name"])
		assert.Equal(t, int64(8080), m["port"])
		limits := m["limits"].(map[string]any)
		assert.Equal(t, int64(10), limits["max"])
	})

	t.Run("UppercaseExtension", func(t *testing.T) {
		path := writeTempFile(t, "config.JSON", `{"name": "svc"}`)
		m, err := loadStructuredFile(path)
		require.NoError(t, err)
		assert.Equal(t, "svc", m["name"])
	})

	t.Run("WrongFormatForExtension", func(t *testing.T) {
		path := writeTempFile(t, "config.json", "name: svc\n")
		_, err := loadStructuredFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JSON")
		assert.Contains(t, err.Error(), path)
	})

	t.Run("NotFound", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.json")
		_, err := loadStructuredFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
		assert.Contains(t, err.Error(), path)
	})

	t.Run("Directory", func(t *testing.T) {
		dir := t.TempDir()
		_, err := loadStructuredFile(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a file")
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "binary.json")
		require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0644))
		_, err := loadStructuredFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "UTF-8")
	})
}

func TestFormatFallback(t *testing.T) {
	t.Run("JSONWithoutExtension", func(t *testing.T) {
		path := writeTempFile(t, "config", `{"port": 80}`)
		m, err := loadStructuredFile(path)
		require.NoError(t, err)
		assert.Equal(t, json.Number("80"), m["port"])
	})

	t.Run("YAMLWithoutExtension", func(t *testing.T) {
		path := writeTempFile(t, "config", "port: 80\nname: svc\n")
		m, err := loadStructuredFile(path)
		require.NoError(t, err)
		assert.Equal(t, 80, m["port"])
	})

	t.Run("TOMLWithoutExtension", func(t *testing.T) {
		path := writeTempFile(t, "config", "[server]\nport = 80\n")
		m, err := loadStructuredFile(path)
		require.NoError(t, err)
		server := m["server"].(map[string]any)
		assert.Equal(t, int64(80), server["port"])
	})

	t.Run("NoFormatMatches", func(t *testing.T) {
		path := writeTempFile(t, "config", "{{{ not: anything = valid ]]")
		_, err := loadStructuredFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "any supported format")
	})
}

func TestParseYAMLEdgeCases(t *testing.T) {
	t.Run("EmptyDocumentIsEmptyMap", func(t *testing.T) {
		m, err := parseYAML([]byte(""), "empty.yaml")
		require.NoError(t, err)
		assert.Empty(t, m)
	})

	t.Run("NonMappingDocument", func(t *testing.T) {
		_, err := parseYAML([]byte("- a\n- b\n"), "list.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a mapping")
	})
}

func TestDetectFileFormat(t *testing.T) {
	assert.Equal(t, "json", detectFileFormat("/etc/app/config.json"))
	assert.Equal(t, "yaml", detectFileFormat("config.yaml"))
	assert.Equal(t, "yaml", detectFileFormat("config.YML"))
	assert.Equal(t, "toml", detectFileFormat("config.toml"))
	assert.Equal(t, "", detectFileFormat("config.txt"))
	assert.Equal(t, "", detectFileFormat("config"))
}
