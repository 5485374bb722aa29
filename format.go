// File: structargs/format.go
package structargs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// loadStructuredFile reads and parses a JSON, YAML, or TOML file into a
// mapping. The format is selected by file extension (case-insensitive);
// without a recognized extension the content is tried as JSON, then YAML,
// then TOML. All failures carry the file path.
func loadStructuredFile(path string) (map[string]any, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat configuration file '%s': %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is not a file: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open configuration file '%s': %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file '%s': %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("file is not valid UTF-8: %s", path)
	}

	switch detectFileFormat(path) {
	case "json":
		return parseJSON(data, path)
	case "yaml":
		return parseYAML(data, path)
	case "toml":
		return parseTOML(data, path)
	}

	// No recognized extension: JSON first, then YAML, then TOML.
	if m, err := parseJSON(data, path); err == nil {
		return m, nil
	}
	if m, err := parseYAML(data, path); err == nil {
		return m, nil
	}
	if m, err := parseTOML(data, path); err == nil {
		return m, nil
	}
	return nil, fmt.Errorf("could not parse %s as any supported format (JSON, YAML, TOML)", path)
}

// detectFileFormat determines format from the file extension.
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return ""
	}
}

func parseJSON(data []byte, path string) (map[string]any, error) {
	result := make(map[string]any)
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // Preserve number precision
	if err := decoder.Decode(&result); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return result, nil
}

func parseYAML(data []byte, path string) (map[string]any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	if raw == nil {
		return make(map[string]any), nil
	}
	result, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid YAML in %s: document is not a mapping", path)
	}
	return result, nil
}

func parseTOML(data []byte, path string) (map[string]any, error) {
	result := make(map[string]any)
	if err := toml.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("invalid TOML in %s: %w", path, err)
	}
	return result, nil
}
