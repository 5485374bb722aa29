// File: structargs/fileload.go
package structargs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// resolveFileLoadable resolves '@path' indirection for a file-loadable
// field. Values without the '@' sigil pass through unchanged. The referenced
// file is read in full as UTF-8 text and returned byte-for-byte: no
// trimming, no line-ending normalization, empty files included.
func resolveFileLoadable(raw string, fieldName string, d *FieldDescriptor) (string, error) {
	if !d.FileLoadable {
		return raw, nil
	}
	if len(raw) == 0 || raw[0] != '@' {
		return raw, nil
	}

	path := raw[1:]
	if path == "" {
		return "", &FileLoadError{Field: fieldName, Err: errors.New("empty file path")}
	}

	content, err := readTextFile(path)
	if err != nil {
		return "", &FileLoadError{Field: fieldName, Path: path, Err: err}
	}
	return content, nil
}

// readTextFile reads a file to completion as UTF-8 text. The file handle
// is closed on all exit paths.
func readTextFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found")
		}
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("path is not a file")
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return "", fmt.Errorf("file is not readable")
		}
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("cannot decode file as UTF-8")
	}
	return string(data), nil
}
