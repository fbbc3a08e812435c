// Package fileio reads and writes texts, frequency tables and mappings.
package fileio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

var (
	// ErrNotFound reports a missing input file.
	ErrNotFound = errors.New("file not found")
	// ErrMalformed reports a file that cannot be decoded.
	ErrMalformed = errors.New("malformed file")
)

// ReadText returns the full contents of a UTF-8 text file. Invalid UTF-8 is
// rejected with ErrMalformed.
func ReadText(path string) (string, error) {
	data, err := readFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s: invalid UTF-8", ErrMalformed, path)
	}
	return string(data), nil
}

// WriteText replaces path with text.
func WriteText(path, text string) error {
	return writeAtomic(path, []byte(text))
}

func readFile(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("input path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func writeAtomic(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("output path is empty")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, ".subcrack-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
