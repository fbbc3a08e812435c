package fileio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/subcrack/internal/frequency"
)

type field struct {
	key   string
	value any
}

// WriteTable stores a frequency table in rank order.
func WriteTable(path string, table frequency.Table) error {
	entries := table.Sorted()
	fields := make([]field, 0, len(entries))
	for _, e := range entries {
		fields = append(fields, field{key: string(e.Char), value: e.Freq})
	}
	data, err := encodeFields(path, fields)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// WriteMapping stores a key or recovered mapping ordered by source character.
func WriteMapping(path string, mapping map[rune]rune) error {
	pairs := frequency.Mapping(mapping).Pairs()
	fields := make([]field, 0, len(pairs))
	for _, p := range pairs {
		fields = append(fields, field{key: string(p[0]), value: string(p[1])})
	}
	data, err := encodeFields(path, fields)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// ReadTable loads a frequency table from JSON or YAML.
func ReadTable(path string) (frequency.Table, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	raw := map[string]float64{}
	if err := decode(path, data, &raw); err != nil {
		return nil, err
	}
	table := make(frequency.Table, len(raw))
	for key, value := range raw {
		r, err := singleRune(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
		table[r] = value
	}
	return table, nil
}

// ReadMapping loads a key or recovered mapping from JSON or YAML.
func ReadMapping(path string) (map[rune]rune, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	raw := map[string]string{}
	if err := decode(path, data, &raw); err != nil {
		return nil, err
	}
	mapping := make(map[rune]rune, len(raw))
	for key, value := range raw {
		from, err := singleRune(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
		to, err := singleRune(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
		mapping[from] = to
	}
	return mapping, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func decode(path string, data []byte, v any) error {
	if isYAML(path) {
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return nil
}

func encodeFields(path string, fields []field) ([]byte, error) {
	if isYAML(path) {
		return encodeYAML(fields)
	}
	return encodeJSON(fields)
}

// encodeJSON writes an object with four-space indentation, keeping field order.
func encodeJSON(fields []field) ([]byte, error) {
	if len(fields) == 0 {
		return []byte("{}\n"), nil
	}
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, f := range fields {
		key, err := marshalJSON(f.key)
		if err != nil {
			return nil, err
		}
		value, err := marshalJSON(f.value)
		if err != nil {
			return nil, err
		}
		buf.WriteString("    ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
		if i < len(fields)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode %v: %w", v, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func encodeYAML(fields []field) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		key := quotedScalar(f.key)
		var value *yaml.Node
		if s, ok := f.value.(string); ok {
			value = quotedScalar(s)
		} else {
			value = &yaml.Node{}
			if err := value.Encode(f.value); err != nil {
				return nil, fmt.Errorf("failed to encode %v: %w", f.value, err)
			}
		}
		root.Content = append(root.Content, key, value)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// quotedScalar keeps whitespace and line breaks intact in single-character keys.
func quotedScalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.DoubleQuotedStyle}
}

func singleRune(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("expected a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
