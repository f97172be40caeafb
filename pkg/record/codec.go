package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"gopkg.in/yaml.v3"
)

// Format is an on-disk encoding of a record
type Format string

const (
	FormatJSON   Format = "json"
	FormatSnappy Format = "json.sz"
	FormatYAML   Format = "yaml"
)

// ErrUnknownFormat is returned for file names with no known extension
var ErrUnknownFormat = errors.New("unknown record format")

// FormatFor picks the format from a file name
func FormatFor(path string) (Format, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".json.sz"):
		return FormatSnappy, nil
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON, nil
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Marshal encodes r in format f
func Marshal(r Record, f Format) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	switch f {
	case FormatJSON:
		return append(data, '\n'), nil
	case FormatSnappy:
		return snappy.Encode(nil, data), nil
	case FormatYAML:
		// Node data is polymorphic, so YAML goes through the JSON form.
		tree, err := decodeTree(data)
		if err != nil {
			return nil, err
		}
		return yaml.Marshal(tree)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Unmarshal decodes a record stored in format f
func Unmarshal(data []byte, f Format) (Record, error) {
	var r Record

	switch f {
	case FormatJSON:
	case FormatSnappy:
		decoded, err := snappy.Decode(nil, data)
		if err != nil {
			return r, fmt.Errorf("failed to decompress record: %w", err)
		}
		data = decoded
	case FormatYAML:
		var tree any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return r, fmt.Errorf("failed to parse yaml record: %w", err)
		}
		converted, err := json.Marshal(tree)
		if err != nil {
			return r, fmt.Errorf("failed to convert yaml record: %w", err)
		}
		data = converted
	default:
		return r, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}

	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return r, nil
}

// Encode writes r to w in format f
func Encode(w io.Writer, r Record, f Format) error {
	data, err := Marshal(r, f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Decode reads a whole record from rd
func Decode(rd io.Reader, f Format) (Record, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return Record{}, err
	}
	return Unmarshal(data, f)
}

// decodeTree parses JSON into generic values, keeping integers integral so
// that epochs and ids survive the trip through YAML unchanged.
func decodeTree(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("failed to convert record: %w", err)
	}
	return normalizeNumbers(tree), nil
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
	}
	return v
}
