package zarr

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// MetadataKey is the object name of the array metadata inside a Zarr v2 store.
const MetadataKey = ".zarray"

// CompressorConfig represents the Zarr compressor metadata.
type CompressorConfig struct {
	ID      string `json:"id"`
	Cname   string `json:"cname,omitempty"`
	Clevel  int    `json:"clevel,omitempty"`
	Level   int    `json:"level,omitempty"`
	Shuffle int    `json:"shuffle,omitempty"`
}

// Metadata represents the Zarr V2 .zarray metadata.
type Metadata struct {
	ZarrFormat         int               `json:"zarr_format"`
	Shape              []int             `json:"shape"`
	Chunks             []int             `json:"chunks"`
	DType              string            `json:"dtype"`
	Compressor         *CompressorConfig `json:"compressor"`
	FillValue          any               `json:"fill_value"`
	Order              string            `json:"order"`
	Filters            []any             `json:"filters"`
	DimensionSeparator string            `json:"dimension_separator,omitempty"`
}

// LoadMetadata reads and parses .zarray content.
func LoadMetadata(reader io.Reader) (*Metadata, error) {
	var meta Metadata
	if err := json.NewDecoder(reader).Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Validate checks the metadata fields this package relies on.
func (m *Metadata) Validate() error {
	if m.ZarrFormat != 2 {
		return fmt.Errorf("unsupported zarr_format: %d, expected 2", m.ZarrFormat)
	}
	if m.Order != "" && m.Order != "C" {
		return fmt.Errorf("unsupported order: %q, only C order is supported", m.Order)
	}
	if len(m.Chunks) != len(m.Shape) {
		return fmt.Errorf("chunks %v do not match shape %v", m.Chunks, m.Shape)
	}
	for i, c := range m.Chunks {
		if c <= 0 {
			return fmt.Errorf("invalid chunk size %d at dimension %d", c, i)
		}
		if m.Shape[i] < 0 {
			return fmt.Errorf("invalid shape %d at dimension %d", m.Shape[i], i)
		}
	}
	if len(m.Filters) > 0 {
		return fmt.Errorf("filters are unsupported")
	}
	if _, _, err := ParseDType(m.DType); err != nil {
		return err
	}
	return nil
}

// Separator returns the chunk key separator, "." unless the store says otherwise.
func (m *Metadata) Separator() string {
	if m.DimensionSeparator == "" {
		return "."
	}
	return m.DimensionSeparator
}

// ItemSize returns the byte size of one element.
func (m *Metadata) ItemSize() (int, error) {
	_, size, err := ParseDType(m.DType)
	return size, err
}

// ParseDType takes a numpy-style string like "<f4", "|b1", "<i8",
// and returns a simplified string name (e.g., "float32", "bool", "int64"),
// the byte size (e.g., 4, 1, 8), and an error if unsupported.
// Big-endian (>) types are rejected.
func ParseDType(s string) (string, int, error) {
	if len(s) < 3 {
		return "", 0, fmt.Errorf("invalid dtype: %s", s)
	}

	endian := s[0]
	switch endian {
	case '<', '|':
	case '>':
		return "", 0, fmt.Errorf("big-endian types are unsupported: %s", s)
	default:
		return "", 0, fmt.Errorf("invalid byte order in dtype: %s", s)
	}

	kind := s[1]
	size, err := strconv.Atoi(s[2:])
	if err != nil || size <= 0 {
		return "", 0, fmt.Errorf("invalid size in dtype: %s", s)
	}

	switch kind {
	case 'b':
		return "bool", size, nil
	case 'i':
		return fmt.Sprintf("int%d", size*8), size, nil
	case 'u':
		return fmt.Sprintf("uint%d", size*8), size, nil
	case 'f':
		return fmt.Sprintf("float%d", size*8), size, nil
	case 'c':
		return fmt.Sprintf("complex%d", size*8), size, nil
	default:
		return "", 0, fmt.Errorf("unsupported dtype kind: %c in %s", kind, s)
	}
}
