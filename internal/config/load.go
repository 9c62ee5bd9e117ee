package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// MaxInputSize limits overlay files to prevent memory exhaustion.
var MaxInputSize = 1 << 20

// Format is an overlay file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s (want .yaml, .yml, .toml or .json)", ErrUnsupportedFormat, path)
}

// FromJSON overlays the host's [output.typst] table onto o. Keys the
// renderer does not know, such as the host's own "command", are ignored.
// Empty data leaves o unchanged.
func (o *Options) FromJSON(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 || string(bytes.TrimSpace(data)) == "null" {
		return o.Validate()
	}
	if err := json.Unmarshal(data, o); err != nil {
		return fmt.Errorf("%w: output.typst: %v", ErrConfigParse, err)
	}
	return o.Validate()
}

// LoadFile overlays the file at path onto o. Only keys present in the file
// change o. Unknown keys are errors.
func (o *Options) LoadFile(path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := o.Decode(data, format); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Decode overlays data in the given format onto o and validates the result.
func (o *Options) Decode(data []byte, format Format) error {
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return o.Validate()
	}

	var err error
	switch format {
	case FormatYAML:
		err = yaml.UnmarshalWithOptions(data, o, yaml.Strict())
	case FormatTOML:
		err = decodeTOML(data, o)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(o)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return o.Validate()
}

// decodeTOML accepts either a bare table or a book.toml style
// [output.typst] table.
func decodeTOML(data []byte, o *Options) error {
	var probe struct {
		Output map[string]toml.Primitive `toml:"output"`
	}
	md, err := toml.Decode(string(data), &probe)
	if err != nil {
		return err
	}
	if prim, ok := probe.Output["typst"]; ok {
		return md.PrimitiveDecode(prim, o)
	}
	if md.IsDefined("output") {
		return fmt.Errorf("no [output.typst] table")
	}

	md, err = toml.Decode(string(data), o)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}
