package instance

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported formats.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// DetectFormat guesses the format from a file extension. Unknown
// extensions are read as text.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatText
	}
}

// Decode reads an instance in the given format.
func Decode(r io.Reader, format string) (*Data, error) {
	switch format {
	case FormatText:
		return ParseText(r)
	case FormatYAML:
		var d Data
		if err := yaml.NewDecoder(r).Decode(&d); err != nil {
			return nil, fmt.Errorf("instance: decode yaml: %w", err)
		}
		return &d, nil
	case FormatJSON:
		var d Data
		if err := json.NewDecoder(r).Decode(&d); err != nil {
			return nil, fmt.Errorf("instance: decode json: %w", err)
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("instance: unknown format %q", format)
	}
}

// Encode writes d in the given format.
func Encode(w io.Writer, d *Data, format string) error {
	switch format {
	case FormatText:
		return WriteText(w, d)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("instance: encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	default:
		return fmt.Errorf("instance: unknown format %q", format)
	}
}

// Load reads an instance file. An empty or auto format is detected from
// the extension.
func Load(path, format string) (*Data, error) {
	if format == "" || format == FormatAuto {
		format = DetectFormat(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("instance: %w", err)
	}
	defer f.Close()
	d, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// Save writes an instance file, detecting the format like Load.
func Save(path, format string, d *Data) error {
	if format == "" || format == FormatAuto {
		format = DetectFormat(path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("instance: %w", err)
	}
	if err := Encode(f, d, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
