// Package modelfile reads and writes model documents. A document holds a
// single model object or a list of models and may be encoded as JSON or YAML;
// both decode through the metamodel JSON codec.
package modelfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-modelsheet/pkg/metamodel"
)

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// Decode parses a document. YAML input is converted to JSON first so both
// formats share one codec.
func Decode(data []byte, format Format, source string) ([]metamodel.Model, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("modelfile: file %s is empty", source)
	}

	raw := data
	if format == FormatYAML {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("modelfile: parse %s: %w", source, err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("modelfile: convert %s: %w", source, err)
		}
		raw = converted
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var models []metamodel.Model
		if err := json.Unmarshal(trimmed, &models); err != nil {
			return nil, fmt.Errorf("modelfile: parse %s: %w", source, err)
		}
		return models, nil
	}

	var model metamodel.Model
	if err := json.Unmarshal(trimmed, &model); err != nil {
		return nil, fmt.Errorf("modelfile: parse %s: %w", source, err)
	}
	return []metamodel.Model{model}, nil
}

// Encode serialises models. A single model is written as an object, several
// as a list.
func Encode(format Format, models ...metamodel.Model) ([]byte, error) {
	var payload any = models
	if len(models) == 1 {
		payload = models[0]
	}

	switch format {
	case FormatYAML:
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("modelfile: encode: %w", err)
		}
		var doc any
		if err := json.Unmarshal(encoded, &doc); err != nil {
			return nil, fmt.Errorf("modelfile: encode: %w", err)
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("modelfile: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("modelfile: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		encoded, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("modelfile: encode: %w", err)
		}
		return append(encoded, '\n'), nil
	}
}

// Load reads one model file from disk.
func Load(path string) ([]metamodel.Model, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("modelfile: unsupported file %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("modelfile: read %s: %w", path, err)
	}
	return Decode(data, format, path)
}

// LoadPaths loads every path in order. Directories are walked for JSON and
// YAML files.
func LoadPaths(paths ...string) ([]metamodel.Model, error) {
	var out []metamodel.Model
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("modelfile: stat %s: %w", path, err)
		}
		if info.IsDir() {
			models, err := LoadFS(os.DirFS(path))
			if err != nil {
				return nil, err
			}
			out = append(out, models...)
			continue
		}
		models, err := Load(path)
		if err != nil {
			return nil, err
		}
		out = append(out, models...)
	}
	return out, nil
}

// LoadFS walks fsys and decodes every JSON or YAML file in lexical order.
func LoadFS(fsys fs.FS) ([]metamodel.Model, error) {
	if fsys == nil {
		return nil, nil
	}
	var out []metamodel.Model
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		format, ok := FormatFromPath(path)
		if !ok {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("modelfile: read %s: %w", path, err)
		}
		models, err := Decode(data, format, path)
		if err != nil {
			return err
		}
		out = append(out, models...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Save writes models to path, replacing the file atomically.
func Save(path string, models ...metamodel.Model) error {
	format, ok := FormatFromPath(path)
	if !ok {
		return fmt.Errorf("modelfile: unsupported file %s", path)
	}
	data, err := Encode(format, models...)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("modelfile: create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("modelfile: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("modelfile: close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("modelfile: replace %s: %w", path, err)
	}
	return nil
}
