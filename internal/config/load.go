package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kaptinlin/jsonschema"
	yaml "go.yaml.in/yaml/v3"

	"hearingbot/pkg/logx"
)

//go:embed schema.json
var schemaJSON []byte

// Parse reads, validates, and decodes the config document at path, overlaid
// on the built-in defaults. Unknown keys and type mismatches are rejected:
// the schema is the complete key set, there is no silent drop of typos.
func Parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jb, err := coerceToJSONBytes(path, b)
	if err != nil {
		return nil, err
	}

	if err := validateSchema(jb); err != nil {
		return nil, err
	}

	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}
	if _, err := cfg.Automation.Timings(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load resolves the effective config for a run. A malformed or rejected
// document is recoverable: the run proceeds on defaults with a warning, per
// the original operator contract. Only I/O errors other than absence are
// surfaced the same way.
func Load(path string, log logx.Logger) *Config {
	cfg, err := Parse(path)
	switch {
	case err == nil:
		log.Info("configuration loaded", logx.String("path", path))
		return cfg
	case errors.Is(err, fs.ErrNotExist):
		log.Info("config file not found, using defaults", logx.String("path", path))
	default:
		log.Warn("config rejected, using defaults", logx.String("path", path), logx.Err(err))
	}
	return Default()
}

func validateSchema(jb []byte) error {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(schemaJSON)
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	result := schema.ValidateJSON(jb)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("config schema validation failed: %v", result.Errors)
}

// coerceToJSONBytes converts a YAML document to JSON bytes so both formats
// go through the one strict JSON decoder.
func coerceToJSONBytes(path string, data []byte) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return data, nil
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	v = normalizeYAML(v)
	j, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yaml->json marshal: %w", err)
	}
	return j, nil
}

// normalizeYAML ensures all map keys are strings so the result can be
// JSON-marshaled.
func normalizeYAML(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[k] = normalizeYAML(v)
		}
		return m
	case []any:
		for i := range x {
			x[i] = normalizeYAML(x[i])
		}
		return x
	default:
		return in
	}
}
