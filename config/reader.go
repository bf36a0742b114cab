package config

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"go.viam.com/pano/logging"
)

// Read reads a config from the given file. Environment variables in the file are expanded.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from. The
// extension of originalPath picks between YAML and JSON.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	cfg := Config{ConfigFilePath: originalPath}

	switch strings.ToLower(filepath.Ext(originalPath)) {
	case ".yaml", ".yml":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to decode Config from yaml")
		}
	default:
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to decode Config from json")
		}
	}

	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	if originalPath != "" {
		cfg.resolvePaths(filepath.Dir(originalPath))
	}
	logger.Debugw("read config",
		"path", originalPath,
		"images", len(cfg.Images),
		"projection", cfg.Projection,
		"range_strategy", cfg.RangeStrategy)
	return &cfg, nil
}

// Schema returns the JSON schema of the config file.
func Schema() ([]byte, error) {
	return json.MarshalIndent(jsonschema.Reflect(&Config{}), "", "  ")
}
