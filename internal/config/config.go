// Package config loads optional server defaults from a YAML file: parse
// YAML into a raw map, then decode into a typed struct. Its result
// supplies merge-able *defaults* rather than a hard requirement.
package config

import (
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Defaults carries the same fields as the CLI surface. A zero value
// means "not set by the config file" for SizeX/SizeY/File; Debug and
// Port each need their own explicit *Set flag, since their zero
// values (false, 0) are also valid things to configure on purpose and
// would otherwise be indistinguishable from "the file didn't mention
// this key".
type Defaults struct {
	Debug    bool
	DebugSet bool
	Port     int
	PortSet  bool
	SizeX    int
	SizeY    int
	File     string
}

// rawConfig mirrors the YAML file's shape before typed decoding.
type rawConfig struct {
	Debug *bool                  `yaml:"debug"`
	Port  *int                   `yaml:"port"`
	Size  map[string]interface{} `yaml:"size"`
	File  string                 `yaml:"file"`
}

type sizeFields struct {
	X int `mapstructure:"x"`
	Y int `mapstructure:"y"`
}

// Load parses path as YAML and decodes it into Defaults. Any grammar
// or type error is a fatal startup error, the same disposition as
// every other startup-time parse failure.
func Load(path string) (Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults{}, errors.Wrapf(err, "read config file %q", path)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Defaults{}, errors.Wrapf(err, "parse config file %q as yaml", path)
	}

	def := Defaults{File: raw.File}
	if raw.Debug != nil {
		def.Debug = *raw.Debug
		def.DebugSet = true
	}
	if raw.Port != nil {
		def.Port = *raw.Port
		def.PortSet = true
	}
	if raw.Size != nil {
		var sf sizeFields
		if err := mapstructure.Decode(raw.Size, &sf); err != nil {
			return Defaults{}, errors.Wrapf(err, "config file %q: decode size", path)
		}
		def.SizeX, def.SizeY = sf.X, sf.Y
	}
	return def, nil
}
