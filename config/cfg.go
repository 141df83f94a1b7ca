package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"stylc/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	CompilerConfig struct {
		Style       common.Style       `yaml:"style" validate:"gte=0"`
		Diagnostics common.Diagnostics `yaml:"diagnostics" validate:"gte=0"`
		BasePath    string             `yaml:"base_path,omitempty" validate:"omitempty,dirpath"`
		Variables   map[string]string  `yaml:"variables" validate:"dive,keys,required,endkeys"`
		Extensions  []string           `yaml:"input_extensions" validate:"required,dive,required,startswith=."`
	}

	OutputConfig struct {
		Extension string `yaml:"extension" validate:"required,startswith=."`
		SlugNames bool   `yaml:"slug_names"`
	}

	CacheConfig struct {
		Enable bool   `yaml:"enable"`
		Path   string `yaml:"path" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required_if=Enable true"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Compiler  CompilerConfig `yaml:"compiler"`
		Output    OutputConfig   `yaml:"output"`
		Cache     CacheConfig    `yaml:"cache"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// HasInputExt reports whether file name has one of configured source
// extensions.
func (conf *CompilerConfig) HasInputExt(name string) bool {
	name = strings.ToLower(name)
	return slices.ContainsFunc(conf.Extensions, func(ext string) bool {
		return strings.HasSuffix(name, strings.ToLower(ext))
	})
}

// TrimInputExt removes matching source extension from file name.
func (conf *CompilerConfig) TrimInputExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range conf.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// NOTE: variables are given to stylesheet interpolation as is, they are never
// expanded as configuration templates
const VariablesFieldName = "variables"

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(VariablesFieldName),
)

// outputCollision makes sure we would never overwrite sources with results.
func outputCollision(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	for _, ext := range cfg.Compiler.Extensions {
		if strings.EqualFold(ext, cfg.Output.Extension) {
			sl.ReportError(cfg.Output.Extension, "extension", "Extension", "ne_input_extension", ext)
		}
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(outputCollision)); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration tamplate to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
