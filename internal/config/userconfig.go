package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"fontspector/internal/checkapi"
)

// UserConfiguration is the document passed with --configuration.
//
//	explicit_checks = ["opentype/"]
//	exclude_checks = ["file_size"]
//	source_map = { "Foo-Regular.ttf" = "sources/Foo.glyphs" }
//	overrides = [{ code = "large-font", status = "INFO", reason = "CJK" }]
//
//	["universal/file_size"]
//	WARN_SIZE = 2097152
//
// Any table not named above is configuration for the check with that ID.
type UserConfiguration struct {
	ExplicitChecks []string
	ExcludeChecks  []string
	SourceMap      map[string]string
	Overrides      []checkapi.Override
	PerCheckConfig map[string]any
}

type userConfigurationFile struct {
	ExplicitChecks []string            `toml:"explicit_checks" yaml:"explicit_checks"`
	ExcludeChecks  []string            `toml:"exclude_checks" yaml:"exclude_checks"`
	SourceMap      map[string]string   `toml:"source_map" yaml:"source_map"`
	Overrides      []checkapi.Override `toml:"overrides" yaml:"overrides"`
}

var reservedUserKeys = map[string]bool{
	"explicit_checks": true,
	"exclude_checks":  true,
	"source_map":      true,
	"overrides":       true,
}

// EmptyUserConfiguration is what a run without --configuration sees.
func EmptyUserConfiguration() *UserConfiguration {
	return &UserConfiguration{
		SourceMap:      map[string]string{},
		PerCheckConfig: map[string]any{},
	}
}

// LoadUserConfiguration reads path as TOML or YAML depending on its extension.
// An empty path yields an empty configuration.
func LoadUserConfiguration(path string) (*UserConfiguration, error) {
	if path == "" {
		return EmptyUserConfiguration(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, checkapi.FileNotFoundError(path)
		}
		return nil, fmt.Errorf("read configuration %s: %w", path, err)
	}

	var unmarshal func([]byte, any) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		unmarshal = toml.Unmarshal
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("cannot infer configuration format from %q; use .toml, .yaml or .yml", path)
	}

	uc, err := decodeUserConfiguration(data, unmarshal)
	if err != nil {
		return nil, checkapi.ParsingError(path, err)
	}
	return uc, nil
}

func decodeUserConfiguration(data []byte, unmarshal func([]byte, any) error) (*UserConfiguration, error) {
	var file userConfigurationFile
	if err := unmarshal(data, &file); err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := unmarshal(data, &raw); err != nil {
		return nil, err
	}

	uc := EmptyUserConfiguration()
	uc.ExplicitChecks = file.ExplicitChecks
	uc.ExcludeChecks = file.ExcludeChecks
	uc.Overrides = file.Overrides
	for k, v := range file.SourceMap {
		uc.SourceMap[k] = v
	}
	for key, value := range raw {
		if reservedUserKeys[key] {
			continue
		}
		table, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("configuration for %q must be a table, got %T", key, value)
		}
		uc.PerCheckConfig[key] = table
	}
	return uc, nil
}

// Merge folds CLI selections into the document: check filters are appended,
// and --source-map entries win over the document's.
func (uc *UserConfiguration) Merge(cfg *Config) (includes, excludes []string, sourceMap map[string]string, err error) {
	includes = append(append(includes, cfg.Profile.CheckIDs...), uc.ExplicitChecks...)
	excludes = append(append(excludes, cfg.Profile.ExcludeCheckIDs...), uc.ExcludeChecks...)

	sourceMap = make(map[string]string, len(uc.SourceMap))
	for k, v := range uc.SourceMap {
		sourceMap[k] = v
	}
	cli, err := ParseSourceMap(cfg.Fix.SourceMap)
	if err != nil {
		return nil, nil, nil, err
	}
	for k, v := range cli {
		sourceMap[k] = v
	}
	return includes, excludes, sourceMap, nil
}
