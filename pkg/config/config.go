package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/syssetup/pkg/errors"
	"github.com/arthur-debert/syssetup/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read as configuration
const EnvPrefix = "SYSSETUP_"

// Config is the effective syssetup configuration
type Config struct {
	Files   Files   `koanf:"files" toml:"files"`
	Output  Output  `koanf:"output" toml:"output"`
	Logging Logging `koanf:"logging" toml:"logging"`
	Merge   Merge   `koanf:"merge" toml:"merge"`
}

// Files locates the layers
type Files struct {
	Dir  string `koanf:"dir" toml:"dir" comment:"Directory holding the layers. Empty means files next to the executable."`
	Base string `koanf:"base" toml:"base" comment:"Layer every mode builds on"`
}

// Output controls how the report is rendered
type Output struct {
	Format string `koanf:"format" toml:"format" comment:"Report format: auto, term, text or json"`
}

// Logging controls log destinations
type Logging struct {
	File bool `koanf:"file" toml:"file" comment:"Also write logs to the state directory"`
}

// Merge holds engine settings
type Merge struct {
	DryRun bool `koanf:"dry_run" toml:"dry_run" comment:"Report what would be done without writing"`
}

// LoadOptions controls Load. Empty fields use defaults.
type LoadOptions struct {
	// ConfigFile replaces the XDG config file location
	ConfigFile string
}

// Load reads the embedded defaults, then the user config file if present,
// then SYSSETUP_* environment variables.
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions is Load with explicit sources
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config file if it exists
	configPath := opts.ConfigFile
	if configPath == "" {
		configPath = paths.ConfigFilePath()
	}
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", configPath).
				WithDetail("path", configPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to stat config file %s", configPath).
			WithDetail("path", configPath)
	}

	// 3. Environment
	if err := loadEnv(k); err != nil {
		return nil, err
	}

	// 4. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.TextUnmarshallerHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	// 5. Post-process
	if err := postProcess(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps SYSSETUP_SECTION_SOME_KEY to section.some_key. Only the
// first underscore separates the section, so keys may contain underscores.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok || section == "" || rest == "" {
		return ""
	}
	return section + "." + rest
}

func loadEnv(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}
	return nil
}

func postProcess(cfg *Config) error {
	cfg.Files.Base = strings.TrimSpace(cfg.Files.Base)
	if cfg.Files.Base == "" {
		cfg.Files.Base = paths.DefaultBaseLayer
	}
	if strings.ContainsRune(cfg.Files.Base, filepath.Separator) || cfg.Files.Base == "." || cfg.Files.Base == ".." {
		return errors.Newf(errors.ErrInvalidInput, "files.base must be a layer name, got %q", cfg.Files.Base).
			WithDetail("key", "files.base")
	}
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	if cfg.Output.Format == "" {
		cfg.Output.Format = "auto"
	}
	return nil
}
