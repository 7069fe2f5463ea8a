package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"wols/pkg/label"
	"wols/pkg/wols"
)

//go:embed sample_config.toml
var sampleConfig string

// ID configures which specimen id suffix shapes are accepted.
type ID struct {
	Mode string `toml:"mode"` // strict | ulid | uuid | any
}

// Validation configures the record validator.
type Validation struct {
	Level              string `toml:"level"` // strict | lenient
	AllowUnknownFields bool   `toml:"allow_unknown_fields"`
}

// Label configures default QR label rendering.
type Label struct {
	Format        string `toml:"format"` // compact | embedded
	Size          int    `toml:"size"`
	Level         string `toml:"level"` // L | M | Q | H
	DisableBorder bool   `toml:"disable_border"`
}

// Sink configures artifact storage.
type Sink struct {
	Driver string `toml:"driver"` // fs | s3 | memory
	FS     SinkFS `toml:"fs"`
	S3     SinkS3 `toml:"s3"`
}

// SinkFS configures the filesystem sink.
type SinkFS struct {
	Root string `toml:"root"`
}

// SinkS3 configures the S3 sink. Credentials come from the AWS default
// chain, never from the config file.
type SinkS3 struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	PathStyle bool   `toml:"path_style"`
}

// Archive configures the issuance archive.
type Archive struct {
	Driver   string          `toml:"driver"` // sqlite | postgres | memory
	SQLite   ArchiveSQLite   `toml:"sqlite"`
	Postgres ArchivePostgres `toml:"postgres"`
}

// ArchiveSQLite configures the SQLite archive driver.
type ArchiveSQLite struct {
	Path string `toml:"path"`
}

// ArchivePostgres configures the Postgres archive driver.
type ArchivePostgres struct {
	DSN string `toml:"dsn"`
}

// Logging configures CLI log output.
type Logging struct {
	Level  string `toml:"level"`  // debug | info | warn | error
	Format string `toml:"format"` // text | json
}

// Config encapsulates all configuration values for the WOLS tool.
type Config struct {
	ID         ID         `toml:"id"`
	Validation Validation `toml:"validation"`
	Label      Label      `toml:"label"`
	Sink       Sink       `toml:"sink"`
	Archive    Archive    `toml:"archive"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/wols/config.toml")
}

// Load locates, parses, and validates a configuration file. It returns the
// configuration, the resolved file path, and whether that file existed; a
// missing file is not an error, it selects the defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("wols.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// normalize canonicalizes enum casing and expands filesystem paths so the
// rest of the repo never re-trims or re-cases config values.
func (c *Config) normalize() error {
	c.ID.Mode = strings.ToLower(strings.TrimSpace(c.ID.Mode))
	c.Validation.Level = strings.ToLower(strings.TrimSpace(c.Validation.Level))
	c.Label.Format = strings.ToLower(strings.TrimSpace(c.Label.Format))
	c.Label.Level = strings.ToUpper(strings.TrimSpace(c.Label.Level))
	c.Sink.Driver = strings.ToLower(strings.TrimSpace(c.Sink.Driver))
	c.Archive.Driver = strings.ToLower(strings.TrimSpace(c.Archive.Driver))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))

	if c.Sink.FS.Root != "" {
		expanded, err := ExpandPath(c.Sink.FS.Root)
		if err != nil {
			return err
		}
		c.Sink.FS.Root = expanded
	}
	if c.Archive.SQLite.Path != "" {
		expanded, err := ExpandPath(c.Archive.SQLite.Path)
		if err != nil {
			return err
		}
		c.Archive.SQLite.Path = expanded
	}
	return nil
}

// ValidateOptions returns the record validation policy the config selects.
func (c *Config) ValidateOptions() wols.ValidateOptions {
	return wols.ValidateOptions{
		AllowUnknownFields: c.Validation.AllowUnknownFields,
		Level:              wols.Level(c.Validation.Level),
		IDMode:             wols.IDMode(c.ID.Mode),
	}
}

// LabelOptions returns the label rendering defaults the config selects.
func (c *Config) LabelOptions() label.Options {
	return label.Options{
		Format:        label.PayloadFormat(c.Label.Format),
		Size:          c.Label.Size,
		Level:         c.Label.Level,
		DisableBorder: c.Label.DisableBorder,
	}
}

// ExpandPath resolves a user-supplied path to an absolute one, expanding a
// leading ~ to the home directory.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
