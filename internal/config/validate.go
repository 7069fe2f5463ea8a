package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Unknown enum values are
// load-time errors rather than runtime surprises.
func (c *Config) Validate() error {
	if err := c.validateID(); err != nil {
		return err
	}
	if err := c.validateValidation(); err != nil {
		return err
	}
	if err := c.validateLabel(); err != nil {
		return err
	}
	if err := c.validateSink(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateID() error {
	switch c.ID.Mode {
	case "strict", "ulid", "uuid", "any":
		return nil
	default:
		return fmt.Errorf("id.mode must be one of strict, ulid, uuid, any (got %q)", c.ID.Mode)
	}
}

func (c *Config) validateValidation() error {
	switch c.Validation.Level {
	case "strict", "lenient":
		return nil
	default:
		return fmt.Errorf("validation.level must be strict or lenient (got %q)", c.Validation.Level)
	}
}

func (c *Config) validateLabel() error {
	switch c.Label.Format {
	case "compact", "embedded":
	default:
		return fmt.Errorf("label.format must be compact or embedded (got %q)", c.Label.Format)
	}
	switch c.Label.Level {
	case "L", "M", "Q", "H":
	default:
		return fmt.Errorf("label.level must be one of L, M, Q, H (got %q)", c.Label.Level)
	}
	if c.Label.Size == 0 {
		return errors.New("label.size must not be zero (positive pixels, or negative for per-module scaling)")
	}
	return nil
}

func (c *Config) validateSink() error {
	switch c.Sink.Driver {
	case "fs":
		if c.Sink.FS.Root == "" {
			return errors.New("sink.fs.root must be set when sink.driver is fs")
		}
	case "s3":
		if c.Sink.S3.Bucket == "" {
			return errors.New("sink.s3.bucket must be set when sink.driver is s3")
		}
	case "memory":
	default:
		return fmt.Errorf("sink.driver must be one of fs, s3, memory (got %q)", c.Sink.Driver)
	}
	return nil
}

func (c *Config) validateArchive() error {
	switch c.Archive.Driver {
	case "sqlite":
		if c.Archive.SQLite.Path == "" {
			return errors.New("archive.sqlite.path must be set when archive.driver is sqlite")
		}
	case "postgres", "memory":
	default:
		return fmt.Errorf("archive.driver must be one of sqlite, postgres, memory (got %q)", c.Archive.Driver)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json (got %q)", c.Logging.Format)
	}
	return nil
}
