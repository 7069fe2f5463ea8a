package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"wols/internal/archive"
	"wols/internal/config"
	"wols/internal/labelsink"
	"wols/internal/labelsvc"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withService builds the configured sink and archive, wires them into a
// label service, and hands all three to fn. The archive is closed when fn
// returns. logw receives the service's structured log output.
func (c *commandContext) withService(ctx context.Context, logw io.Writer, fn func(context.Context, *labelsvc.Service, labelsink.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	sink, err := openSink(ctx, cfg)
	if err != nil {
		return err
	}
	arch, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer arch.Close()

	svc, err := labelsvc.New(sink, arch,
		labelsvc.WithLogger(newLogger(cfg, logw)),
		labelsvc.WithValidateOptions(cfg.ValidateOptions()),
	)
	if err != nil {
		return err
	}
	return fn(ctx, svc, sink)
}

func openSink(ctx context.Context, cfg *config.Config) (labelsink.Store, error) {
	switch labelsink.Driver(cfg.Sink.Driver) {
	case labelsink.DriverFilesystem:
		return labelsink.NewFilesystem(cfg.Sink.FS.Root)
	case labelsink.DriverS3:
		return labelsink.NewS3(ctx, labelsink.S3Config{
			Region:    cfg.Sink.S3.Region,
			Bucket:    cfg.Sink.S3.Bucket,
			Endpoint:  cfg.Sink.S3.Endpoint,
			PathStyle: cfg.Sink.S3.PathStyle,
		})
	case labelsink.DriverMemory:
		return labelsink.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown sink driver %q", cfg.Sink.Driver)
	}
}

func openArchive(cfg *config.Config) (archive.Store, error) {
	switch archive.Driver(cfg.Archive.Driver) {
	case archive.DriverSQLite:
		return archive.NewSQLite(cfg.Archive.SQLite.Path)
	case archive.DriverPostgres:
		return archive.NewPostgres(cfg.Archive.Postgres.DSN)
	case archive.DriverMemory:
		return archive.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown archive driver %q", cfg.Archive.Driver)
	}
}

// newLogger builds the slog logger the label service uses, honoring the
// configured level and handler format.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
