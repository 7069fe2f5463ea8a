package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wols/internal/config"
	"wols/pkg/label"
	"wols/pkg/wols"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
}

// chdir switches the working directory for the duration of the test; it
// stands in for testing.T.Chdir on toolchains that predate it.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileAbsent(t *testing.T) {
	isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.ID.Mode != "strict" {
		t.Fatalf("unexpected id mode: %q", cfg.ID.Mode)
	}
	if cfg.Validation.Level != "strict" || cfg.Validation.AllowUnknownFields {
		t.Fatalf("unexpected validation defaults: %+v", cfg.Validation)
	}
	if cfg.Label.Format != "compact" || cfg.Label.Size != 256 || cfg.Label.Level != "M" {
		t.Fatalf("unexpected label defaults: %+v", cfg.Label)
	}
	if cfg.Sink.Driver != "fs" {
		t.Fatalf("unexpected sink driver: %q", cfg.Sink.Driver)
	}
	if !filepath.IsAbs(cfg.Sink.FS.Root) || filepath.Base(cfg.Sink.FS.Root) != "labeldata" {
		t.Fatalf("sink root not expanded: %q", cfg.Sink.FS.Root)
	}
	if cfg.Archive.Driver != "sqlite" {
		t.Fatalf("unexpected archive driver: %q", cfg.Archive.Driver)
	}
	if !filepath.IsAbs(cfg.Archive.SQLite.Path) || filepath.Base(cfg.Archive.SQLite.Path) != "wols-archive.db" {
		t.Fatalf("sqlite path not expanded: %q", cfg.Archive.SQLite.Path)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadDecodesOverDefaultsAndNormalizes(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
[id]
mode = "ULID"

[label]
size = 512
level = "q"

[sink]
driver = "Memory"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected explicit file to be found: exists=%v resolved=%q", exists, resolved)
	}
	if cfg.ID.Mode != "ulid" {
		t.Fatalf("id mode not normalized: %q", cfg.ID.Mode)
	}
	if cfg.Label.Size != 512 || cfg.Label.Level != "Q" {
		t.Fatalf("label section not decoded: %+v", cfg.Label)
	}
	if cfg.Sink.Driver != "memory" {
		t.Fatalf("sink driver not normalized: %q", cfg.Sink.Driver)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Label.Format != "compact" {
		t.Fatalf("label format default lost: %q", cfg.Label.Format)
	}
	if cfg.Archive.Driver != "sqlite" {
		t.Fatalf("archive default lost: %q", cfg.Archive.Driver)
	}
}

func TestLoadFindsProjectFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "wols.toml"), []byte("[label]\nsize = 300\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected project wols.toml to be found")
	}
	if filepath.Base(resolved) != "wols.toml" {
		t.Fatalf("resolved to %q", resolved)
	}
	if cfg.Label.Size != 300 {
		t.Fatalf("label size = %d, want 300", cfg.Label.Size)
	}
}

func TestLoadExplicitMissingFileUsesDefaults(t *testing.T) {
	isolate(t)
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, resolved, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected missing file to report exists=false")
	}
	if resolved != missing {
		t.Fatalf("resolved = %q, want %q", resolved, missing)
	}
	if cfg.Label.Size != 256 {
		t.Fatalf("defaults not applied: %+v", cfg.Label)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "[label\nsize = ")
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("malformed TOML error = %v", err)
	}
}

func TestLoadRejectsUnknownEnums(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"id mode", "[id]\nmode = \"serial\"\n", "id.mode must be one of"},
		{"validation level", "[validation]\nlevel = \"pedantic\"\n", "validation.level must be"},
		{"label format", "[label]\nformat = \"giant\"\n", "label.format must be"},
		{"label level", "[label]\nlevel = \"X\"\n", "label.level must be one of"},
		{"label size", "[label]\nsize = 0\n", "label.size must not be zero"},
		{"sink driver", "[sink]\ndriver = \"tape\"\n", "sink.driver must be one of"},
		{"s3 without bucket", "[sink]\ndriver = \"s3\"\n", "sink.s3.bucket must be set"},
		{"archive driver", "[archive]\ndriver = \"ledger\"\n", "archive.driver must be one of"},
		{"logging level", "[logging]\nlevel = \"loud\"\n", "logging.level must be one of"},
		{"logging format", "[logging]\nformat = \"xml\"\n", "logging.format must be"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)
			path := writeConfig(t, tc.body)
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleLoadsCleanly(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("sample config not found after CreateSample")
	}
	want := config.Default()
	if cfg.ID.Mode != want.ID.Mode || cfg.Label.Size != want.Label.Size || cfg.Logging.Format != want.Logging.Format {
		t.Fatalf("sample config drifted from defaults: %+v", cfg)
	}
}

func TestOptionConversions(t *testing.T) {
	cfg := config.Default()
	cfg.ID.Mode = "uuid"
	cfg.Validation.Level = "lenient"
	cfg.Validation.AllowUnknownFields = true
	cfg.Label.Format = "embedded"
	cfg.Label.Size = -8
	cfg.Label.Level = "H"
	cfg.Label.DisableBorder = true

	vopts := cfg.ValidateOptions()
	if vopts.IDMode != wols.IDModeUUID || vopts.Level != wols.LevelLenient || !vopts.AllowUnknownFields {
		t.Fatalf("unexpected validate options: %+v", vopts)
	}

	lopts := cfg.LabelOptions()
	if lopts.Format != label.FormatEmbedded || lopts.Size != -8 || lopts.Level != "H" || !lopts.DisableBorder {
		t.Fatalf("unexpected label options: %+v", lopts)
	}
}
