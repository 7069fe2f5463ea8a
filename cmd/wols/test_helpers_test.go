package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate pins HOME and the working directory to throwaway temp dirs so
// tests never pick up a developer's real configuration or write artifacts
// into the repository.
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

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeIssueConfig writes a configuration whose sink and archive live under
// dir, so issuances persist across CLI invocations within one test.
func writeIssueConfig(t *testing.T, dir string) string {
	t.Helper()
	content := fmt.Sprintf(`[sink]
driver = "fs"

[sink.fs]
root = %q

[archive]
driver = "sqlite"

[archive.sqlite]
path = %q
`, filepath.Join(dir, "labels"), filepath.Join(dir, "archive.db"))
	path := filepath.Join(dir, "wols-test.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// createDocument builds a conforming record through the create command and
// returns its wire form.
func createDocument(t *testing.T, extra ...string) string {
	t.Helper()
	args := append([]string{
		"create",
		"--type", "culture",
		"--species", "Pleurotus ostreatus",
		"--stage", "COLONIZED",
		"--batch", "B-7",
	}, extra...)
	out, stderr, err := runCLI(t, "", args...)
	if err != nil {
		t.Fatalf("create: %v (stderr %q)", err, stderr)
	}
	return strings.TrimSpace(out)
}

// writeDocumentFile drops a document into a temp file and returns its path.
func writeDocumentFile(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "specimen.json")
	if err := os.WriteFile(path, []byte(doc+"\n"), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return path
}
