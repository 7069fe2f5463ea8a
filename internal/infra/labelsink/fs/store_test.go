package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"wols/internal/labelsink/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStore_PutGetListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if store.Driver() != core.DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}

	png := []byte("\x89PNG fake label bytes")
	info, err := store.Put(ctx, "labels/abc123/one.png", bytes.NewReader(png), core.PutOptions{
		ContentType: "image/png",
		Metadata:    map[string]string{"specimen": "wols:abc123"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "labels/abc123/one.png" || info.Size != int64(len(png)) {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.ETag == "" || info.ContentType != "image/png" {
		t.Fatalf("metadata not captured: %+v", info)
	}
	if _, err := store.Put(ctx, "labels/abc123/one.png", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatal("duplicate put accepted")
	}

	got, rc, err := store.Get(ctx, "labels/abc123/one.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !bytes.Equal(b, png) {
		t.Fatalf("content mismatch: %q", b)
	}
	if got.ETag != info.ETag || got.Metadata["specimen"] != "wols:abc123" {
		t.Fatalf("get info mismatch: %+v", got)
	}

	list, err := store.List(ctx, "labels/abc123/")
	if err != nil || len(list) != 1 || list[0].Key != "labels/abc123/one.png" {
		t.Fatalf("list: %v %+v", err, list)
	}

	ok, err := store.Delete(ctx, "labels/abc123/one.png")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, "labels/abc123/one.png")
	if err != nil || ok {
		t.Fatalf("second delete should report absent: %v %v", ok, err)
	}
	if _, _, err := store.Get(ctx, "labels/abc123/one.png"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("get after delete: %v", err)
	}
}

func TestStore_ListOrderAndPrefix(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for _, key := range []string{"labels/b/2.png", "labels/a/1.png", "proofs/x.png"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("data")), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "labels/")
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v %+v", err, list)
	}
	if list[0].Key != "labels/a/1.png" || list[1].Key != "labels/b/2.png" {
		t.Fatalf("unsorted list: %+v", list)
	}
	all, err := store.List(ctx, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("list all: %v len=%d", err, len(all))
	}
}

func TestStore_KeySanitization(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for _, key := range []string{"", "  ", "../escape.png", "/abs.png", "a/../b.png"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
			t.Errorf("key %q accepted", key)
		}
	}
}

type errorReader struct{}

func (errorReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestStore_PutReadFailureLeavesNothing(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "labels/broken.png", errorReader{}, core.PutOptions{}); err == nil {
		t.Fatal("expected copy error")
	}
	if list, err := store.List(ctx, ""); err != nil || len(list) != 0 {
		t.Fatalf("failed put left artifacts: %v %+v", err, list)
	}
	// The failed write must not block a retry under the same key.
	if _, err := store.Put(ctx, "labels/broken.png", bytes.NewReader([]byte("ok")), core.PutOptions{}); err != nil {
		t.Fatalf("retry put: %v", err)
	}
}

func TestStore_SidecarOnDisk(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "labels/meta.png", bytes.NewReader([]byte("abc")), core.PutOptions{ContentType: "image/png"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	dataPath, metaPath, _ := store.pathFor("labels/meta.png")
	if _, err := os.Stat(dataPath); err != nil {
		t.Fatalf("data file: %v", err)
	}
	b, err := os.ReadFile(metaPath)
	if err != nil {
		t.Fatalf("sidecar: %v", err)
	}
	if !bytes.Contains(b, []byte("image/png")) {
		t.Fatalf("sidecar missing content type: %s", b)
	}

	// A corrupt sidecar fails loudly on read paths.
	if err := os.WriteFile(metaPath, []byte("{"), 0o644); err != nil {
		t.Fatalf("corrupt sidecar: %v", err)
	}
	if _, _, err := store.Get(ctx, "labels/meta.png"); err == nil {
		t.Fatal("get succeeded with corrupt sidecar")
	}
	if _, err := store.List(ctx, ""); err == nil {
		t.Fatal("list succeeded with corrupt sidecar")
	}
}

func TestStore_Presign(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	url, err := store.PresignURL(ctx, "labels/x.png", core.SignedURLOptions{})
	if err != nil || url != "http://local.labels/labels/x.png" {
		t.Fatalf("presign: %v %q", err, url)
	}
	if url, err := store.PresignURL(ctx, "labels/x.png", core.SignedURLOptions{Method: "get"}); err != nil || url == "" {
		t.Fatalf("presign lowercase method: %v %q", err, url)
	}
	if _, err := store.PresignURL(ctx, "labels/x.png", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("presign PUT: %v", err)
	}
}

func TestNewDefaultsAndBadRoot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New(file); err == nil {
		t.Fatal("file root accepted")
	}
}

func TestCloneMetadataIsolation(t *testing.T) {
	if cloneMetadata(nil) != nil {
		t.Fatal("nil should pass through")
	}
	src := map[string]string{"a": "1"}
	cp := cloneMetadata(src)
	src["a"] = "2"
	if cp["a"] != "1" {
		t.Fatalf("clone shares storage: %v", cp)
	}
}
