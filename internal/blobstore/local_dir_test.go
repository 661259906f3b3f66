package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalDirCreateOpenRemove(t *testing.T) {
	dir, err := NewLocalDir(filepath.Join(t.TempDir(), "nested", "pastes"))
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	ctx := context.Background()

	res, err := dir.Create(ctx, "abc.txt", bytes.NewBufferString("hello"), 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Size != 5 || res.Digest == "" {
		t.Fatalf("unexpected create result: %#v", res)
	}

	f, err := dir.Open("abc.txt")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected hello, got %q", string(data))
	}

	if _, err := dir.Create(ctx, "abc.txt", bytes.NewBufferString("again"), 0); !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected create-new failure, got %v", err)
	}

	if err := dir.Remove(ctx, "abc.txt"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := dir.Remove(ctx, "abc.txt"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected missing file error on second remove, got %v", err)
	}
}

func TestLocalDirEnsureDirIdempotent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "pastes")
	dir, err := NewLocalDir(root)
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	if err := dir.EnsureDir(); err != nil {
		t.Fatalf("ensure dir again: %v", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s: %v", root, err)
	}
}

func TestLocalDirRejectsPathElements(t *testing.T) {
	dir, err := NewLocalDir(t.TempDir())
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	for _, name := range []string{"", ".", "..", "../escape", "a/b", `a\b`, "nul\x00byte"} {
		if _, err := dir.Create(context.Background(), name, bytes.NewBufferString("x"), 0); err == nil {
			t.Fatalf("expected create(%q) to fail", name)
		}
		if err := dir.Remove(context.Background(), name); err == nil {
			t.Fatalf("expected remove(%q) to fail", name)
		}
	}
}

func TestLocalDirList(t *testing.T) {
	dir, err := NewLocalDir(t.TempDir())
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	ctx := context.Background()
	for _, name := range []string{"b", "a.txt"} {
		if _, err := dir.Create(ctx, name, bytes.NewBufferString(name), 0); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir.Root(), "subdir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := dir.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %#v", files)
	}
	if files[0].Name != "a.txt" || files[0].Size != 5 || files[1].Name != "b" {
		t.Fatalf("unexpected listing: %#v", files)
	}
}

func TestHandlerServesFilesOnly(t *testing.T) {
	dir, err := NewLocalDir(t.TempDir())
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	if _, err := dir.Create(context.Background(), "hello.txt", bytes.NewBufferString("hi\n"), 0); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir.Root(), "inner"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	handler := dir.Handler()

	req := httptest.NewRequest(http.MethodGet, "/hello.txt", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "hi\n" {
		t.Fatalf("expected body hi, got %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Fatalf("expected text/plain content type, got %q", ct)
	}

	for _, path := range []string{"/", "/inner", "/inner/", "/missing.txt"} {
		req = httptest.NewRequest(http.MethodGet, path, nil)
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Fatalf("GET %s: expected 404, got %d", path, w.Code)
		}
	}
}
