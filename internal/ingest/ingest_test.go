package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
)

func TestCopyCountsAndDigests(t *testing.T) {
	var dst bytes.Buffer
	res, err := Copy(context.Background(), &dst, strings.NewReader("hi\n"), 0)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if res.Size != 3 {
		t.Fatalf("expected size 3, got %d", res.Size)
	}
	if dst.String() != "hi\n" {
		t.Fatalf("expected copied bytes, got %q", dst.String())
	}

	want, err := Digest(strings.NewReader("hi\n"))
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if res.Digest != want || len(res.Digest) != 64 {
		t.Fatalf("expected digest %q, got %q", want, res.Digest)
	}
}

func TestCopySmallChunks(t *testing.T) {
	payload := bytes.Repeat([]byte("abcdefgh"), 10000)
	var dst bytes.Buffer
	res, err := Copy(context.Background(), &dst, iotest.OneByteReader(bytes.NewReader(payload)), 0)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if int(res.Size) != len(payload) {
		t.Fatalf("expected size %d, got %d", len(payload), res.Size)
	}
	if !bytes.Equal(dst.Bytes(), payload) {
		t.Fatal("copied bytes differ from source")
	}
}

func TestCopyLimit(t *testing.T) {
	var dst bytes.Buffer
	if _, err := Copy(context.Background(), &dst, strings.NewReader("12345"), 5); err != nil {
		t.Fatalf("payload at limit should pass: %v", err)
	}

	dst.Reset()
	_, err := Copy(context.Background(), &dst, strings.NewReader("123456"), 5)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestCopyPropagatesReadError(t *testing.T) {
	boom := errors.New("connection reset")
	src := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(boom))
	var dst bytes.Buffer
	_, err := Copy(context.Background(), &dst, src, 0)
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestCopyStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var dst bytes.Buffer
	_, err := Copy(ctx, &dst, strings.NewReader("data"), 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestToFileCreateNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.txt")

	res, err := ToFile(context.Background(), path, strings.NewReader("hello"), 0)
	if err != nil {
		t.Fatalf("to file: %v", err)
	}
	if res.Size != 5 {
		t.Fatalf("expected size 5, got %d", res.Size)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected hello, got %q", string(data))
	}

	_, err = ToFile(context.Background(), path, strings.NewReader("other"), 0)
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected os.ErrExist on second create, got %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "hello" {
		t.Fatalf("existing file must not be overwritten, got %q", string(data))
	}
}

func TestToFileLeavesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial")
	src := io.MultiReader(strings.NewReader("abc"), iotest.ErrReader(errors.New("eof mid-stream")))

	if _, err := ToFile(context.Background(), path, src, 0); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected partial file to remain for caller cleanup: %v", err)
	}
}
