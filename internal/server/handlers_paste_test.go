package server

import (
	"strings"
	"testing"
)

func TestUploadExtension(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{name: "hello.txt", want: "txt", ok: true},
		{name: "archive.tar.gz", want: "gz", ok: true},
		{name: "data"},
		{name: ".bashrc"},
		{name: "..foo", want: "foo", ok: true},
		{name: "trailing."},
		{name: "."},
		{name: ".."},
		{name: ""},
		{name: "dir/file.md", want: "md", ok: true},
		{name: "../../etc/passwd"},
		{name: "a.b/c"},
		{name: "a/b.c/", want: "c", ok: true},
		{name: "x/./y.rs", want: "rs", ok: true},
		{name: "notes.ÄÖ", want: "ÄÖ", ok: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := uploadExtension(tc.name)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("uploadExtension(%q) = (%q, %v), want (%q, %v)", tc.name, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestValidateExtension(t *testing.T) {
	for _, ext := range []string{"txt", "tar", "ÄÖ", "c++", "log-1"} {
		if err := validateExtension(ext); err != nil {
			t.Fatalf("validateExtension(%q): %v", ext, err)
		}
	}
	for _, ext := range []string{"\xff", "a\x00", "t\tx", "a\\b", "\u0085"} {
		if err := validateExtension(ext); err == nil {
			t.Fatalf("validateExtension(%q): expected error", ext)
		}
	}
}

func TestExtensionFor(t *testing.T) {
	srv := &Server{allowedExtensions: []string{"txt", ".PNG"}}

	tests := []struct {
		upload  string
		want    string
		wantErr bool
	}{
		{upload: "a.txt", want: "txt"},
		{upload: "a.TXT", want: "TXT"},
		{upload: "a.png", want: "png"},
		{upload: "a.exe", wantErr: true},
		{upload: "README", want: ""},
		{upload: "bad.\xff", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(strings.ToValidUTF8(tc.upload, "?"), func(t *testing.T) {
			got, err := srv.extensionFor(tc.upload)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.upload)
				}
				return
			}
			if err != nil {
				t.Fatalf("extensionFor(%q): %v", tc.upload, err)
			}
			if got != tc.want {
				t.Fatalf("extensionFor(%q) = %q, want %q", tc.upload, got, tc.want)
			}
		})
	}
}

func TestPasteURLKeepsTrailingSlash(t *testing.T) {
	srv := &Server{baseURL: "https://paste.example/"}
	if got := srv.pasteURL("abc.txt"); got != "https://paste.example//paste/abc.txt" {
		t.Fatalf("unexpected url %q", got)
	}
}
