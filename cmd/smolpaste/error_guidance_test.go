package main

import (
	"context"
	"fmt"
	"net"
	"testing"

	"smolpaste/internal/api"
)

func TestFormatCLIError_NetworkGuidance(t *testing.T) {
	err := &net.DNSError{Err: "dial tcp: connection refused", Name: "127.0.0.1", IsTemporary: true}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: ensure a smolpaste server is running at the --server URL.") {
		t.Fatalf("expected connectivity guidance, got %v", lines)
	}
	if !containsLine(lines, "hint: start a local server with: smolpaste serve") {
		t.Fatalf("expected manual-start guidance, got %v", lines)
	}
}

func TestFormatCLIError_APIGuidance(t *testing.T) {
	tests := []struct {
		name string
		err  *api.APIError
		want string
	}{
		{
			name: "unknown service",
			err:  &api.APIError{Status: 418},
			want: "hint: verify --server points to a smolpaste server.",
		},
		{
			name: "unauthorized",
			err:  &api.APIError{Status: 401, Code: "unauthorized"},
			want: "hint: verify the token from --token or SMOLPASTE_TOKEN is listed by: smolpaste token list",
		},
		{
			name: "not found",
			err:  &api.APIError{Status: 404, Code: "not_found"},
			want: "hint: the paste does not exist or was already deleted.",
		},
		{
			name: "internal",
			err:  &api.APIError{Status: 500, Code: "internal"},
			want: "hint: server returned an internal error; check server logs for details.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lines := formatCLIError(fmt.Errorf("delete x: %w", tc.err))
			if !containsLine(lines, tc.want) {
				t.Fatalf("expected %q, got %v", tc.want, lines)
			}
		})
	}
}

func TestFormatCLIError_Timeout(t *testing.T) {
	lines := formatCLIError(fmt.Errorf("upload: %w", context.DeadlineExceeded))
	if !containsLine(lines, "hint: request timed out; check server health or increase SMOLPASTE_HTTP_TIMEOUT.") {
		t.Fatalf("expected timeout guidance, got %v", lines)
	}
}

func TestUniqueLines(t *testing.T) {
	got := uniqueLines([]string{"a", "", "b", "a"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected lines %v", got)
	}
}

func containsLine(lines []string, expected string) bool {
	for _, line := range lines {
		if line == expected {
			return true
		}
	}
	return false
}
