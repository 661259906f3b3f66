package main

import (
	"context"
	"errors"
	"net"

	"smolpaste/internal/api"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "unauthorized":
			lines = append(lines, "hint: verify the token from --token or SMOLPASTE_TOKEN is listed by: smolpaste token list")
		case "not_found":
			lines = append(lines, "hint: the paste does not exist or was already deleted.")
		case "bad_request":
			lines = append(lines, "hint: check the file extension against allowed_extensions and the size against max_upload_bytes.")
		}
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify --server points to a smolpaste server.")
		}
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase SMOLPASTE_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a smolpaste server is running at the --server URL.",
			"hint: start a local server with: smolpaste serve",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
