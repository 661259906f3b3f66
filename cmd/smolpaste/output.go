package main

import (
	"fmt"
	"io"
	"time"
)

// render writes payload with the selected structured formatter, or calls
// text when plain output was requested.
func (s *cliState) render(w io.Writer, payload any, text func(io.Writer) error) error {
	if s.formatter != nil {
		return s.formatter.Write(w, payload)
	}
	return text(w)
}

func writePlain(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func formatUnix(seconds int64) string {
	return time.Unix(seconds, 0).UTC().Format(time.RFC3339)
}
