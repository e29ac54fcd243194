package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nebulaai/nebula/internal/session"
)

// out is a helper for CLI output that ignores write errors (standard pattern for CLI tools).
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func out(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func outln(w io.Writer, args ...interface{}) {
	fmt.Fprintln(w, args...)
}

// writeJSON encodes the value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// submitOptions builds transaction submission settings from configuration.
func submitOptions() session.SubmitOptions {
	return session.SubmitOptions{
		PollInterval: cfg.ReceiptPollInterval(),
		MaxAttempts:  cfg.Checkout.ReceiptMaxAttempts,
	}
}
