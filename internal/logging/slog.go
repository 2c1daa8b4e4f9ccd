// Package logging holds the slog attribute helpers shared by the sharing
// backends and the CLI, so every component names its log fields the same way.
package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Common log attribute keys.
const (
	KeyOperation = "operation"
	KeyCalendar  = "calendar_id"
	KeyPrincipal = "principal"
	KeyAddress   = "address_hash"
	KeyCount     = "count"
	KeyError     = "error"
)

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

func Calendar(id string) slog.Attr {
	return slog.String(KeyCalendar, id)
}

func Principal(path string) slog.Attr {
	return slog.String(KeyPrincipal, path)
}

func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// Address returns the anonymized form of an invite address.
func Address(addr string) slog.Attr {
	return slog.String(KeyAddress, AnonymizeAddress(addr))
}

// Err returns a slog attribute for an error.
// A nil error yields an empty group, which slog omits.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeAddress hashes an address so log lines can be correlated without
// carrying the mailbox itself.
func AnonymizeAddress(addr string) string {
	if addr == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(strings.ToLower(addr)))
	return "addr:" + hex.EncodeToString(hash[:8])
}

// ParseLevel maps a config level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// New builds a text or json logger writing to w.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}
