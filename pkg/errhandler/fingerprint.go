// fingerprint.go generates stable hashes for grouping similar errors.

package errhandler

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"reflect"
	"regexp"
	"strings"
)

// Fingerprint generates a hash for grouping similar errors.
// The fingerprint is based on:
//   - the error type
//   - severity and file for raised errors
//   - the first 3 stack frames (function names only, normalized)
//
// Messages are only used for errors that carry no location at all.
func Fingerprint(err error) string {
	if err == nil {
		return ""
	}

	parts := []string{TypeName(reflect.TypeOf(err))}

	var exception *ErrorException
	var panicErr *PanicError
	switch {
	case errors.As(err, &exception):
		parts = append(parts, exception.Severity.String(), exception.File)
		for i, frame := range exception.Backtrace {
			if i >= 3 {
				break
			}
			parts = append(parts, frame.Function)
		}
	case errors.As(err, &panicErr):
		parts = append(parts, normalizeStackTrace(string(panicErr.Stack))...)
	default:
		parts = append(parts, err.Error())
	}

	input := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(input))

	// Return hex-encoded first 16 bytes (32 hex chars)
	return hex.EncodeToString(hash[:16])
}

// Regex patterns for stack trace parsing
var (
	// Match function names like "main.doSomething", "pkg/sub-pkg.Function"
	// or "pkg.(*Type).Method"
	funcNamePattern = regexp.MustCompile(`^([a-zA-Z0-9_./\-()*\[\]]+\.[a-zA-Z0-9_]+)`)

	// Match memory addresses like "0x1234abcd"
	memAddrPattern = regexp.MustCompile(`0x[0-9a-fA-F]+`)

	// Match offset patterns like "+0x123"
	offsetPattern = regexp.MustCompile(`\+0x[0-9a-fA-F]+`)
)

// normalizeStackTrace extracts the first 3 function names from a stack trace,
// skipping runtime and debug frames and stripping addresses and arguments.
func normalizeStackTrace(trace string) []string {
	if trace == "" {
		return nil
	}

	var frames []string
	for _, line := range strings.Split(trace, "\n") {
		// File path lines are indented with a tab.
		if strings.HasPrefix(line, "\t") {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "goroutine ") || strings.HasPrefix(line, "/") {
			continue
		}

		funcLine := offsetPattern.ReplaceAllString(line, "")
		funcLine = memAddrPattern.ReplaceAllString(funcLine, "")
		if idx := strings.LastIndex(funcLine, "("); idx > 0 {
			funcLine = funcLine[:idx]
		}

		match := funcNamePattern.FindString(strings.TrimSpace(funcLine))
		if match == "" || strings.HasPrefix(match, "runtime.") || strings.HasPrefix(match, "runtime/debug.") {
			continue
		}

		frames = append(frames, match)
		if len(frames) >= 3 {
			break
		}
	}

	return frames
}
