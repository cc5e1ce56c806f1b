package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInput marks malformed user data: bad geometry text, images too
	// small for a ratio or the minimum scale, unsupported extensions.
	ErrInput = errors.New("input error")
	// ErrExternalTool marks spawn failures and non-zero exits of helpers.
	ErrExternalTool = errors.New("external tool error")
	// ErrProtocol marks broken contracts between stages or with the face
	// detector (line count mismatch, malformed JSON, unprocessed stages).
	ErrProtocol = errors.New("protocol error")
	// ErrConfiguration marks unusable configuration values.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks missing metadata or files the caller required.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrInput
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short label for the marker carried by err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInput):
		return "input"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	case errors.Is(err, ErrProtocol):
		return "protocol"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "unknown"
	}
}

// ExitCode maps an error to the process exit status. Every failure is fatal
// for the run, so anything non-nil exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
