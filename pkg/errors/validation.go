package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// MaxNodeIDLength bounds node identifiers accepted at load time.
const MaxNodeIDLength = 1024

// ValidateNodeID validates a node identifier supplied by a graph producer.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters (identifiers end up in DOT output and terminals)
//   - Maximum length of MaxNodeIDLength bytes
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidGraph, "node id cannot be empty")
	}

	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidGraph, "node id too long (max %d characters)", MaxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "node id %q contains control characters", id)
		}
	}

	return nil
}

// ValidateGraphPath validates a graph input file path given on the command line.
// It ensures the path is non-empty, free of null bytes and uses a supported
// extension (.json, .yaml or .yml).
func ValidateGraphPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "graph path cannot be empty")
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidInput, "graph path contains invalid characters")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return nil
	default:
		return New(ErrCodeInvalidFormat, "unsupported graph file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}
