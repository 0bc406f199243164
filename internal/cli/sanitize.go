package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"
)

var (
	// DefaultMaxDocumentSize is 1MiB.
	DefaultMaxDocumentSize = 1 << 20
	// EnvMaxDocumentSize is the environment variable to override the default
	EnvMaxDocumentSize = "STEPFLOW_MAX_DOCUMENT_SIZE"
)

var (
	ErrDocumentTooLarge = errors.New("document exceeds maximum allowed size")
	ErrInvalidUTF8      = errors.New("document contains invalid UTF-8 sequences")
)

// checkDocument rejects oversized or non UTF-8 flow documents.
func checkDocument(data []byte) error {
	// Rejected rather than truncated: a cut document may still parse.
	if limit := maxDocumentSize(); len(data) > limit {
		return fmt.Errorf("%w: size=%d limit=%d", ErrDocumentTooLarge, len(data), limit)
	}
	if !utf8.Valid(data) {
		return ErrInvalidUTF8
	}
	return nil
}

func maxDocumentSize() int {
	if val := os.Getenv(EnvMaxDocumentSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxDocumentSize
}
