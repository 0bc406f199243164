package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckDocument_SizeLimit(t *testing.T) {
	t.Setenv(EnvMaxDocumentSize, "16")

	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"Under Limit", 15, false},
		{"Exact Limit", 16, false},
		{"Over Limit", 17, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkDocument([]byte(strings.Repeat("a", tt.size)))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDocumentTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckDocument_UTF8(t *testing.T) {
	assert.ErrorIs(t, checkDocument([]byte{0xff, 0xfe}), ErrInvalidUTF8)
	assert.NoError(t, checkDocument([]byte("título: ação")))
}

func TestMaxDocumentSize_Env(t *testing.T) {
	t.Setenv(EnvMaxDocumentSize, "nope")
	assert.Equal(t, DefaultMaxDocumentSize, maxDocumentSize())
	t.Setenv(EnvMaxDocumentSize, "-4")
	assert.Equal(t, DefaultMaxDocumentSize, maxDocumentSize())
}

func TestReadDocument_StdinTooLarge(t *testing.T) {
	t.Setenv(EnvMaxDocumentSize, "4")
	_, err := ReadDocument(StdinArg, strings.NewReader("[1,2,3]"))
	assert.ErrorIs(t, err, ErrDocumentTooLarge)
}
