package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/ports"
)

// EnvelopeOperator marks the single step of an encrypted flow envelope.
const EnvelopeOperator = "@stepflow/encrypted"

const ciphertextParam = "ciphertext"

// ErrKeySize is returned for keys that are not 32 bytes long.
var ErrKeySize = errors.New("encryption key must be 32 bytes (AES-256)")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey encrypts new data. Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried, in order, when the active key cannot decrypt.
	// They allow rotating keys without rewriting every flow at once.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.FlowStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that stores flows sealed
// with AES-GCM. Only the id, name and update time stay readable.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, ErrKeySize
	}
	for _, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("fallback key: %w", ErrKeySize)
		}
	}
	return func(next ports.FlowStore) ports.FlowStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

// ParseKey decodes a base64 AES-256 key.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) != 32 {
		return nil, ErrKeySize
	}
	return key, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, id string, flow *domain.Flow) error {
	plainText, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt flow: %w", err)
	}

	envelope := &domain.Flow{
		ID:        flow.ID,
		Name:      flow.Name,
		UpdatedAt: flow.UpdatedAt,
		Steps: []domain.Step{{
			ID:       "0",
			Operator: EnvelopeOperator,
			Parameters: map[string]any{
				ciphertextParam: base64.StdEncoding.EncodeToString(ciphertext),
			},
		}},
	}
	return m.next.Save(ctx, id, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, id string) (*domain.Flow, error) {
	envelope, err := m.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	encoded, ok := sealed(envelope)
	if !ok {
		// Plain flows are refused once encryption is on.
		return nil, fmt.Errorf("flow %s is missing its encrypted envelope", id)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt flow %s: %w", id, err)
	}

	var flow domain.Flow
	if err := json.Unmarshal(plainText, &flow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted flow: %w", err)
	}
	return &flow, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func sealed(envelope *domain.Flow) (string, bool) {
	if len(envelope.Steps) != 1 || envelope.Steps[0].Operator != EnvelopeOperator {
		return "", false
	}
	s, ok := envelope.Steps[0].Parameters[ciphertextParam].(string)
	return s, ok
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	for _, key := range append([][]byte{activeKey}, fallbackKeys...) {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
