// Package codec encrypts Temporal payloads so that customer details in
// session and checkout histories are not stored in clear text.
package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/google/uuid"
	commonpb "go.temporal.io/api/common/v1"
	"go.temporal.io/sdk/converter"
	"google.golang.org/protobuf/proto"
)

const (
	MetadataEncodingEncrypted = "binary/encrypted"
	MetadataEncryptionKeyID   = "encryption-key-id"
)

// EncryptionCodec is an AES-GCM converter.PayloadCodec.
type EncryptionCodec struct {
	aead  cipher.AEAD
	keyID string
}

var _ converter.PayloadCodec = (*EncryptionCodec)(nil)

// NewEncryptionCodec accepts a 16, 24 or 32 byte AES key.
func NewEncryptionCodec(key []byte) (*EncryptionCodec, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &EncryptionCodec{aead: aead, keyID: KeyID(key)}, nil
}

// NewEncryptionDataConverter wraps the default data converter with an
// EncryptionCodec.
func NewEncryptionDataConverter(key []byte) (converter.DataConverter, error) {
	codec, err := NewEncryptionCodec(key)
	if err != nil {
		return nil, err
	}
	return converter.NewCodecDataConverter(converter.GetDefaultDataConverter(), codec), nil
}

// KeyID is a stable, non-secret identifier for key, recorded on every
// encrypted payload.
func KeyID(key []byte) string {
	sum := sha256.Sum256(key)
	return uuid.NewSHA1(uuid.NameSpaceOID, sum[:]).String()
}

func (c *EncryptionCodec) Encode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	result := make([]*commonpb.Payload, len(payloads))
	for i, p := range payloads {
		plain, err := proto.Marshal(p)
		if err != nil {
			return payloads, fmt.Errorf("failed to marshal payload: %w", err)
		}
		sealed, err := c.encrypt(plain)
		if err != nil {
			return payloads, err
		}
		result[i] = &commonpb.Payload{
			Metadata: map[string][]byte{
				converter.MetadataEncoding: []byte(MetadataEncodingEncrypted),
				MetadataEncryptionKeyID:    []byte(c.keyID),
			},
			Data: sealed,
		}
	}
	return result, nil
}

// Decode decrypts payloads written by Encode and passes others through.
func (c *EncryptionCodec) Decode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	result := make([]*commonpb.Payload, len(payloads))
	for i, p := range payloads {
		if string(p.GetMetadata()[converter.MetadataEncoding]) != MetadataEncodingEncrypted {
			result[i] = p
			continue
		}
		if keyID := string(p.GetMetadata()[MetadataEncryptionKeyID]); keyID != c.keyID {
			return payloads, fmt.Errorf("payload encrypted with unknown key %q", keyID)
		}
		plain, err := c.decrypt(p.GetData())
		if err != nil {
			return payloads, err
		}
		result[i] = &commonpb.Payload{}
		if err := proto.Unmarshal(plain, result[i]); err != nil {
			return payloads, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}
	return result, nil
}

func (c *EncryptionCodec) encrypt(plain []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plain, nil), nil
}

func (c *EncryptionCodec) decrypt(sealed []byte) ([]byte, error) {
	size := c.aead.NonceSize()
	if len(sealed) < size {
		return nil, fmt.Errorf("encrypted payload too short")
	}
	plain, err := c.aead.Open(nil, sealed[:size], sealed[size:], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt payload: %w", err)
	}
	return plain, nil
}
