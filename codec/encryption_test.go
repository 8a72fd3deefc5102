package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	commonpb "go.temporal.io/api/common/v1"
	"go.temporal.io/sdk/converter"

	"food-order-storefront/models"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestEncryptionDataConverterRoundTrip(t *testing.T) {
	dc, err := NewEncryptionDataConverter(testKey(1))
	require.NoError(t, err)

	customer := models.Customer{Name: "Ada", Email: "ada@example.com", Street: "Main St 1", PostalCode: "12345", City: "Springfield"}
	payload, err := dc.ToPayload(customer)
	require.NoError(t, err)

	assert.Equal(t, MetadataEncodingEncrypted, string(payload.GetMetadata()[converter.MetadataEncoding]))
	assert.Equal(t, KeyID(testKey(1)), string(payload.GetMetadata()[MetadataEncryptionKeyID]))
	assert.False(t, bytes.Contains(payload.GetData(), []byte("ada@example.com")))

	var decoded models.Customer
	require.NoError(t, dc.FromPayload(payload, &decoded))
	assert.Equal(t, customer, decoded)
}

func TestDecodeRejectsForeignKey(t *testing.T) {
	writer, err := NewEncryptionCodec(testKey(1))
	require.NoError(t, err)
	reader, err := NewEncryptionCodec(testKey(2))
	require.NoError(t, err)

	plain, err := converter.GetDefaultDataConverter().ToPayloads("secret")
	require.NoError(t, err)
	encoded, err := writer.Encode(plain.Payloads)
	require.NoError(t, err)

	_, err = reader.Decode(encoded)
	assert.Error(t, err)
}

func TestDecodePassesPlainPayloadsThrough(t *testing.T) {
	c, err := NewEncryptionCodec(testKey(1))
	require.NoError(t, err)

	plain, err := converter.GetDefaultDataConverter().ToPayload("hello")
	require.NoError(t, err)
	decoded, err := c.Decode([]*commonpb.Payload{plain})
	require.NoError(t, err)

	assert.Same(t, plain, decoded[0])
}

func TestNewEncryptionCodecKeyLength(t *testing.T) {
	_, err := NewEncryptionCodec([]byte("short"))
	assert.Error(t, err)
}
