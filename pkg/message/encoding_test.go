package message

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestEncodeTransform(t *testing.T) {
	transform := BuildTransform(TypeEncryptionAlgorithm, ENCR_AES_CBC, 128)
	transform.IsLast = true

	data, err := Encode(transform)
	require.NoError(t, err)
	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x0c, // last, reserved, length 12
		0x01, 0x00, 0x00, 0x0c, // ENCR, reserved, ENCR_AES_CBC
		0x80, 0x0e, 0x00, 0x80, // TV key length attribute, 128 bits
	}, data)
}

func TestEncodeTransformMoreMarker(t *testing.T) {
	transform := BuildTransform(TypePseudorandomFunction, PRF_HMAC_SHA1, 0)

	data, err := Encode(transform)
	require.NoError(t, err)
	require.Equal(t, []byte{
		0x03, 0x00, 0x00, 0x08,
		0x02, 0x00, 0x00, 0x02,
	}, data)
}

func TestDecodeTransform(t *testing.T) {
	raw := []byte{
		0x00, 0x00, 0x00, 0x0c,
		0x01, 0x00, 0x00, 0x0c,
		0x80, 0x0e, 0x00, 0x80,
	}

	transform := new(Transform)
	consumed, err := Decode(transform, raw)
	require.NoError(t, err)
	require.Equal(t, len(raw), consumed)
	require.True(t, transform.IsLast)
	require.Equal(t, uint8(TypeEncryptionAlgorithm), transform.TransformType)
	require.Equal(t, uint16(ENCR_AES_CBC), transform.TransformID)

	keyLength, ok := transform.KeyLength()
	require.True(t, ok)
	require.Equal(t, uint16(128), keyLength)
}

func TestDecodeTransformTLVKeyLength(t *testing.T) {
	raw := []byte{
		0x00, 0x00, 0x00, 0x0e,
		0x01, 0x00, 0x00, 0x0c,
		0x00, 0x0e, 0x00, 0x02, // TLV key length attribute
		0x00, 0x80,
	}

	transform := new(Transform)
	consumed, err := Decode(transform, raw)
	require.NoError(t, err)
	require.Equal(t, len(raw), consumed)
	require.Len(t, transform.Attributes, 1)
	require.False(t, transform.Attributes[0].AttributeFormat)
	require.Equal(t, []byte{0x00, 0x80}, transform.Attributes[0].VariableValue)

	keyLength, ok := transform.KeyLength()
	require.True(t, ok)
	require.Equal(t, uint16(128), keyLength)
}

func TestAttributeRoundTrip(t *testing.T) {
	attribute := &TransformAttribute{
		AttributeType: AttributeTypeKeyLength,
		VariableValue: []byte{0x01, 0x00},
	}

	data, err := Encode(attribute)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x0e, 0x00, 0x02, 0x01, 0x00}, data)

	decoded := new(TransformAttribute)
	consumed, err := Decode(decoded, data)
	require.NoError(t, err)
	require.Equal(t, len(data), consumed)
	require.Equal(t, attribute.AttributeType, decoded.AttributeType)
	require.Equal(t, attribute.VariableValue, decoded.VariableValue)
}

func TestDecodeTransformShortBuffer(t *testing.T) {
	raw := []byte{
		0x00, 0x00, 0x00, 0x0c,
		0x01, 0x00, 0x00, 0x0c,
		0x80, 0x0e, // attribute cut off
	}

	_, err := Decode(new(Transform), raw)
	require.Error(t, err)
	require.Equal(t, ErrMalformedPayload, errors.Cause(err))
}

func TestDecodeTransformDeclaredLengthExceedsBuffer(t *testing.T) {
	raw := []byte{
		0x00, 0x00, 0x00, 0x20,
		0x01, 0x00, 0x00, 0x0c,
	}

	_, err := Decode(new(Transform), raw)
	require.Error(t, err)
	require.Equal(t, ErrMalformedPayload, errors.Cause(err))
}

func TestDecodeProposalTransformCountMismatch(t *testing.T) {
	raw := []byte{
		0x00, 0x00, 0x00, 0x14, // proposal, length 20
		0x01, 0x01, 0x00, 0x02, // number 1, IKE, no SPI, declares 2 transforms
		0x00, 0x00, 0x00, 0x0c, // single transform
		0x01, 0x00, 0x00, 0x0c,
		0x80, 0x0e, 0x00, 0x80,
	}

	_, err := Decode(new(Proposal), raw)
	require.Error(t, err)
	require.Equal(t, ErrMalformedPayload, errors.Cause(err))
}

func TestDecodeProposalSPI(t *testing.T) {
	raw := []byte{
		0x00, 0x00, 0x00, 0x14, // proposal, length 20
		0x01, 0x03, 0x04, 0x01, // number 1, ESP, 4-byte SPI, 1 transform
		0xde, 0xad, 0xbe, 0xef,
		0x00, 0x00, 0x00, 0x08,
		0x01, 0x00, 0x00, 0x0b, // ENCR_NULL
	}

	proposal := new(Proposal)
	consumed, err := Decode(proposal, raw)
	require.NoError(t, err)
	require.Equal(t, len(raw), consumed)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, proposal.SPI)
	require.Equal(t, 4, proposal.SPISize())
	require.Equal(t, 1, proposal.TransformCount())
}

func TestDecodeProposalTruncatedSPI(t *testing.T) {
	raw := []byte{
		0x00, 0x00, 0x00, 0x0a, // proposal, length 10
		0x01, 0x03, 0x04, 0x01, // declares a 4-byte SPI
		0xde, 0xad, // only 2 bytes remain
	}

	_, err := Decode(new(Proposal), raw)
	require.Error(t, err)
	require.Equal(t, ErrMalformedPayload, errors.Cause(err))
}

func TestDecodeReservedBitsIgnored(t *testing.T) {
	// Reserved bits set by the peer must not fail the decode, and must
	// not leak into the critical flag.
	raw := []byte{0x00, 0x7f, 0x00, 0x04}

	sa := new(SecurityAssociation)
	consumed, err := Decode(sa, raw)
	require.NoError(t, err)
	require.Equal(t, len(raw), consumed)
	require.False(t, sa.Critical())
}

func TestEncodeFixesUpPayloadLength(t *testing.T) {
	sa := NewSecurityAssociation()
	proposal := BuildProposal(1, ProtocolIKE, nil)
	proposal.AddTransform(BuildTransform(TypePseudorandomFunction, PRF_HMAC_SHA1, 0))
	sa.AddProposal(proposal)

	data, err := Encode(sa)
	require.NoError(t, err)
	require.Equal(t, sa.Length(), len(data))
	require.Equal(t, []byte{0x00, 0x14}, data[2:4])
	require.Equal(t, []byte{0x00, 0x10}, data[6:8])
}
