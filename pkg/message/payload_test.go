package message

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestPayloadContainerEncode(t *testing.T) {
	sa := NewSecurityAssociation()
	sa.AddProposal(buildIKEProposal(1))
	sa.SetNextType(TypeKE) // must be rewritten by the container

	container := PayloadContainer{sa}
	data, err := container.Encode()
	require.NoError(t, err)
	require.Equal(t, NoNext, sa.NextType())
	require.Equal(t, uint8(NoNext), data[0])
	require.Equal(t, sa.Length(), len(data))
}

func TestPayloadContainerDecode(t *testing.T) {
	sa := NewSecurityAssociation()
	sa.AddProposal(buildIKEProposal(1))

	data, err := PayloadContainer{sa}.Encode()
	require.NoError(t, err)

	var decoded PayloadContainer
	require.NoError(t, decoded.Decode(TypeSA, data))
	require.Len(t, decoded, 1)

	out, ok := decoded[0].(*SecurityAssociation)
	require.True(t, ok)
	require.NoError(t, out.Verify())
	require.Len(t, out.Proposals, 1)
}

func TestPayloadContainerSkipsUnknownPayload(t *testing.T) {
	sa := NewSecurityAssociation()
	sa.AddProposal(buildIKEProposal(1))

	saData, err := Encode(sa)
	require.NoError(t, err)

	// Unknown payload chaining to the SA payload, critical flag clear.
	unknown := []byte{uint8(TypeSA), 0x00, 0x00, 0x08, 0xca, 0xfe, 0xba, 0xbe}
	raw := append(unknown, saData...)

	var decoded PayloadContainer
	require.NoError(t, decoded.Decode(TypeN, raw))
	require.Len(t, decoded, 1)
	require.Equal(t, TypeSA, decoded[0].Type())
}

func TestPayloadContainerCriticalUnknownPayload(t *testing.T) {
	raw := []byte{uint8(NoNext), 0x80, 0x00, 0x08, 0xca, 0xfe, 0xba, 0xbe}

	var decoded PayloadContainer
	err := decoded.Decode(TypeN, raw)
	require.Error(t, err)
	require.Equal(t, ErrCriticalBitSet, errors.Cause(err))
}

func TestPayloadContainerDecodeTruncatedHeader(t *testing.T) {
	var decoded PayloadContainer
	err := decoded.Decode(TypeSA, []byte{0x00, 0x00, 0x00})
	require.Error(t, err)
	require.Equal(t, ErrMalformedPayload, errors.Cause(err))

	err = decoded.Decode(TypeSA, []byte{0x00, 0x00, 0x00, 0x02})
	require.Error(t, err)
	require.Equal(t, ErrMalformedPayload, errors.Cause(err))

	err = decoded.Decode(TypeSA, []byte{0x00, 0x00, 0x00, 0x10})
	require.Error(t, err)
	require.Equal(t, ErrMalformedPayload, errors.Cause(err))
}
