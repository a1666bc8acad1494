package message

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestBuildProposal(t *testing.T) {
	proposal := BuildProposal(3, ProtocolESP, []byte{0x01, 0x02, 0x03, 0x04})
	require.Equal(t, uint8(3), proposal.ProposalNumber)
	require.Equal(t, uint8(ProtocolESP), proposal.ProtocolID)
	require.Equal(t, 4, proposal.SPISize())
	require.Equal(t, 0, proposal.TransformCount())
}

func TestBuildTransformKeyLength(t *testing.T) {
	transform := BuildTransform(TypeEncryptionAlgorithm, ENCR_AES_CBC, 256)
	require.Len(t, transform.Attributes, 1)
	require.True(t, transform.Attributes[0].AttributeFormat)
	require.Equal(t, uint16(AttributeTypeKeyLength), transform.Attributes[0].AttributeType)

	keyLength, ok := transform.KeyLength()
	require.True(t, ok)
	require.Equal(t, uint16(256), keyLength)

	bare := BuildTransform(TypeDiffieHellmanGroup, MODP_2048, 0)
	require.Empty(t, bare.Attributes)
	_, ok = bare.KeyLength()
	require.False(t, ok)
}

func TestBuildChosenSecurityAssociation(t *testing.T) {
	sa := NewSecurityAssociation()
	sa.AddProposal(buildIKEProposal(1))
	sa.AddProposal(buildIKEProposal(2))

	chosen, err := BuildChosenSecurityAssociation(sa, 2)
	require.NoError(t, err)
	require.Len(t, chosen.Proposals, 1)
	require.True(t, chosen.Proposals[0].IsLast)
	require.Equal(t, uint8(1), chosen.Proposals[0].ProposalNumber)
	require.NoError(t, chosen.Verify())

	// The chosen proposal is an independent copy.
	chosen.Proposals[0].Transforms[0].TransformID = ENCR_3DES
	require.Equal(t, uint16(ENCR_AES_CBC), sa.Proposals[1].Transforms[0].TransformID)
	require.Equal(t, uint8(2), sa.Proposals[1].ProposalNumber)

	data, err := Encode(chosen)
	require.NoError(t, err)
	require.Equal(t, chosen.Length(), len(data))
}

func TestBuildChosenSecurityAssociationNotFound(t *testing.T) {
	sa := NewSecurityAssociation()
	sa.AddProposal(buildIKEProposal(1))

	_, err := BuildChosenSecurityAssociation(sa, 9)
	require.Error(t, err)
	require.Equal(t, ErrProposalNotFound, errors.Cause(err))
}
