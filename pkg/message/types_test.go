package message

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlgorithmNameLookups(t *testing.T) {
	id, ok := EncryptionAlgorithmID("ENCR_AES_CBC")
	require.True(t, ok)
	require.Equal(t, uint16(ENCR_AES_CBC), id)
	require.Equal(t, "ENCR_AES_CBC", EncryptionAlgorithmName(id))

	id, ok = PseudorandomFunctionID("PRF_HMAC_SHA1")
	require.True(t, ok)
	require.Equal(t, uint16(PRF_HMAC_SHA1), id)
	require.Equal(t, "PRF_HMAC_SHA1", PseudorandomFunctionName(id))

	id, ok = IntegrityAlgorithmID("AUTH_HMAC_SHA1_96")
	require.True(t, ok)
	require.Equal(t, uint16(AUTH_HMAC_SHA1_96), id)
	require.Equal(t, "AUTH_HMAC_SHA1_96", IntegrityAlgorithmName(id))

	id, ok = DiffieHellmanGroupID("MODP_2048")
	require.True(t, ok)
	require.Equal(t, uint16(MODP_2048), id)
	require.Equal(t, "MODP_2048", DiffieHellmanGroupName(id))

	_, ok = EncryptionAlgorithmID("ENCR_BOGUS")
	require.False(t, ok)

	// Unknown ids fall back to the numeric form.
	require.Equal(t, "999", EncryptionAlgorithmName(999))
}

func TestTransformNames(t *testing.T) {
	require.Equal(t, "ENCR", TransformTypeName(TypeEncryptionAlgorithm))
	require.Equal(t, "DH", TransformTypeName(TypeDiffieHellmanGroup))
	require.Equal(t, "ENCR_3DES", TransformIDName(TypeEncryptionAlgorithm, ENCR_3DES))
	require.Equal(t, "IKE", ProtocolName(ProtocolIKE))
	require.Equal(t, "ESP", ProtocolName(ProtocolESP))
}
