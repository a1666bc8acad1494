package message

import "fmt"

// IKE payload types
type PayloadType uint8

const (
	NoNext PayloadType = 0
	TypeSA PayloadType = iota + 32
	TypeKE
	TypeIDi
	TypeIDr
	TypeCERT
	TypeCERTreq
	TypeAUTH
	TypeNiNr
	TypeN
	TypeD
	TypeV
	TypeTSi
	TypeTSr
	TypeSK
	TypeCP
	TypeEAP
)

// Protocol IDs carried in a proposal substructure
const (
	ProtocolIKE = 1
	ProtocolAH  = 2
	ProtocolESP = 3
)

// used for SecurityAssociation-Proposal-Transform TransformType
const (
	TypeEncryptionAlgorithm = iota + 1
	TypePseudorandomFunction
	TypeIntegrityAlgorithm
	TypeDiffieHellmanGroup
	TypeExtendedSequenceNumbers
)

// Transform attribute types
const (
	AttributeTypeKeyLength = 14
)

// Transform IDs used in IKE (IANA IKEv2 parameters)
const (
	ENCR_DES     = 2
	ENCR_3DES    = 3
	ENCR_NULL    = 11
	ENCR_AES_CBC = 12
	ENCR_AES_CTR = 13
)

const (
	PRF_HMAC_MD5      = 1
	PRF_HMAC_SHA1     = 2
	PRF_AES128_XCBC   = 4
	PRF_HMAC_SHA2_256 = 5
	PRF_HMAC_SHA2_384 = 6
	PRF_HMAC_SHA2_512 = 7
)

const (
	AUTH_NONE              = 0
	AUTH_HMAC_MD5_96       = 1
	AUTH_HMAC_SHA1_96      = 2
	AUTH_AES_XCBC_96       = 5
	AUTH_HMAC_SHA2_256_128 = 12
	AUTH_HMAC_SHA2_384_192 = 13
	AUTH_HMAC_SHA2_512_256 = 14
)

const (
	MODP_768  = 1
	MODP_1024 = 2
	MODP_1536 = 5
	MODP_2048 = 14
	MODP_3072 = 15
	MODP_4096 = 16
)

var encryptionAlgorithmIDs = map[string]uint16{
	"ENCR_DES":     ENCR_DES,
	"ENCR_3DES":    ENCR_3DES,
	"ENCR_NULL":    ENCR_NULL,
	"ENCR_AES_CBC": ENCR_AES_CBC,
	"ENCR_AES_CTR": ENCR_AES_CTR,
}

var pseudorandomFunctionIDs = map[string]uint16{
	"PRF_HMAC_MD5":      PRF_HMAC_MD5,
	"PRF_HMAC_SHA1":     PRF_HMAC_SHA1,
	"PRF_AES128_XCBC":   PRF_AES128_XCBC,
	"PRF_HMAC_SHA2_256": PRF_HMAC_SHA2_256,
	"PRF_HMAC_SHA2_384": PRF_HMAC_SHA2_384,
	"PRF_HMAC_SHA2_512": PRF_HMAC_SHA2_512,
}

var integrityAlgorithmIDs = map[string]uint16{
	"AUTH_NONE":              AUTH_NONE,
	"AUTH_HMAC_MD5_96":       AUTH_HMAC_MD5_96,
	"AUTH_HMAC_SHA1_96":      AUTH_HMAC_SHA1_96,
	"AUTH_AES_XCBC_96":       AUTH_AES_XCBC_96,
	"AUTH_HMAC_SHA2_256_128": AUTH_HMAC_SHA2_256_128,
	"AUTH_HMAC_SHA2_384_192": AUTH_HMAC_SHA2_384_192,
	"AUTH_HMAC_SHA2_512_256": AUTH_HMAC_SHA2_512_256,
}

var diffieHellmanGroupIDs = map[string]uint16{
	"MODP_768":  MODP_768,
	"MODP_1024": MODP_1024,
	"MODP_1536": MODP_1536,
	"MODP_2048": MODP_2048,
	"MODP_3072": MODP_3072,
	"MODP_4096": MODP_4096,
}

// EncryptionAlgorithmID resolves an encryption algorithm name to its
// transform ID.
func EncryptionAlgorithmID(name string) (uint16, bool) {
	id, ok := encryptionAlgorithmIDs[name]
	return id, ok
}

// PseudorandomFunctionID resolves a PRF name to its transform ID.
func PseudorandomFunctionID(name string) (uint16, bool) {
	id, ok := pseudorandomFunctionIDs[name]
	return id, ok
}

// IntegrityAlgorithmID resolves an integrity algorithm name to its
// transform ID.
func IntegrityAlgorithmID(name string) (uint16, bool) {
	id, ok := integrityAlgorithmIDs[name]
	return id, ok
}

// DiffieHellmanGroupID resolves a Diffie-Hellman group name to its
// transform ID.
func DiffieHellmanGroupID(name string) (uint16, bool) {
	id, ok := diffieHellmanGroupIDs[name]
	return id, ok
}

func lookupName(ids map[string]uint16, id uint16) string {
	for name, value := range ids {
		if value == id {
			return name
		}
	}
	return fmt.Sprintf("%d", id)
}

func EncryptionAlgorithmName(id uint16) string {
	return lookupName(encryptionAlgorithmIDs, id)
}

func PseudorandomFunctionName(id uint16) string {
	return lookupName(pseudorandomFunctionIDs, id)
}

func IntegrityAlgorithmName(id uint16) string {
	return lookupName(integrityAlgorithmIDs, id)
}

func DiffieHellmanGroupName(id uint16) string {
	return lookupName(diffieHellmanGroupIDs, id)
}

// TransformTypeName returns the wire name of a transform type.
func TransformTypeName(transformType uint8) string {
	switch transformType {
	case TypeEncryptionAlgorithm:
		return "ENCR"
	case TypePseudorandomFunction:
		return "PRF"
	case TypeIntegrityAlgorithm:
		return "INTEG"
	case TypeDiffieHellmanGroup:
		return "DH"
	case TypeExtendedSequenceNumbers:
		return "ESN"
	default:
		return fmt.Sprintf("%d", transformType)
	}
}

// TransformIDName returns the algorithm name of a transform ID for the
// given transform type.
func TransformIDName(transformType uint8, transformID uint16) string {
	switch transformType {
	case TypeEncryptionAlgorithm:
		return EncryptionAlgorithmName(transformID)
	case TypePseudorandomFunction:
		return PseudorandomFunctionName(transformID)
	case TypeIntegrityAlgorithm:
		return IntegrityAlgorithmName(transformID)
	case TypeDiffieHellmanGroup:
		return DiffieHellmanGroupName(transformID)
	default:
		return fmt.Sprintf("%d", transformID)
	}
}

// ProtocolName returns the wire name of a proposal protocol ID.
func ProtocolName(protocolID uint8) string {
	switch protocolID {
	case ProtocolIKE:
		return "IKE"
	case ProtocolAH:
		return "AH"
	case ProtocolESP:
		return "ESP"
	default:
		return fmt.Sprintf("%d", protocolID)
	}
}
