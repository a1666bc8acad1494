package message

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const transformHeaderLength = 8

// Encoding rules of a transform substructure (RFC 7296, Section 3.3.2):
//
//	Byte 0:     0 (last) or 3 (more transforms)
//	Byte 1:     Reserved
//	Bytes 2-3:  Transform Length
//	Byte 4:     Transform Type
//	Byte 5:     Reserved
//	Bytes 6-7:  Transform ID
//	Bytes 8..N: Transform Attributes
var transformEncodings = []EncodingRule{
	{Kind: FieldLastFlag, Loc: LocIsLast, Aux: 3},
	{Kind: FieldReservedByte},
	{Kind: FieldPayloadLength, Loc: LocPayloadLength},
	{Kind: FieldU8, Loc: LocTransformType},
	{Kind: FieldReservedByte},
	{Kind: FieldU16, Loc: LocTransformID},
	{Kind: FieldSubPayloadList, Loc: LocAttributes},
}

// Encoding rules of a transform attribute (RFC 7296, Section 3.3.5).
// The AF bit shares the type word; the length-or-value word holds the
// value itself in TV format and the value length in TLV format.
var transformAttributeEncodings = []EncodingRule{
	{Kind: FieldAttributeFormat, Loc: LocAttributeFormat},
	{Kind: FieldAttributeType, Loc: LocAttributeType},
	{Kind: FieldAttributeLengthOrValue, Loc: LocAttributeValue},
	{Kind: FieldAttributeValue, Loc: LocAttributeVariableValue},
}

// Transform is one algorithm choice within a proposal.
type Transform struct {
	IsLast        bool
	TransformType uint8
	TransformID   uint16
	Attributes    TransformAttributeContainer

	payloadLength uint16
}

type TransformContainer []*Transform

func (container *TransformContainer) count() int {
	return len(*container)
}

func (container *TransformContainer) element(i int) Encodable {
	return (*container)[i]
}

func (container *TransformContainer) newElement() Encodable {
	return new(Transform)
}

func (container *TransformContainer) appendElement(e Encodable) {
	*container = append(*container, e.(*Transform))
}

func (transform *Transform) EncodingRules() []EncodingRule {
	return transformEncodings
}

// Length recomputes the encoded size of the transform, attributes
// included.
func (transform *Transform) Length() int {
	length := transformHeaderLength
	for _, attribute := range transform.Attributes {
		length += attribute.Length()
	}
	transform.payloadLength = uint16(length)
	return length
}

func (transform *Transform) Verify() error {
	switch transform.TransformType {
	case TypeEncryptionAlgorithm,
		TypePseudorandomFunction,
		TypeIntegrityAlgorithm,
		TypeDiffieHellmanGroup,
		TypeExtendedSequenceNumbers:
		return nil
	default:
		return errors.Wrapf(ErrMalformedPayload, "unknown transform type %d", transform.TransformType)
	}
}

// KeyLength returns the declared key length attribute of the
// transform, reporting whether one is present.
func (transform *Transform) KeyLength() (uint16, bool) {
	for _, attribute := range transform.Attributes {
		if attribute.AttributeType != AttributeTypeKeyLength {
			continue
		}
		if attribute.AttributeFormat {
			return attribute.AttributeValue, true
		}
		if len(attribute.VariableValue) == 2 {
			return binary.BigEndian.Uint16(attribute.VariableValue), true
		}
	}
	return 0, false
}

func (transform *Transform) uint8Field(loc FieldLocation) *uint8 {
	if loc == LocTransformType {
		return &transform.TransformType
	}
	return nil
}

func (transform *Transform) uint16Field(loc FieldLocation) *uint16 {
	switch loc {
	case LocTransformID:
		return &transform.TransformID
	case LocPayloadLength:
		return &transform.payloadLength
	default:
		return nil
	}
}

func (transform *Transform) uint32Field(FieldLocation) *uint32 { return nil }

func (transform *Transform) flagField(loc FieldLocation) *bool {
	if loc == LocIsLast {
		return &transform.IsLast
	}
	return nil
}

func (transform *Transform) bytesField(FieldLocation) *[]byte { return nil }

func (transform *Transform) listField(loc FieldLocation) subPayloadList {
	if loc == LocAttributes {
		return &transform.Attributes
	}
	return nil
}

// TransformAttribute is one TV or TLV attribute of a transform.
// AttributeFormat true selects the TV format.
type TransformAttribute struct {
	AttributeFormat bool
	AttributeType   uint16
	AttributeValue  uint16
	VariableValue   []byte
}

type TransformAttributeContainer []*TransformAttribute

func (container *TransformAttributeContainer) count() int {
	return len(*container)
}

func (container *TransformAttributeContainer) element(i int) Encodable {
	return (*container)[i]
}

func (container *TransformAttributeContainer) newElement() Encodable {
	return new(TransformAttribute)
}

func (container *TransformAttributeContainer) appendElement(e Encodable) {
	*container = append(*container, e.(*TransformAttribute))
}

func (attribute *TransformAttribute) EncodingRules() []EncodingRule {
	return transformAttributeEncodings
}

func (attribute *TransformAttribute) Length() int {
	if attribute.AttributeFormat {
		return 4
	}
	return 4 + len(attribute.VariableValue)
}

func (attribute *TransformAttribute) uint8Field(FieldLocation) *uint8 { return nil }

func (attribute *TransformAttribute) uint16Field(loc FieldLocation) *uint16 {
	switch loc {
	case LocAttributeType:
		return &attribute.AttributeType
	case LocAttributeValue:
		return &attribute.AttributeValue
	default:
		return nil
	}
}

func (attribute *TransformAttribute) uint32Field(FieldLocation) *uint32 { return nil }

func (attribute *TransformAttribute) flagField(loc FieldLocation) *bool {
	if loc == LocAttributeFormat {
		return &attribute.AttributeFormat
	}
	return nil
}

func (attribute *TransformAttribute) bytesField(loc FieldLocation) *[]byte {
	if loc == LocAttributeVariableValue {
		return &attribute.VariableValue
	}
	return nil
}

func (attribute *TransformAttribute) listField(FieldLocation) subPayloadList { return nil }
