package message

import (
	"github.com/pkg/errors"
)

const proposalHeaderLength = 8

// Encoding rules of a proposal substructure (RFC 7296, Section 3.3.1):
//
//	Byte 0:     0 (last) or 2 (more proposals)
//	Byte 1:     Reserved
//	Bytes 2-3:  Proposal Length
//	Byte 4:     Proposal Number
//	Byte 5:     Protocol ID
//	Byte 6:     SPI Size
//	Byte 7:     Transform Count
//	Bytes 8..:  SPI, then Transform Substructures
var proposalEncodings = []EncodingRule{
	{Kind: FieldLastFlag, Loc: LocIsLast, Aux: 2},
	{Kind: FieldReservedByte},
	{Kind: FieldPayloadLength, Loc: LocPayloadLength},
	{Kind: FieldU8, Loc: LocProposalNumber},
	{Kind: FieldU8, Loc: LocProtocolID},
	{Kind: FieldSPISize, Loc: LocSPI},
	{Kind: FieldSubPayloadCount, Loc: LocTransforms},
	{Kind: FieldSPI, Loc: LocSPI},
	{Kind: FieldSubPayloadList, Loc: LocTransforms},
}

// Proposal is one numbered candidate combination of transforms for a
// protocol. IsLast mirrors the wire last/more marker only; ordering
// logic lives in the enclosing SA payload.
type Proposal struct {
	IsLast         bool
	ProposalNumber uint8
	ProtocolID     uint8
	SPI            []byte
	Transforms     TransformContainer

	payloadLength uint16
}

type ProposalContainer []*Proposal

func (container *ProposalContainer) count() int {
	return len(*container)
}

func (container *ProposalContainer) element(i int) Encodable {
	return (*container)[i]
}

func (container *ProposalContainer) newElement() Encodable {
	return new(Proposal)
}

func (container *ProposalContainer) appendElement(e Encodable) {
	*container = append(*container, e.(*Proposal))
}

func (proposal *Proposal) EncodingRules() []EncodingRule {
	return proposalEncodings
}

// SPISize returns the size of the proposal's SPI value in bytes.
func (proposal *Proposal) SPISize() int {
	return len(proposal.SPI)
}

// TransformCount returns the number of transforms the proposal
// carries.
func (proposal *Proposal) TransformCount() int {
	return len(proposal.Transforms)
}

// AddTransform appends a transform, keeping the last-transform wire
// markers consistent.
func (proposal *Proposal) AddTransform(transform *Transform) {
	if n := len(proposal.Transforms); n > 0 {
		proposal.Transforms[n-1].IsLast = false
	}
	transform.IsLast = true
	proposal.Transforms = append(proposal.Transforms, transform)
}

// Length recomputes the encoded size of the proposal, SPI and
// transforms included.
func (proposal *Proposal) Length() int {
	length := proposalHeaderLength + len(proposal.SPI)
	for _, transform := range proposal.Transforms {
		length += transform.Length()
	}
	proposal.payloadLength = uint16(length)
	return length
}

func (proposal *Proposal) Verify() error {
	if proposal.ProposalNumber == 0 {
		return errors.Wrap(ErrMalformedPayload, "proposal number 0")
	}
	switch proposal.ProtocolID {
	case ProtocolIKE, ProtocolAH, ProtocolESP:
	default:
		return errors.Wrapf(ErrMalformedPayload, "unknown protocol id %d", proposal.ProtocolID)
	}
	if len(proposal.Transforms) == 0 {
		return errors.Wrapf(ErrMalformedPayload, "proposal %d carries no transforms", proposal.ProposalNumber)
	}
	for i, transform := range proposal.Transforms {
		if err := transform.Verify(); err != nil {
			return errors.Wrapf(err, "proposal %d transform %d", proposal.ProposalNumber, i)
		}
	}
	return nil
}

func (proposal *Proposal) uint8Field(loc FieldLocation) *uint8 {
	switch loc {
	case LocProposalNumber:
		return &proposal.ProposalNumber
	case LocProtocolID:
		return &proposal.ProtocolID
	default:
		return nil
	}
}

func (proposal *Proposal) uint16Field(loc FieldLocation) *uint16 {
	if loc == LocPayloadLength {
		return &proposal.payloadLength
	}
	return nil
}

func (proposal *Proposal) uint32Field(FieldLocation) *uint32 { return nil }

func (proposal *Proposal) flagField(loc FieldLocation) *bool {
	if loc == LocIsLast {
		return &proposal.IsLast
	}
	return nil
}

func (proposal *Proposal) bytesField(loc FieldLocation) *[]byte {
	if loc == LocSPI {
		return &proposal.SPI
	}
	return nil
}

func (proposal *Proposal) listField(loc FieldLocation) subPayloadList {
	if loc == LocTransforms {
		return &proposal.Transforms
	}
	return nil
}
