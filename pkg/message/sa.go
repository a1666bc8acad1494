package message

import (
	"github.com/pkg/errors"

	"github.com/ikeforge/ikesa/internal/logger"
)

const saHeaderLength = 4

// Encoding rules of the SA payload (RFC 7296, Section 3.3):
//
//	                     1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	! Next Payload  !C!  RESERVED   !         Payload Length        !
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	!                                                               !
//	~                          <Proposals>                          ~
//	!                                                               !
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
var saPayloadEncodings = []EncodingRule{
	{Kind: FieldU8, Loc: LocNextPayload},
	{Kind: FieldFlag, Loc: LocCritical},
	{Kind: FieldReservedBit},
	{Kind: FieldReservedBit},
	{Kind: FieldReservedBit},
	{Kind: FieldReservedBit},
	{Kind: FieldReservedBit},
	{Kind: FieldReservedBit},
	{Kind: FieldReservedBit},
	{Kind: FieldPayloadLength, Loc: LocPayloadLength},
	{Kind: FieldSubPayloadList, Loc: LocProposals},
}

// IKEProposal is the flattened record of one IKE SA proposal, the
// interchange format with the negotiation engine. Key lengths are
// zero when no key-length attribute is declared.
type IKEProposal struct {
	EncryptionAlgorithm  uint16
	EncryptionKeyLength  uint16
	PseudorandomFunction uint16
	PRFKeyLength         uint16
	IntegrityAlgorithm   uint16
	IntegrityKeyLength   uint16
	DiffieHellmanGroup   uint16
}

// SecurityAssociation is the SA payload: an ordered sequence of
// proposals the payload exclusively owns.
type SecurityAssociation struct {
	nextPayload   uint8
	critical      bool
	payloadLength uint16

	Proposals ProposalContainer
}

var _ Payload = &SecurityAssociation{}

// NewSecurityAssociation returns an empty SA payload with no next
// payload, the critical flag cleared and the bare header length.
func NewSecurityAssociation() *SecurityAssociation {
	return &SecurityAssociation{
		nextPayload:   uint8(NoNext),
		payloadLength: saHeaderLength,
	}
}

// NewSecurityAssociationFromProposals builds an SA payload carrying
// one IKE proposal substructure per record, numbered from 1 in record
// order.
func NewSecurityAssociationFromProposals(proposals []IKEProposal) *SecurityAssociation {
	sa := NewSecurityAssociation()

	for i, record := range proposals {
		proposal := BuildProposal(uint8(i+1), ProtocolIKE, nil)
		proposal.AddTransform(BuildTransform(TypeEncryptionAlgorithm, record.EncryptionAlgorithm, record.EncryptionKeyLength))
		proposal.AddTransform(BuildTransform(TypePseudorandomFunction, record.PseudorandomFunction, record.PRFKeyLength))
		proposal.AddTransform(BuildTransform(TypeIntegrityAlgorithm, record.IntegrityAlgorithm, record.IntegrityKeyLength))
		proposal.AddTransform(BuildTransform(TypeDiffieHellmanGroup, record.DiffieHellmanGroup, 0))
		sa.AddProposal(proposal)
	}

	return sa
}

func (sa *SecurityAssociation) Type() PayloadType { return TypeSA }

func (sa *SecurityAssociation) NextType() PayloadType {
	return PayloadType(sa.nextPayload)
}

func (sa *SecurityAssociation) SetNextType(next PayloadType) {
	sa.nextPayload = uint8(next)
}

func (sa *SecurityAssociation) Critical() bool { return sa.critical }

func (sa *SecurityAssociation) SetCritical(critical bool) { sa.critical = critical }

func (sa *SecurityAssociation) EncodingRules() []EncodingRule {
	return saPayloadEncodings
}

// AddProposal appends a proposal at the end of the ordered sequence,
// moving the last-proposal wire marker and recomputing the total
// length.
func (sa *SecurityAssociation) AddProposal(proposal *Proposal) {
	if n := len(sa.Proposals); n > 0 {
		sa.Proposals[n-1].IsLast = false
	}
	proposal.IsLast = true
	sa.Proposals = append(sa.Proposals, proposal)
	sa.computeLength()
}

// Length recomputes and returns the total payload length, header plus
// every proposal.
func (sa *SecurityAssociation) Length() int {
	sa.computeLength()
	return int(sa.payloadLength)
}

func (sa *SecurityAssociation) computeLength() {
	length := saHeaderLength
	for _, proposal := range sa.Proposals {
		length += proposal.Length()
	}
	sa.payloadLength = uint16(length)
}

// Verify checks the critical flag and the proposal numbering rules:
// the first proposal must be numbered 1, alternative proposals repeat
// the running number, and each distinct group increments it by exactly
// one. Every proposal's own verification runs afterwards; the first
// failure aborts.
func (sa *SecurityAssociation) Verify() error {
	if sa.critical {
		return errors.Wrap(ErrCriticalBitSet, "security association payload")
	}

	expected := 1
	first := true
	for i, proposal := range sa.Proposals {
		number := int(proposal.ProposalNumber)
		switch {
		case number > expected:
			if first {
				return errors.Wrapf(ErrInvalidProposalOrdering,
					"first proposal is numbered %d, want 1", number)
			}
			if number != expected+1 {
				return errors.Wrapf(ErrInvalidProposalOrdering,
					"proposal %d jumps from number %d to %d", i, expected, number)
			}
			expected = number
		case number < expected:
			return errors.Wrapf(ErrInvalidProposalOrdering,
				"proposal %d regresses from number %d to %d", i, expected, number)
		}

		if err := proposal.Verify(); err != nil {
			return err
		}
		first = false
	}

	return nil
}

// IKEProposals extracts one record per proposal whose protocol is IKE.
// The first pass validates the structural shape of every IKE proposal
// (exactly 4 transforms, empty SPI) before anything is allocated, so a
// later failure never yields a partial result. ErrProposalNotFound
// distinguishes "no IKE proposal present" from a malformed one.
func (sa *SecurityAssociation) IKEProposals() ([]IKEProposal, error) {
	found := 0
	for _, proposal := range sa.Proposals {
		if proposal.ProtocolID != ProtocolIKE {
			continue
		}
		if proposal.TransformCount() != 4 {
			return nil, errors.Wrapf(ErrExtractionFailed,
				"IKE proposal %d carries %d transforms, want 4", proposal.ProposalNumber, proposal.TransformCount())
		}
		if proposal.SPISize() != 0 {
			return nil, errors.Wrapf(ErrExtractionFailed,
				"IKE proposal %d carries a %d-byte SPI, want none", proposal.ProposalNumber, proposal.SPISize())
		}
		found++
	}

	if found == 0 {
		return nil, ErrProposalNotFound
	}

	logger.SALog.Debugf("extracting %d IKE proposals", found)

	records := make([]IKEProposal, 0, found)
	for _, proposal := range sa.Proposals {
		if proposal.ProtocolID != ProtocolIKE {
			continue
		}

		var record IKEProposal
		var haveEncryption, havePRF, haveIntegrity, haveGroup bool

		for _, transform := range proposal.Transforms {
			switch transform.TransformType {
			case TypeEncryptionAlgorithm:
				record.EncryptionAlgorithm = transform.TransformID
				if keyLength, ok := transform.KeyLength(); ok {
					record.EncryptionKeyLength = keyLength
				}
				haveEncryption = true
			case TypePseudorandomFunction:
				record.PseudorandomFunction = transform.TransformID
				if keyLength, ok := transform.KeyLength(); ok {
					record.PRFKeyLength = keyLength
				}
				havePRF = true
			case TypeIntegrityAlgorithm:
				record.IntegrityAlgorithm = transform.TransformID
				if keyLength, ok := transform.KeyLength(); ok {
					record.IntegrityKeyLength = keyLength
				}
				haveIntegrity = true
			case TypeDiffieHellmanGroup:
				record.DiffieHellmanGroup = transform.TransformID
				haveGroup = true
			default:
				// other transform types carry nothing for an IKE SA
			}
		}

		if !haveEncryption || !havePRF || !haveIntegrity || !haveGroup {
			return nil, errors.Wrapf(ErrExtractionFailed,
				"IKE proposal %d misses a mandatory transform type", proposal.ProposalNumber)
		}

		records = append(records, record)
	}

	return records, nil
}

func (sa *SecurityAssociation) uint8Field(loc FieldLocation) *uint8 {
	if loc == LocNextPayload {
		return &sa.nextPayload
	}
	return nil
}

func (sa *SecurityAssociation) uint16Field(loc FieldLocation) *uint16 {
	if loc == LocPayloadLength {
		return &sa.payloadLength
	}
	return nil
}

func (sa *SecurityAssociation) uint32Field(FieldLocation) *uint32 { return nil }

func (sa *SecurityAssociation) flagField(loc FieldLocation) *bool {
	if loc == LocCritical {
		return &sa.critical
	}
	return nil
}

func (sa *SecurityAssociation) bytesField(FieldLocation) *[]byte { return nil }

func (sa *SecurityAssociation) listField(loc FieldLocation) subPayloadList {
	if loc == LocProposals {
		return &sa.Proposals
	}
	return nil
}
