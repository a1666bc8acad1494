package message

import (
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
)

// BuildProposal returns a proposal substructure for the given number,
// protocol and SPI value, without transforms.
func BuildProposal(number uint8, protocolID uint8, spi []byte) *Proposal {
	proposal := new(Proposal)
	proposal.ProposalNumber = number
	proposal.ProtocolID = protocolID
	proposal.SPI = append(proposal.SPI, spi...)
	return proposal
}

// BuildTransform returns a transform substructure. A non-zero
// keyLength is attached as a TV key-length attribute.
func BuildTransform(transformType uint8, transformID uint16, keyLength uint16) *Transform {
	transform := new(Transform)
	transform.TransformType = transformType
	transform.TransformID = transformID
	if keyLength > 0 {
		transform.Attributes = append(transform.Attributes, &TransformAttribute{
			AttributeFormat: true,
			AttributeType:   AttributeTypeKeyLength,
			AttributeValue:  keyLength,
		})
	}
	return transform
}

// BuildChosenSecurityAssociation returns a fresh single-proposal SA
// payload answering a negotiation: the proposal with the given number
// is deep-copied out of sa, leaving sa untouched. The copy is
// renumbered to 1 so the resulting payload passes proposal-number
// validation on its own.
func BuildChosenSecurityAssociation(sa *SecurityAssociation, proposalNumber uint8) (*SecurityAssociation, error) {
	for _, proposal := range sa.Proposals {
		if proposal.ProposalNumber != proposalNumber {
			continue
		}
		chosen := deepcopy.Copy(proposal).(*Proposal)
		chosen.ProposalNumber = 1

		out := NewSecurityAssociation()
		out.AddProposal(chosen)
		return out, nil
	}
	return nil, errors.Wrapf(ErrProposalNotFound, "no proposal numbered %d", proposalNumber)
}
