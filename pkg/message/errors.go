package message

import "github.com/pkg/errors"

// Error kinds returned by decoding, verification and extraction. Call
// sites wrap them with context; callers compare with errors.Cause or
// errors.Is.
var (
	// ErrMalformedPayload reports wire data inconsistent with the
	// encoding rules of a payload.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrInvalidProposalOrdering reports proposal numbering that
	// violates the protocol rules.
	ErrInvalidProposalOrdering = errors.New("invalid proposal ordering")

	// ErrCriticalBitSet reports an unsupported payload carrying the
	// critical flag.
	ErrCriticalBitSet = errors.New("critical bit set")

	// ErrProposalNotFound reports that no proposal of the requested
	// kind exists. This is a negotiation miss, not a parse error.
	ErrProposalNotFound = errors.New("proposal not found")

	// ErrExtractionFailed reports a structurally invalid IKE proposal
	// encountered during extraction.
	ErrExtractionFailed = errors.New("proposal extraction failed")
)
