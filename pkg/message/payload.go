package message

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/ikeforge/ikesa/internal/logger"
)

// Payload is the capability contract every IKE payload exposes to the
// message layer: a type code, next-payload chaining, a recomputing
// length, verification, and an encoding rule table. The message
// assembler and parser treat payloads through this interface only.
type Payload interface {
	Encodable

	Type() PayloadType
	NextType() PayloadType
	SetNextType(next PayloadType)
	Length() int
	Verify() error
}

// PayloadContainer holds the payloads of one IKE message in wire
// order.
type PayloadContainer []Payload

// Encode serializes every payload in order, chaining each one's
// next-payload type to the following payload.
func (container PayloadContainer) Encode() ([]byte, error) {
	logger.CodecLog.Debugln("encoding IKE payloads")

	var out []byte
	for i, payload := range container {
		if i+1 < len(container) {
			payload.SetNextType(container[i+1].Type())
		} else {
			payload.SetNextType(NoNext)
		}

		data, err := Encode(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "payload %d", i)
		}
		out = append(out, data...)
	}

	return out, nil
}

// Decode parses a run of chained payloads. Unknown payload types are
// skipped when tolerable; an unknown payload carrying the critical
// flag aborts with ErrCriticalBitSet.
func (container *PayloadContainer) Decode(nextType PayloadType, raw []byte) error {
	logger.CodecLog.Debugln("decoding IKE payloads")

	for len(raw) > 0 {
		if len(raw) < 4 {
			return errors.Wrap(ErrMalformedPayload, "no sufficient bytes to decode next payload header")
		}
		payloadLength := binary.BigEndian.Uint16(raw[2:4])
		if payloadLength < 4 {
			return errors.Wrapf(ErrMalformedPayload, "illegal payload length %d < header length 4", payloadLength)
		}
		if len(raw) < int(payloadLength) {
			return errors.Wrap(ErrMalformedPayload, "received bytes shorter than the length specified in header")
		}

		switch nextType {
		case TypeSA:
			sa := new(SecurityAssociation)
			if _, err := Decode(sa, raw[:payloadLength]); err != nil {
				return errors.Wrap(err, "security association")
			}
			*container = append(*container, sa)
			nextType = sa.NextType()
		default:
			if raw[1]&0x80 != 0 {
				return errors.Wrapf(ErrCriticalBitSet, "unsupported payload type %d", nextType)
			}
			logger.CodecLog.Debugf("skipping unsupported payload type %d", nextType)
			nextType = PayloadType(raw[0])
		}

		raw = raw[payloadLength:]
	}

	return nil
}
