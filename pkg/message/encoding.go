package message

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/ikeforge/ikesa/internal/logger"
)

// FieldKind selects how one encoding rule maps a payload field onto
// the wire.
type FieldKind int

const (
	// FieldU8, FieldU16 and FieldU32 copy a fixed-width unsigned
	// integer in network byte order.
	FieldU8 FieldKind = iota
	FieldU16
	FieldU32

	// FieldFlag packs a single bit, most significant bit first within
	// the shared byte.
	FieldFlag

	// FieldReservedBit is written as zero and ignored on decode.
	FieldReservedBit

	// FieldReservedByte is a full reserved octet, written as zero and
	// ignored on decode.
	FieldReservedByte

	// FieldPayloadLength is the self-referential 16-bit total length.
	// It is written last, once the full encoding is known, and bounds
	// the remainder of the payload on decode.
	FieldPayloadLength

	// FieldLastFlag is the last/more marker octet of a substructure:
	// zero when the flag field is set, the rule's Aux marker otherwise.
	FieldLastFlag

	// FieldSPISize derives an 8-bit size from the SPI byte field; on
	// decode it determines how many bytes the FieldSPI rule consumes.
	FieldSPISize

	// FieldSPI copies the variable-length SPI value. Must follow a
	// FieldSPISize rule.
	FieldSPI

	// FieldSubPayloadCount derives an 8-bit element count from the
	// list field; on decode the count is checked against the decoded
	// list.
	FieldSubPayloadCount

	// FieldSubPayloadList recursively encodes or decodes the nested
	// substructures of the list field, bounded by the enclosing
	// payload length.
	FieldSubPayloadList

	// FieldAttributeFormat is the AF bit of a transform attribute,
	// packed into the most significant bit of the attribute type word.
	FieldAttributeFormat

	// FieldAttributeType is the 15-bit transform attribute type.
	FieldAttributeType

	// FieldAttributeLengthOrValue is the 16-bit word holding the
	// attribute value (TV format) or the value length (TLV format).
	FieldAttributeLengthOrValue

	// FieldAttributeValue is the variable TLV attribute value; absent
	// in TV format.
	FieldAttributeValue
)

// FieldLocation names a payload field symbolically; each payload type
// resolves locations to its own fields.
type FieldLocation int

const (
	LocNone FieldLocation = iota
	LocNextPayload
	LocCritical
	LocPayloadLength
	LocProposals
	LocIsLast
	LocProposalNumber
	LocProtocolID
	LocSPI
	LocTransforms
	LocTransformType
	LocTransformID
	LocAttributes
	LocAttributeFormat
	LocAttributeType
	LocAttributeValue
	LocAttributeVariableValue
)

// EncodingRule binds a field kind to a field location. The ordered
// rule list of a payload type, applied rule by rule, reproduces its
// wire layout exactly. Rule tables are immutable package-level data
// shared by every instance.
type EncodingRule struct {
	Kind FieldKind
	Loc  FieldLocation

	// Aux is the "more substructures follow" marker written by
	// FieldLastFlag rules.
	Aux uint8
}

// fieldResolver resolves symbolic field locations to the concrete
// fields of a payload. A resolver returns nil for locations it does
// not own.
type fieldResolver interface {
	uint8Field(loc FieldLocation) *uint8
	uint16Field(loc FieldLocation) *uint16
	uint32Field(loc FieldLocation) *uint32
	flagField(loc FieldLocation) *bool
	bytesField(loc FieldLocation) *[]byte
	listField(loc FieldLocation) subPayloadList
}

// subPayloadList is the ordered container of nested substructures the
// engine recurses into. Iteration order is insertion order.
type subPayloadList interface {
	count() int
	element(i int) Encodable
	newElement() Encodable
	appendElement(e Encodable)
}

// Encodable is anything whose wire format is driven by an encoding
// rule table.
type Encodable interface {
	EncodingRules() []EncodingRule
	fieldResolver
}

type encoder struct {
	target Encodable
	buf    []byte

	bitCount uint
	bitByte  byte

	lengthAt  int
	lengthLoc FieldLocation

	attrTV    bool
	attrLenAt int
}

// Encode serializes a payload by walking its encoding rule table. The
// payload-length field, if any, is fixed up after the complete
// encoding, nested substructures included, is produced.
func Encode(p Encodable) ([]byte, error) {
	e := &encoder{target: p, lengthAt: -1, attrLenAt: -1}

	for _, rule := range p.EncodingRules() {
		if err := e.apply(rule); err != nil {
			return nil, err
		}
	}

	if e.bitCount != 0 {
		return nil, errors.Errorf("encoding rules leave %d bits unflushed", e.bitCount)
	}

	if e.lengthAt >= 0 {
		total := len(e.buf)
		if total > math.MaxUint16 {
			return nil, errors.Errorf("payload length %d exceeds 16-bit limit", total)
		}
		binary.BigEndian.PutUint16(e.buf[e.lengthAt:e.lengthAt+2], uint16(total))
		if f := p.uint16Field(e.lengthLoc); f != nil {
			*f = uint16(total)
		}
	}

	logger.CodecLog.Debugf("encoded %d bytes", len(e.buf))
	return e.buf, nil
}

func (e *encoder) apply(rule EncodingRule) error {
	switch rule.Kind {
	case FieldU8:
		f := e.target.uint8Field(rule.Loc)
		if f == nil {
			return errors.Errorf("no uint8 field at location %d", rule.Loc)
		}
		e.buf = append(e.buf, *f)
	case FieldU16:
		f := e.target.uint16Field(rule.Loc)
		if f == nil {
			return errors.Errorf("no uint16 field at location %d", rule.Loc)
		}
		e.buf = binary.BigEndian.AppendUint16(e.buf, *f)
	case FieldU32:
		f := e.target.uint32Field(rule.Loc)
		if f == nil {
			return errors.Errorf("no uint32 field at location %d", rule.Loc)
		}
		e.buf = binary.BigEndian.AppendUint32(e.buf, *f)
	case FieldFlag:
		f := e.target.flagField(rule.Loc)
		if f == nil {
			return errors.Errorf("no flag field at location %d", rule.Loc)
		}
		e.putBit(*f)
	case FieldReservedBit:
		e.putBit(false)
	case FieldReservedByte:
		if e.bitCount != 0 {
			return errors.Errorf("reserved byte with %d bits pending", e.bitCount)
		}
		e.buf = append(e.buf, 0)
	case FieldPayloadLength:
		e.lengthAt = len(e.buf)
		e.lengthLoc = rule.Loc
		e.buf = append(e.buf, 0, 0)
	case FieldLastFlag:
		f := e.target.flagField(rule.Loc)
		if f == nil {
			return errors.Errorf("no flag field at location %d", rule.Loc)
		}
		if *f {
			e.buf = append(e.buf, 0)
		} else {
			e.buf = append(e.buf, rule.Aux)
		}
	case FieldSPISize:
		b := e.target.bytesField(rule.Loc)
		if b == nil {
			return errors.Errorf("no bytes field at location %d", rule.Loc)
		}
		if len(*b) > math.MaxUint8 {
			return errors.Errorf("SPI of %d bytes exceeds 8-bit size field", len(*b))
		}
		e.buf = append(e.buf, uint8(len(*b)))
	case FieldSPI:
		b := e.target.bytesField(rule.Loc)
		if b == nil {
			return errors.Errorf("no bytes field at location %d", rule.Loc)
		}
		e.buf = append(e.buf, *b...)
	case FieldSubPayloadCount:
		l := e.target.listField(rule.Loc)
		if l == nil {
			return errors.Errorf("no list field at location %d", rule.Loc)
		}
		if l.count() > math.MaxUint8 {
			return errors.Errorf("%d substructures exceed 8-bit count field", l.count())
		}
		e.buf = append(e.buf, uint8(l.count()))
	case FieldSubPayloadList:
		l := e.target.listField(rule.Loc)
		if l == nil {
			return errors.Errorf("no list field at location %d", rule.Loc)
		}
		for i := 0; i < l.count(); i++ {
			data, err := Encode(l.element(i))
			if err != nil {
				return errors.Wrapf(err, "substructure %d", i)
			}
			e.buf = append(e.buf, data...)
		}
	case FieldAttributeFormat:
		f := e.target.flagField(rule.Loc)
		if f == nil {
			return errors.Errorf("no flag field at location %d", rule.Loc)
		}
		e.attrTV = *f
	case FieldAttributeType:
		f := e.target.uint16Field(rule.Loc)
		if f == nil {
			return errors.Errorf("no uint16 field at location %d", rule.Loc)
		}
		word := *f & 0x7fff
		if e.attrTV {
			word |= 0x8000
		}
		e.buf = binary.BigEndian.AppendUint16(e.buf, word)
	case FieldAttributeLengthOrValue:
		if e.attrTV {
			f := e.target.uint16Field(rule.Loc)
			if f == nil {
				return errors.Errorf("no uint16 field at location %d", rule.Loc)
			}
			e.buf = binary.BigEndian.AppendUint16(e.buf, *f)
		} else {
			e.attrLenAt = len(e.buf)
			e.buf = append(e.buf, 0, 0)
		}
	case FieldAttributeValue:
		if e.attrTV {
			break
		}
		b := e.target.bytesField(rule.Loc)
		if b == nil {
			return errors.Errorf("no bytes field at location %d", rule.Loc)
		}
		if len(*b) > math.MaxUint16 {
			return errors.Errorf("attribute value of %d bytes exceeds 16-bit length field", len(*b))
		}
		binary.BigEndian.PutUint16(e.buf[e.attrLenAt:e.attrLenAt+2], uint16(len(*b)))
		e.buf = append(e.buf, *b...)
	default:
		return errors.Errorf("unknown encoding rule kind %d", rule.Kind)
	}
	return nil
}

func (e *encoder) putBit(set bool) {
	if e.bitCount == 0 {
		e.bitByte = 0
	}
	if set {
		e.bitByte |= 0x80 >> e.bitCount
	}
	e.bitCount++
	if e.bitCount == 8 {
		e.buf = append(e.buf, e.bitByte)
		e.bitCount = 0
	}
}

type decoder struct {
	target Encodable
	raw    []byte
	off    int
	end    int

	bitCount uint
	bitByte  byte

	sawLength bool

	spiSize     int
	expectCount int

	attrTV  bool
	attrLen int
}

// Decode parses a payload from raw by walking its encoding rule table
// and returns the number of bytes consumed. Reserved bits and bytes
// are ignored rather than validated, tolerating peer padding. Any
// short buffer or inconsistent length accounting fails with
// ErrMalformedPayload.
func Decode(p Encodable, raw []byte) (int, error) {
	d := &decoder{target: p, raw: raw, end: len(raw), expectCount: -1}

	for _, rule := range p.EncodingRules() {
		if err := d.apply(rule); err != nil {
			return 0, err
		}
	}

	if d.bitCount != 0 {
		return 0, errors.Errorf("encoding rules leave %d bits unconsumed", d.bitCount)
	}
	if d.sawLength && d.off != d.end {
		return 0, errors.Wrapf(ErrMalformedPayload,
			"payload declares %d bytes but rules consumed %d", d.end, d.off)
	}

	return d.off, nil
}

func (d *decoder) apply(rule EncodingRule) error {
	switch rule.Kind {
	case FieldU8:
		f := d.target.uint8Field(rule.Loc)
		if f == nil {
			return errors.Errorf("no uint8 field at location %d", rule.Loc)
		}
		if err := d.need(1); err != nil {
			return err
		}
		*f = d.raw[d.off]
		d.off++
	case FieldU16:
		f := d.target.uint16Field(rule.Loc)
		if f == nil {
			return errors.Errorf("no uint16 field at location %d", rule.Loc)
		}
		if err := d.need(2); err != nil {
			return err
		}
		*f = binary.BigEndian.Uint16(d.raw[d.off : d.off+2])
		d.off += 2
	case FieldU32:
		f := d.target.uint32Field(rule.Loc)
		if f == nil {
			return errors.Errorf("no uint32 field at location %d", rule.Loc)
		}
		if err := d.need(4); err != nil {
			return err
		}
		*f = binary.BigEndian.Uint32(d.raw[d.off : d.off+4])
		d.off += 4
	case FieldFlag:
		f := d.target.flagField(rule.Loc)
		if f == nil {
			return errors.Errorf("no flag field at location %d", rule.Loc)
		}
		bit, err := d.getBit()
		if err != nil {
			return err
		}
		*f = bit
	case FieldReservedBit:
		if _, err := d.getBit(); err != nil {
			return err
		}
	case FieldReservedByte:
		if err := d.need(1); err != nil {
			return err
		}
		d.off++
	case FieldPayloadLength:
		if err := d.need(2); err != nil {
			return err
		}
		length := int(binary.BigEndian.Uint16(d.raw[d.off : d.off+2]))
		if f := d.target.uint16Field(rule.Loc); f != nil {
			*f = uint16(length)
		}
		d.off += 2
		if length < d.off || length > len(d.raw) {
			return errors.Wrapf(ErrMalformedPayload,
				"declared payload length %d outside buffer of %d bytes", length, len(d.raw))
		}
		d.end = length
		d.sawLength = true
	case FieldLastFlag:
		f := d.target.flagField(rule.Loc)
		if f == nil {
			return errors.Errorf("no flag field at location %d", rule.Loc)
		}
		if err := d.need(1); err != nil {
			return err
		}
		*f = d.raw[d.off] == 0
		d.off++
	case FieldSPISize:
		if err := d.need(1); err != nil {
			return err
		}
		d.spiSize = int(d.raw[d.off])
		d.off++
	case FieldSPI:
		if d.spiSize == 0 {
			break
		}
		b := d.target.bytesField(rule.Loc)
		if b == nil {
			return errors.Errorf("no bytes field at location %d", rule.Loc)
		}
		if err := d.need(d.spiSize); err != nil {
			return err
		}
		*b = append([]byte(nil), d.raw[d.off:d.off+d.spiSize]...)
		d.off += d.spiSize
	case FieldSubPayloadCount:
		if err := d.need(1); err != nil {
			return err
		}
		d.expectCount = int(d.raw[d.off])
		d.off++
	case FieldSubPayloadList:
		l := d.target.listField(rule.Loc)
		if l == nil {
			return errors.Errorf("no list field at location %d", rule.Loc)
		}
		for d.off < d.end {
			sub := l.newElement()
			consumed, err := Decode(sub, d.raw[d.off:d.end])
			if err != nil {
				return errors.Wrapf(err, "substructure %d", l.count())
			}
			if consumed == 0 {
				return errors.Wrap(ErrMalformedPayload, "substructure consumed no bytes")
			}
			l.appendElement(sub)
			d.off += consumed
		}
		if d.expectCount >= 0 && l.count() != d.expectCount {
			return errors.Wrapf(ErrMalformedPayload,
				"header declares %d substructures, decoded %d", d.expectCount, l.count())
		}
	case FieldAttributeFormat:
		f := d.target.flagField(rule.Loc)
		if f == nil {
			return errors.Errorf("no flag field at location %d", rule.Loc)
		}
		if err := d.need(2); err != nil {
			return err
		}
		d.attrTV = d.raw[d.off]&0x80 != 0
		*f = d.attrTV
	case FieldAttributeType:
		f := d.target.uint16Field(rule.Loc)
		if f == nil {
			return errors.Errorf("no uint16 field at location %d", rule.Loc)
		}
		if err := d.need(2); err != nil {
			return err
		}
		*f = binary.BigEndian.Uint16(d.raw[d.off:d.off+2]) & 0x7fff
		d.off += 2
	case FieldAttributeLengthOrValue:
		if err := d.need(2); err != nil {
			return err
		}
		word := binary.BigEndian.Uint16(d.raw[d.off : d.off+2])
		d.off += 2
		if d.attrTV {
			f := d.target.uint16Field(rule.Loc)
			if f == nil {
				return errors.Errorf("no uint16 field at location %d", rule.Loc)
			}
			*f = word
		} else {
			d.attrLen = int(word)
		}
	case FieldAttributeValue:
		if d.attrTV {
			break
		}
		b := d.target.bytesField(rule.Loc)
		if b == nil {
			return errors.Errorf("no bytes field at location %d", rule.Loc)
		}
		if err := d.need(d.attrLen); err != nil {
			return err
		}
		*b = append([]byte(nil), d.raw[d.off:d.off+d.attrLen]...)
		d.off += d.attrLen
	default:
		return errors.Errorf("unknown encoding rule kind %d", rule.Kind)
	}
	return nil
}

func (d *decoder) need(n int) error {
	if d.off+n > d.end {
		return errors.Wrapf(ErrMalformedPayload,
			"need %d bytes at offset %d, %d available", n, d.off, d.end-d.off)
	}
	return nil
}

func (d *decoder) getBit() (bool, error) {
	if d.bitCount == 0 {
		if err := d.need(1); err != nil {
			return false, err
		}
		d.bitByte = d.raw[d.off]
		d.off++
	}
	bit := d.bitByte&(0x80>>d.bitCount) != 0
	d.bitCount++
	if d.bitCount == 8 {
		d.bitCount = 0
	}
	return bit, nil
}
