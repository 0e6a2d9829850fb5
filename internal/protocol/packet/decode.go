package packet

import (
	"fmt"

	"github.com/danmuck/bitsctl/internal/protocol/bitbuf"
)

// Limits constrains decode input size and nesting.
type Limits struct {
	// MaxHexChars caps the input length. Zero means unlimited.
	MaxHexChars int
	// MaxDepth caps operator nesting below the root. Zero derives the
	// structural bound from the input length.
	MaxDepth int
}

func DefaultLimits() Limits {
	return Limits{
		MaxHexChars: 1 << 20,
	}
}

// Decoder decodes packets from a single buffer.
type Decoder struct {
	buf      *bitbuf.Buffer
	maxDepth int
}

// CheckSize rejects hex longer than MaxHexChars. Run it before building a
// buffer to avoid allocating for oversized input.
func (l Limits) CheckSize(hex string) error {
	if l.MaxHexChars > 0 && len(hex) > l.MaxHexChars {
		return fmt.Errorf("%w: %d hex chars, limit %d", ErrInputTooLarge, len(hex), l.MaxHexChars)
	}
	return nil
}

func NewDecoder(buf *bitbuf.Buffer, limits Limits) (*Decoder, error) {
	if err := limits.CheckSize(buf.Hex()); err != nil {
		return nil, err
	}
	maxDepth := limits.MaxDepth
	if maxDepth <= 0 {
		maxDepth = buf.Bits()/MinPacketBits + 1
	}
	return &Decoder{buf: buf, maxDepth: maxDepth}, nil
}

// Decode parses hex and decodes the packet at offset 0 under DefaultLimits.
func Decode(hex string) (Packet, error) {
	limits := DefaultLimits()
	if err := limits.CheckSize(hex); err != nil {
		return nil, err
	}
	buf, err := bitbuf.New(hex)
	if err != nil {
		return nil, err
	}
	d, err := NewDecoder(buf, limits)
	if err != nil {
		return nil, err
	}
	return d.DecodeAt(0)
}

func (d *Decoder) Buffer() *bitbuf.Buffer {
	return d.buf
}

// DecodeAt decodes the packet whose header starts at bit start.
func (d *Decoder) DecodeAt(start int) (Packet, error) {
	return d.decode(start, 0)
}

func (d *Decoder) decode(start, depth int) (Packet, error) {
	if depth > d.maxDepth {
		return nil, fmt.Errorf("%w: depth %d at bit %d", ErrTooDeep, depth, start)
	}
	h, err := ReadHeader(d.buf, start)
	if err != nil {
		return nil, err
	}
	if h.IsLiteral() {
		return d.decodeLiteral(start, h)
	}
	return d.decodeOperator(start, h, depth)
}

func (d *Decoder) decodeLiteral(start int, h Header) (*Literal, error) {
	pos := start + HeaderBits
	var value uint64
	groups := 0
	for {
		if d.buf.Remaining(pos) < GroupBits {
			return nil, fmt.Errorf("%w: packet at bit %d, input ends after %d groups", ErrUnterminatedLiteral, start, groups)
		}
		g, err := d.buf.Extract(pos, pos+GroupBits)
		if err != nil {
			return nil, err
		}
		if value>>60 != 0 {
			return nil, fmt.Errorf("%w: packet at bit %d, group %d", ErrLiteralOverflow, start, groups+1)
		}
		value = value<<4 | uint64(g&groupNibble)
		groups++
		pos += GroupBits
		if g&groupContinue == 0 {
			break
		}
	}
	return &Literal{
		Start:   start,
		Version: h.Version,
		Value:   value,
		Groups:  groups,
		Size:    HeaderBits + GroupBits*groups,
	}, nil
}

func (d *Decoder) decodeOperator(start int, h Header, depth int) (*Operator, error) {
	modeAt := start + HeaderBits
	flag, err := d.buf.Extract(modeAt, modeAt+LengthTypeBits)
	if err != nil {
		return nil, fmt.Errorf("packet: read length mode at bit %d: %w", modeAt, err)
	}
	op := &Operator{
		Start:   start,
		Version: h.Version,
		Type:    h.Type,
		Mode:    LengthMode(flag),
	}

	fieldAt := modeAt + LengthTypeBits
	fieldEnd := fieldAt + op.Mode.fieldBits()
	declared, err := d.buf.Extract(fieldAt, fieldEnd)
	if err != nil {
		return nil, fmt.Errorf("packet: read %s field at bit %d: %w", op.Mode, fieldAt, err)
	}
	op.Declared = int(declared)

	var consumed int
	switch op.Mode {
	case ModeTotalBits:
		op.Children, consumed, err = d.decodeByTotalBits(start, fieldEnd, op.Declared, depth)
	case ModeCount:
		op.Children, consumed, err = d.decodeByCount(fieldEnd, op.Declared, depth)
	}
	if err != nil {
		return nil, err
	}
	op.Size = op.prefixBits() + consumed
	return op, nil
}

// decodeByTotalBits decodes children until exactly budget bits are consumed.
func (d *Decoder) decodeByTotalBits(start, first, budget, depth int) ([]Packet, int, error) {
	limit := first + budget
	if limit > d.buf.Bits() {
		return nil, 0, fmt.Errorf("%w: packet at bit %d declares %d child bits, input ends at bit %d",
			ErrMalformedOperator, start, budget, d.buf.Bits())
	}
	children := make([]Packet, 0, 2)
	pos := first
	for pos < limit {
		child, err := d.decode(pos, depth+1)
		if err != nil {
			return nil, 0, err
		}
		if child.End() > limit {
			return nil, 0, fmt.Errorf("%w: packet at bit %d, child at bit %d ends at bit %d past budget end %d",
				ErrMalformedOperator, start, pos, child.End(), limit)
		}
		children = append(children, child)
		pos = child.End()
	}
	return children, pos - first, nil
}

// decodeByCount decodes exactly count children regardless of their size.
func (d *Decoder) decodeByCount(first, count, depth int) ([]Packet, int, error) {
	// Each child takes at least MinPacketBits, which bounds a sane capacity.
	capacity := count
	if most := d.buf.Remaining(first) / MinPacketBits; capacity > most {
		capacity = most
	}
	children := make([]Packet, 0, capacity)
	pos := first
	for i := 0; i < count; i++ {
		child, err := d.decode(pos, depth+1)
		if err != nil {
			return nil, 0, err
		}
		children = append(children, child)
		pos = child.End()
	}
	return children, pos - first, nil
}
