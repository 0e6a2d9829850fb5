package packet

import (
	"fmt"

	"github.com/danmuck/bitsctl/internal/protocol/bitbuf"
)

const (
	maxVersion  = 1<<VersionBits - 1
	maxType     = 1<<TypeBits - 1
	maxTotalLen = 1<<TotalBitsFieldBits - 1
	maxCount    = 1<<CountFieldBits - 1
)

// NewLiteral builds a root literal using the fewest groups that hold value.
func NewLiteral(version uint8, value uint64) *Literal {
	groups := 1
	for v := value >> 4; v != 0; v >>= 4 {
		groups++
	}
	return &Literal{
		Version: version,
		Value:   value,
		Groups:  groups,
		Size:    HeaderBits + GroupBits*groups,
	}
}

// NewOperator builds a root operator over children and positions them
// contiguously after its length field. Children are re-based in place.
func NewOperator(version, typ uint8, mode LengthMode, children ...Packet) *Operator {
	op := &Operator{
		Version:  version,
		Type:     typ,
		Mode:     mode,
		Children: children,
	}
	pos := op.prefixBits()
	for _, child := range children {
		shift(child, pos-child.Pos())
		pos = child.End()
	}
	op.Size = pos
	if mode == ModeCount {
		op.Declared = len(children)
	} else {
		op.Declared = op.Size - op.prefixBits()
	}
	return op
}

func shift(p Packet, delta int) {
	if delta == 0 {
		return
	}
	switch n := p.(type) {
	case *Literal:
		n.Start += delta
	case *Operator:
		n.Start += delta
		for _, child := range n.Children {
			shift(child, delta)
		}
	}
}

// Encode writes p in wire format, zero-padded to a whole byte. Operator
// length fields are recomputed from the children.
func Encode(p Packet) (string, error) {
	w := bitbuf.NewWriter()
	if err := encodeTo(w, p); err != nil {
		return "", err
	}
	w.Align(8)
	return w.Hex()
}

func encodeTo(w *bitbuf.Writer, p Packet) error {
	switch n := p.(type) {
	case *Literal:
		return encodeLiteral(w, n)
	case *Operator:
		return encodeOperator(w, n)
	default:
		return fmt.Errorf("%w: unknown packet %T", ErrEncodeField, p)
	}
}

func encodeLiteral(w *bitbuf.Writer, l *Literal) error {
	if l.Version > maxVersion {
		return fmt.Errorf("%w: version %d", ErrEncodeField, l.Version)
	}
	if l.Groups < 1 {
		return fmt.Errorf("%w: %d literal groups", ErrEncodeField, l.Groups)
	}
	if l.Groups < MaxLiteralGroups && l.Value>>(4*uint(l.Groups)) != 0 {
		return fmt.Errorf("%w: value %d does not fit %d groups", ErrEncodeField, l.Value, l.Groups)
	}
	if err := writeHeader(w, l.Header()); err != nil {
		return err
	}
	for i := l.Groups - 1; i >= 0; i-- {
		group := (l.Value >> (4 * uint(i))) & groupNibble
		if i > 0 {
			group |= groupContinue
		}
		if err := w.WriteBits(group, GroupBits); err != nil {
			return err
		}
	}
	return nil
}

func encodeOperator(w *bitbuf.Writer, o *Operator) error {
	if o.Type == TypeLiteral || o.Type > maxType {
		return fmt.Errorf("%w: operator type %d", ErrEncodeField, o.Type)
	}
	if o.Version > maxVersion {
		return fmt.Errorf("%w: version %d", ErrEncodeField, o.Version)
	}
	var declared, limit int
	switch o.Mode {
	case ModeTotalBits:
		for _, child := range o.Children {
			declared += child.Len()
		}
		limit = maxTotalLen
	case ModeCount:
		declared = len(o.Children)
		limit = maxCount
	default:
		return fmt.Errorf("%w: length mode %d", ErrEncodeField, o.Mode)
	}
	if declared > limit {
		return fmt.Errorf("%w: %s length %d exceeds %d", ErrEncodeField, o.Mode, declared, limit)
	}

	if err := writeHeader(w, o.Header()); err != nil {
		return err
	}
	if err := w.WriteBits(uint64(o.Mode), LengthTypeBits); err != nil {
		return err
	}
	if err := w.WriteBits(uint64(declared), o.Mode.fieldBits()); err != nil {
		return err
	}
	for _, child := range o.Children {
		if err := encodeTo(w, child); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(w *bitbuf.Writer, h Header) error {
	if err := w.WriteBits(uint64(h.Version), VersionBits); err != nil {
		return err
	}
	return w.WriteBits(uint64(h.Type), TypeBits)
}
