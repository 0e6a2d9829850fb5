package packet

// Kind tags the two packet variants.
type Kind uint8

const (
	KindLiteral Kind = iota + 1
	KindOperator
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindOperator:
		return "operator"
	default:
		return "unknown"
	}
}

// LengthMode is how an operator bounds its children.
type LengthMode uint8

const (
	ModeTotalBits LengthMode = 0
	ModeCount     LengthMode = 1
)

func (m LengthMode) String() string {
	switch m {
	case ModeTotalBits:
		return "total_bits"
	case ModeCount:
		return "count"
	default:
		return "unknown"
	}
}

// fieldBits is the width of the length field that follows the mode bit.
func (m LengthMode) fieldBits() int {
	if m == ModeCount {
		return CountFieldBits
	}
	return TotalBitsFieldBits
}

// Packet is implemented only by *Literal and *Operator.
type Packet interface {
	Header() Header
	Kind() Kind
	// Pos is the bit offset of the packet header.
	Pos() int
	// End is the bit offset just past the packet.
	End() int
	// Len is the encoded size in bits.
	Len() int

	packet()
}

// Literal is a leaf carrying an integer value.
type Literal struct {
	Start   int
	Version uint8
	Value   uint64
	Groups  int
	Size    int
}

func (l *Literal) Header() Header { return Header{Version: l.Version, Type: TypeLiteral} }
func (l *Literal) Kind() Kind     { return KindLiteral }
func (l *Literal) Pos() int       { return l.Start }
func (l *Literal) End() int       { return l.Start + l.Size }
func (l *Literal) Len() int       { return l.Size }
func (l *Literal) packet()        {}

// Operator is an internal node. Children are contiguous and in wire order.
type Operator struct {
	Start    int
	Version  uint8
	Type     uint8
	Mode     LengthMode
	Declared int
	Children []Packet
	Size     int
}

func (o *Operator) Header() Header { return Header{Version: o.Version, Type: o.Type} }
func (o *Operator) Kind() Kind     { return KindOperator }
func (o *Operator) Pos() int       { return o.Start }
func (o *Operator) End() int       { return o.Start + o.Size }
func (o *Operator) Len() int       { return o.Size }
func (o *Operator) packet()        {}

// prefixBits is the operator size excluding children.
func (o *Operator) prefixBits() int {
	return HeaderBits + LengthTypeBits + o.Mode.fieldBits()
}
