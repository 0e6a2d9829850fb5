package packet

import (
	"fmt"

	"github.com/danmuck/bitsctl/internal/protocol/bitbuf"
)

const (
	VersionBits = 3
	TypeBits    = 3
	HeaderBits  = VersionBits + TypeBits

	GroupBits        = 5
	groupContinue    = 1 << 4
	groupNibble      = 0x0F
	// MaxLiteralGroups is how many groups a uint64 value needs. Leading
	// zero groups may push a literal past it.
	MaxLiteralGroups = 16

	LengthTypeBits     = 1
	TotalBitsFieldBits = 15
	CountFieldBits     = 11

	TypeLiteral uint8 = 4

	// MinPacketBits is the smallest encodable packet: a one-group literal.
	MinPacketBits = HeaderBits + GroupBits
)

// Header is the 6-bit prefix shared by every packet.
type Header struct {
	Version uint8
	Type    uint8
}

func (h Header) IsLiteral() bool {
	return h.Type == TypeLiteral
}

// ReadHeader reads the version and type fields of the packet at start.
func ReadHeader(buf *bitbuf.Buffer, start int) (Header, error) {
	version, err := buf.Extract(start, start+VersionBits)
	if err != nil {
		return Header{}, fmt.Errorf("packet: read version at bit %d: %w", start, err)
	}
	typ, err := buf.Extract(start+VersionBits, start+HeaderBits)
	if err != nil {
		return Header{}, fmt.Errorf("packet: read type at bit %d: %w", start, err)
	}
	return Header{Version: uint8(version), Type: uint8(typ)}, nil
}
