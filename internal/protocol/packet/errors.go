package packet

import "errors"

var (
	ErrUnterminatedLiteral = errors.New("packet: unterminated literal")
	ErrMalformedOperator   = errors.New("packet: malformed operator")
	ErrLiteralOverflow     = errors.New("packet: literal wider than 64 bits")
	ErrInputTooLarge       = errors.New("packet: input too large")
	ErrTooDeep             = errors.New("packet: nesting too deep")
	ErrEncodeField         = errors.New("packet: field out of range for encoding")
)
