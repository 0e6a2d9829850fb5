// Package inspect runs a full decode of one transmission and reports the
// tree with its aggregates. It is the shared entry point of the CLI and
// the HTTP service.
package inspect

import (
	"errors"
	"time"

	"github.com/danmuck/bitsctl/internal/observability"
	"github.com/danmuck/bitsctl/internal/protocol/bitbuf"
	"github.com/danmuck/bitsctl/internal/protocol/packet"
	"github.com/rs/zerolog"
)

// Report is the outcome of a successful decode.
type Report struct {
	Root       packet.Packet
	VersionSum int
	Packets    int
	Literals   int
	Operators  int
	Depth      int
	Bits       int
	// Trailing counts input bits after the root packet, usually padding.
	Trailing int
}

type Inspector struct {
	limits packet.Limits
	logger zerolog.Logger
}

func New(limits packet.Limits, logger zerolog.Logger) *Inspector {
	return &Inspector{limits: limits, logger: logger}
}

// Inspect decodes hex. source names the caller in logs and metrics.
func (i *Inspector) Inspect(source, hex string) (Report, error) {
	start := time.Now()
	report, err := i.inspect(hex)
	elapsed := time.Since(start)

	if err != nil {
		kind := Classify(err)
		observability.RecordDecode(source, kind, len(hex)*4, elapsed)
		i.logger.Warn().
			Str("source", source).
			Int("hex_chars", len(hex)).
			Str("kind", kind).
			Err(err).
			Msg("decode failed")
		return Report{}, err
	}

	observability.RecordDecode(source, "ok", report.Bits, elapsed)
	observability.RecordPackets(packet.KindLiteral.String(), report.Literals)
	observability.RecordPackets(packet.KindOperator.String(), report.Operators)
	i.logger.Debug().
		Str("source", source).
		Int("bits", report.Bits).
		Int("packets", report.Packets).
		Int("depth", report.Depth).
		Int("version_sum", report.VersionSum).
		Dur("elapsed", elapsed).
		Msg("decode ok")
	return report, nil
}

func (i *Inspector) inspect(hex string) (Report, error) {
	if err := i.limits.CheckSize(hex); err != nil {
		return Report{}, err
	}
	buf, err := bitbuf.New(hex)
	if err != nil {
		return Report{}, err
	}
	d, err := packet.NewDecoder(buf, i.limits)
	if err != nil {
		return Report{}, err
	}
	root, err := d.DecodeAt(0)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Root:       root,
		VersionSum: packet.VersionSum(root),
		Depth:      packet.Depth(root),
		Bits:       buf.Bits(),
		Trailing:   buf.Remaining(root.End()),
	}
	packet.Walk(root, func(p packet.Packet, _ int) {
		report.Packets++
		switch p.Kind() {
		case packet.KindLiteral:
			report.Literals++
		case packet.KindOperator:
			report.Operators++
		}
	})
	return report, nil
}

// Error kinds reported by Classify.
const (
	KindBitRange       = "bit_range"
	KindInvalidHex     = "invalid_hex"
	KindEmpty          = "empty_input"
	KindUnterminated   = "unterminated_literal"
	KindMalformed      = "malformed_operator"
	KindLiteralTooWide = "literal_overflow"
	KindTooLarge       = "input_too_large"
	KindTooDeep        = "too_deep"
	KindInternal       = "internal"
)

// Classify maps a decode error to a stable label.
func Classify(err error) string {
	switch {
	case errors.Is(err, packet.ErrUnterminatedLiteral):
		return KindUnterminated
	case errors.Is(err, packet.ErrMalformedOperator):
		return KindMalformed
	case errors.Is(err, packet.ErrLiteralOverflow):
		return KindLiteralTooWide
	case errors.Is(err, packet.ErrInputTooLarge):
		return KindTooLarge
	case errors.Is(err, packet.ErrTooDeep):
		return KindTooDeep
	case errors.Is(err, bitbuf.ErrBitRange):
		return KindBitRange
	case errors.Is(err, bitbuf.ErrInvalidHex):
		return KindInvalidHex
	case errors.Is(err, bitbuf.ErrEmpty):
		return KindEmpty
	default:
		return KindInternal
	}
}

// IsInputError reports whether err was caused by the transmission itself.
func IsInputError(err error) bool {
	return err != nil && Classify(err) != KindInternal
}
