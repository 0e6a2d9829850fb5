package config

import "github.com/danmuck/bitsctl/internal/protocol/packet"

func (c DecoderConfig) Limits() packet.Limits {
	return packet.Limits{
		MaxHexChars: c.MaxHexChars,
		MaxDepth:    c.MaxDepth,
	}
}
